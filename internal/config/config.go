package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
)

// StrategyType identifies how a country's postal codes are resolved.
type StrategyType string

const (
	StrategyTable   StrategyType = "table"   // precomputed snapshot (crosswalk or spatial build)
	StrategyPrefix  StrategyType = "prefix"  // prefix fan-out over a snapshot
	StrategyGeocode StrategyType = "geocode" // live external geocoding
)

// Country configures one country's resolution strategy.
type Country struct {
	Code     string       `yaml:"code"`
	Strategy StrategyType `yaml:"strategy"`

	// Snapshot is the lookup-table file for table and prefix strategies.
	Snapshot string `yaml:"snapshot"`

	// PrefixLen is the lookup key length for the prefix strategy.
	PrefixLen int `yaml:"prefix_len"`

	// RegionPrefixLen derives an upper-chamber region code from the
	// leading characters of the postal code. 0 disables.
	RegionPrefixLen int `yaml:"region_prefix_len"`
}

// Geocode configures the live geocoding client.
type Geocode struct {
	BaseURL   string `yaml:"base_url"`
	TimeoutMS int    `yaml:"timeout_ms"`
}

// Build configures the offline pipelines' QA gate.
type Build struct {
	MaxUnmatchedRatio float64 `yaml:"max_unmatched_ratio"`
}

type Config struct {
	Countries []Country `yaml:"countries"`
	Geocode   Geocode   `yaml:"geocode"`
	Build     Build     `yaml:"build"`
}

// DefaultGeocodeBaseURL is the postcodes.io endpoint.
const DefaultGeocodeBaseURL = "https://api.postcodes.io"

// Load reads the YAML country registry and applies environment
// overrides.
//
// Environment variables:
//   - GEOCODE_BASE_URL: override the geocoding endpoint (tests, proxies)
//   - GEOCODE_TIMEOUT_MS: override the per-request geocoding timeout
//   - BUILD_MAX_UNMATCHED_RATIO: override the pipeline QA threshold
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if v := strings.TrimSpace(os.Getenv("GEOCODE_BASE_URL")); v != "" {
		cfg.Geocode.BaseURL = v
	}
	if v := os.Getenv("GEOCODE_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Geocode.TimeoutMS = n
		}
	}
	if v := os.Getenv("BUILD_MAX_UNMATCHED_RATIO"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			cfg.Build.MaxUnmatchedRatio = f
		}
	}

	if cfg.Geocode.BaseURL == "" {
		cfg.Geocode.BaseURL = DefaultGeocodeBaseURL
	}
	if cfg.Geocode.TimeoutMS <= 0 {
		cfg.Geocode.TimeoutMS = 3000
	}
	if cfg.Build.MaxUnmatchedRatio <= 0 {
		cfg.Build.MaxUnmatchedRatio = 0.02
	}

	return &cfg, cfg.Validate()
}

// GeocodeTimeout returns the bounded per-request timeout for the live
// geocoding resolver.
func (c *Config) GeocodeTimeout() time.Duration {
	return time.Duration(c.Geocode.TimeoutMS) * time.Millisecond
}

func (c *Config) Validate() error {
	if len(c.Countries) == 0 {
		return fmt.Errorf("no countries configured")
	}
	seen := make(map[string]bool)
	for _, country := range c.Countries {
		code := strings.ToUpper(country.Code)
		if len(code) != 2 {
			return fmt.Errorf("bad country code %q", country.Code)
		}
		if seen[code] {
			return fmt.Errorf("duplicate country %s", code)
		}
		seen[code] = true

		switch country.Strategy {
		case StrategyTable:
			if country.Snapshot == "" {
				return fmt.Errorf("%s: table strategy needs a snapshot path", code)
			}
		case StrategyPrefix:
			if country.Snapshot == "" {
				return fmt.Errorf("%s: prefix strategy needs a snapshot path", code)
			}
			if country.PrefixLen <= 0 {
				return fmt.Errorf("%s: prefix strategy needs prefix_len", code)
			}
		case StrategyGeocode:
			// no snapshot
		default:
			return fmt.Errorf("%s: unknown strategy %q", code, country.Strategy)
		}
	}
	return nil
}
