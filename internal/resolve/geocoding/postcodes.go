package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/LetterLobby/LL-Backend/internal/metrics"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// cacheTTL bounds how long a postcode->constituency answer is reused.
// Constituency assignments only change at redistricting, so a day is
// conservative.
const cacheTTL = 24 * time.Hour

// Client wraps the postcodes.io lookup API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *redis.Client
}

// NewClient creates a geocoding client. cache may be nil (no caching).
func NewClient(baseURL string, timeout time.Duration, cache *redis.Client) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		// postcodes.io asks for polite usage; burst a little, sustain ~10/s.
		limiter: rate.NewLimiter(rate.Limit(10), 20),
		cache:   cache,
	}
}

// OpenCacheFromEnv opens the optional redis response cache. Returns nil
// when REDIS_ADDR is unset (graceful degradation).
func OpenCacheFromEnv() *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASS"),
	})
}

type postcodeResponse struct {
	Status int `json:"status"`
	Result struct {
		Postcode                  string `json:"postcode"`
		ParliamentaryConstituency string `json:"parliamentary_constituency"`
		AdminDistrict             string `json:"admin_district"`
		Region                    string `json:"region"`
	} `json:"result"`
}

// Constituency looks up the parliamentary constituency name for a
// normalized postcode. The name is display text, not a stable id; the
// caller joins it against the district catalog.
func (c *Client) Constituency(ctx context.Context, postcode string) (string, error) {
	cacheKey := "geocode:gb:" + postcode
	if c.cache != nil {
		if name, err := c.cache.Get(ctx, cacheKey).Result(); err == nil && name != "" {
			metrics.GeocodeCacheHitsTotal.Inc()
			return name, nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	u := fmt.Sprintf("%s/postcodes/%s", c.baseURL, url.PathEscape(postcode))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	metrics.GeocodeRequestsTotal.Inc()
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.GeocodeFailuresTotal.Inc()
		return "", fmt.Errorf("geocoding request: %w", err)
	}
	defer resp.Body.Close()
	metrics.GeocodeDurationMs.Observe(float64(time.Since(start).Milliseconds()))

	if resp.StatusCode != http.StatusOK {
		metrics.GeocodeFailuresTotal.Inc()
		return "", fmt.Errorf("geocoding API returned HTTP %d for %q", resp.StatusCode, postcode)
	}

	var pcResp postcodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&pcResp); err != nil {
		metrics.GeocodeFailuresTotal.Inc()
		return "", fmt.Errorf("decoding response: %w", err)
	}

	name := pcResp.Result.ParliamentaryConstituency
	if name == "" {
		metrics.GeocodeFailuresTotal.Inc()
		return "", fmt.Errorf("no constituency in geocoding result for %q", postcode)
	}

	if c.cache != nil {
		// Best effort; a cache write failure never fails the lookup.
		_ = c.cache.Set(ctx, cacheKey, name, cacheTTL).Err()
	}

	return name, nil
}
