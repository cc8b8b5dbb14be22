package spatial

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/LetterLobby/LL-Backend/internal/postal"
	"github.com/LetterLobby/LL-Backend/internal/snapshot"
)

// Config names the two polygon sources for one country's spatial build:
// postal-code-area polygons (e.g. Census ZCTAs) and district polygons,
// sourced independently of each other.
type Config struct {
	Country      string
	PostalPath   string
	DistrictPath string

	PostalProps   PropertyMap
	DistrictProps PropertyMap

	// RegionPrefixLen builds the prefix->region table for upper-chamber
	// lookups from the matched districts' Region property. 0 disables.
	RegionPrefixLen int
}

// Report summarizes one builder run. The unmatched ratio is the QA gate:
// a build whose ratio exceeds the configured threshold is not published.
type Report struct {
	Country          string    `json:"country"`
	PostalFeatures   int       `json:"postal_features"`
	DistrictFeatures int       `json:"district_features"`
	Matched          int       `json:"matched"`
	Unmatched        int       `json:"unmatched"`
	SkippedPostal    int       `json:"skipped_postal"`
	SkippedDistrict  int       `json:"skipped_district"`
	UnmatchedCodes   []string  `json:"unmatched_codes,omitempty"`
	GeneratedAt      time.Time `json:"generated_at"`
}

func (r *Report) UnmatchedRatio() float64 {
	total := r.Matched + r.Unmatched
	if total == 0 {
		return 0
	}
	return float64(r.Unmatched) / float64(total)
}

// Build assigns every postal-code polygon to a district by testing the
// postal area's centroid against each district polygon; the first
// containing district wins. Districts are scanned in id order so the
// tie-break is stable regardless of source file ordering. O(P×D) is fine
// for a national one-off build, not meant to be interactive.
func Build(cfg Config) (*snapshot.Table, *Report, error) {
	report := &Report{Country: cfg.Country, GeneratedAt: time.Now().UTC()}

	districts, skipped, err := LoadFeatures(cfg.DistrictPath, cfg.DistrictProps)
	if err != nil {
		return nil, nil, fmt.Errorf("load district polygons: %w", err)
	}
	report.SkippedDistrict = skipped
	report.DistrictFeatures = len(districts)
	if len(districts) == 0 {
		return nil, nil, fmt.Errorf("no usable district polygons in %s", cfg.DistrictPath)
	}
	sort.Slice(districts, func(i, j int) bool { return districts[i].ID < districts[j].ID })

	postals, skipped, err := LoadFeatures(cfg.PostalPath, cfg.PostalProps)
	if err != nil {
		return nil, nil, fmt.Errorf("load postal polygons: %w", err)
	}
	report.SkippedPostal = skipped
	report.PostalFeatures = len(postals)

	entries := make(map[string][]string)
	regions := make(map[string]string)

	for _, pf := range postals {
		code, err := postal.Normalize(cfg.Country, pf.ID)
		if err != nil {
			report.SkippedPostal++
			continue
		}

		centroid, ok := pf.Centroid()
		if !ok {
			log.Printf("[spatial] %s: skipping %s, degenerate geometry", cfg.Country, code)
			report.SkippedPostal++
			continue
		}

		matched := false
		for i := range districts {
			if !districts[i].Contains(centroid) {
				continue
			}
			entries[code] = []string{districts[i].ID}
			if cfg.RegionPrefixLen > 0 && len(code) >= cfg.RegionPrefixLen && districts[i].Region != "" {
				prefix := code[:cfg.RegionPrefixLen]
				if prev, dup := regions[prefix]; dup && prev != districts[i].Region {
					log.Printf("[spatial] %s: prefix %s maps to both %s and %s, keeping %s",
						cfg.Country, prefix, prev, districts[i].Region, prev)
				} else {
					regions[prefix] = districts[i].Region
				}
			}
			matched = true
			break
		}

		if matched {
			report.Matched++
		} else {
			// Centroids of concave or multi-part areas can land outside
			// every district; surfaced in the report, never dropped
			// silently.
			report.Unmatched++
			report.UnmatchedCodes = append(report.UnmatchedCodes, code)
		}
	}
	sort.Strings(report.UnmatchedCodes)

	table := &snapshot.Table{
		Country:  strings.ToUpper(cfg.Country),
		Strategy: "spatial",
		Entries:  entries,
	}
	if len(regions) > 0 {
		table.Regions = regions
	}

	log.Printf("[spatial] %s: %d matched, %d unmatched, %d postal / %d district features skipped",
		cfg.Country, report.Matched, report.Unmatched, report.SkippedPostal, report.SkippedDistrict)

	return table, report, nil
}
