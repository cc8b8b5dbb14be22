package crosswalk

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/LetterLobby/LL-Backend/internal/postal"
	"github.com/LetterLobby/LL-Backend/internal/snapshot"
)

// Config names the two source tables and the optional override layer for
// one country's crosswalk build. The postal-authority table and the
// electoral-authority table share nothing but the administrative-unit
// key; that key is the whole reason the composer exists.
type Config struct {
	Country string

	// PostalUnitsPath: CSV with columns postal_code, admin_unit.
	PostalUnitsPath string

	// UnitDistrictsPath: CSV with columns admin_unit, district_id.
	UnitDistrictsPath string

	// OverridesPath: optional CSV with columns postal_code, district_ids
	// (semicolon-separated), note. An override fully replaces the
	// computed set for its postal code.
	OverridesPath string
}

// Report summarizes one composer run for data-quality gating. Operators
// compare it against the configured unjoined-ratio threshold before
// publishing the snapshot.
type Report struct {
	Country       string    `json:"country"`
	PostalCodes   int       `json:"postal_codes"`
	Composed      int       `json:"composed"`
	Overridden    int       `json:"overridden"`
	Unjoined      int       `json:"unjoined"`
	MultiDistrict int       `json:"multi_district"`
	SkippedRows   int       `json:"skipped_rows"`
	GeneratedAt   time.Time `json:"generated_at"`
}

// UnjoinedRatio is the share of postal codes whose administrative units
// mapped to no district at all.
func (r *Report) UnjoinedRatio() float64 {
	if r.PostalCodes == 0 {
		return 0
	}
	return float64(r.Unjoined) / float64(r.PostalCodes)
}

// Compose joins the two source tables through the administrative-unit
// key, unions district sets per postal code, then applies the override
// layer. Output ordering never depends on input ordering: entries are
// canonicalized before the snapshot is written, so re-running against
// unchanged inputs is byte-identical.
func Compose(cfg Config) (*snapshot.Table, *Report, error) {
	report := &Report{Country: cfg.Country, GeneratedAt: time.Now().UTC()}

	postalRows, skipped, err := readColumns(cfg.PostalUnitsPath, []string{"postal_code", "admin_unit"})
	if err != nil {
		return nil, nil, fmt.Errorf("read postal-unit table: %w", err)
	}
	report.SkippedRows += skipped

	unitRows, skipped, err := readColumns(cfg.UnitDistrictsPath, []string{"admin_unit", "district_id"})
	if err != nil {
		return nil, nil, fmt.Errorf("read unit-district table: %w", err)
	}
	report.SkippedRows += skipped

	unitDistricts := make(map[string][]string)
	for _, row := range unitRows {
		unitDistricts[row[0]] = append(unitDistricts[row[0]], row[1])
	}

	postalUnits := make(map[string][]string)
	for _, row := range postalRows {
		code, err := postal.Normalize(cfg.Country, row[0])
		if err != nil {
			report.SkippedRows++
			continue
		}
		postalUnits[code] = append(postalUnits[code], row[1])
	}
	report.PostalCodes = len(postalUnits)

	entries := make(map[string][]string, len(postalUnits))
	for code, units := range postalUnits {
		// Union over all of the postal code's administrative units.
		// A code spanning units in different districts legitimately
		// resolves to several districts.
		seen := make(map[string]struct{})
		var ids []string
		for _, u := range units {
			for _, id := range unitDistricts[u] {
				if _, dup := seen[id]; dup {
					continue
				}
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
		if len(ids) == 0 {
			report.Unjoined++
			continue
		}
		if len(ids) > 1 {
			report.MultiDistrict++
		}
		entries[code] = ids
		report.Composed++
	}

	table := &snapshot.Table{
		Country:  strings.ToUpper(cfg.Country),
		Strategy: "crosswalk",
		Entries:  entries,
	}

	if cfg.OverridesPath != "" {
		if err := applyOverrides(cfg, table, report); err != nil {
			return nil, nil, err
		}
	}

	log.Printf("[crosswalk] %s: %d postal codes, %d composed, %d overridden, %d unjoined, %d rows skipped",
		cfg.Country, report.PostalCodes, report.Composed, report.Overridden, report.Unjoined, report.SkippedRows)

	return table, report, nil
}

// applyOverrides replaces computed sets wholesale. Computed and override
// values are never merged: the override table exists precisely for the
// urban postal codes the automated join cannot reconstruct.
func applyOverrides(cfg Config, table *snapshot.Table, report *Report) error {
	rows, skipped, err := readColumns(cfg.OverridesPath, []string{"postal_code", "district_ids", "note"})
	if err != nil {
		return fmt.Errorf("read override table: %w", err)
	}
	report.SkippedRows += skipped

	table.Overridden = make(map[string]string)
	for _, row := range rows {
		code, err := postal.Normalize(cfg.Country, row[0])
		if err != nil {
			report.SkippedRows++
			continue
		}

		var ids []string
		for _, id := range strings.Split(row[1], ";") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
		if len(ids) == 0 {
			report.SkippedRows++
			continue
		}

		if _, had := table.Entries[code]; !had {
			report.PostalCodes++
		}
		table.Entries[code] = ids
		table.Overridden[code] = row[2]
		report.Overridden++
	}

	return nil
}
