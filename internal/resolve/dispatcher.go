package resolve

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/LetterLobby/LL-Backend/internal/config"
	"github.com/LetterLobby/LL-Backend/internal/metrics"
	"github.com/LetterLobby/LL-Backend/internal/postal"
	"github.com/LetterLobby/LL-Backend/internal/resolve/geocoding"
	"github.com/LetterLobby/LL-Backend/internal/roster"
	"github.com/LetterLobby/LL-Backend/internal/snapshot"
)

type countryEntry struct {
	cfg      config.Country
	strategy Strategy

	// regions maps a postal-code prefix to an upper-chamber region code
	// (from the snapshot); nil when the country has no regional chamber.
	regions map[string]string
}

// Dispatcher selects the per-country strategy and turns district ids
// into contactable representatives. All state is built at startup and
// read-only afterwards.
type Dispatcher struct {
	store     *roster.Store
	countries map[string]*countryEntry
}

// NewDispatcher loads every configured country's snapshot and constructs
// its strategy. A country that fails to load fails startup: a resolver
// silently missing a country would misdirect every letter for it.
func NewDispatcher(cfg *config.Config, store *roster.Store, geocoder *geocoding.Client) (*Dispatcher, error) {
	d := &Dispatcher{
		store:     store,
		countries: make(map[string]*countryEntry, len(cfg.Countries)),
	}

	for _, country := range cfg.Countries {
		code := strings.ToUpper(country.Code)
		country.Code = code

		var table *snapshot.Table
		if country.Snapshot != "" {
			var err error
			table, err = snapshot.Load(country.Snapshot)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", code, err)
			}
			if table.Country != code {
				return nil, fmt.Errorf("%s: snapshot %s is for %s", code, country.Snapshot, table.Country)
			}
			metrics.SnapshotEntries.WithLabelValues(code).Set(float64(len(table.Entries)))
		}

		strategy, err := newStrategy(BuildContext{
			Country:  country,
			Table:    table,
			Store:    store,
			Geocoder: geocoder,
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", code, err)
		}

		entry := &countryEntry{cfg: country, strategy: strategy}
		if table != nil {
			entry.regions = table.Regions
		}
		d.countries[code] = entry

		log.Printf("[resolve] %s: %s strategy ready", code, strategy.Name())
	}

	return d, nil
}

// Countries lists the configured country codes, sorted.
func (d *Dispatcher) Countries() []string {
	out := make([]string, 0, len(d.countries))
	for code := range d.countries {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// Live reports whether the country's strategy performs a network call
// per request (and so must not be edge-cached).
func (d *Dispatcher) Live(countryCode string) bool {
	e, ok := d.countries[strings.ToUpper(countryCode)]
	return ok && e.cfg.Strategy == config.StrategyGeocode
}

// Resolve validates, normalizes, and resolves a postal code. The only
// error return is an unknown country code, a programmer error; every
// lookup outcome, including malformed input, is a Result.
func (d *Dispatcher) Resolve(ctx context.Context, countryCode, rawPostal string) (Result, error) {
	cc := strings.ToUpper(strings.TrimSpace(countryCode))
	entry, ok := d.countries[cc]
	if !ok {
		return Result{}, fmt.Errorf("unknown country code %q", countryCode)
	}

	start := time.Now()
	defer func() {
		metrics.ResolutionDurationMs.WithLabelValues(cc).Observe(float64(time.Since(start).Milliseconds()))
	}()

	code, err := postal.Normalize(cc, rawPostal)
	if err != nil {
		metrics.ResolutionsTotal.WithLabelValues(cc, ReasonInvalidFormat).Inc()
		return Result{Status: StatusUnresolved, Reason: ReasonInvalidFormat}, nil
	}

	// Regional representatives ride along on every outcome: the region
	// follows from the code's prefix alone, so a district miss doesn't
	// cost the user their senators.
	regional := entry.regionalReps(code, d.store)

	ids, err := entry.strategy.DistrictIDs(ctx, code)
	switch {
	case errors.Is(err, ErrNotFound):
		metrics.ResolutionsTotal.WithLabelValues(cc, ReasonNotFound).Inc()
		return Result{Status: StatusUnresolved, Reason: ReasonNotFound, Regional: regional}, nil
	case errors.Is(err, ErrUnavailable):
		metrics.ResolutionsTotal.WithLabelValues(cc, ReasonUnavailable).Inc()
		return Result{Status: StatusUnresolved, Reason: ReasonUnavailable, Regional: regional}, nil
	case err != nil:
		log.Printf("[resolve] %s %s: strategy error: %v", cc, code, err)
		metrics.ResolutionsTotal.WithLabelValues(cc, ReasonUnavailable).Inc()
		return Result{Status: StatusUnresolved, Reason: ReasonUnavailable, Regional: regional}, nil
	}

	sort.Strings(ids)

	if len(ids) == 1 {
		metrics.ResolutionsTotal.WithLabelValues(cc, string(StatusResolved)).Inc()
		return Result{
			Status:          StatusResolved,
			DistrictIDs:     ids,
			Representatives: d.store.ByDistrict(ids[0]),
			Regional:        regional,
		}, nil
	}

	// More than one district: the full candidate set goes back to the
	// caller. Whether to prompt the user or auto-pick is caller policy,
	// not resolver policy.
	candidates := make([]Candidate, 0, len(ids))
	for _, id := range ids {
		c := Candidate{DistrictID: id, Representatives: d.store.ByDistrict(id)}
		if district, ok := d.store.District(id); ok {
			c.DistrictName = district.Name
		}
		candidates = append(candidates, c)
	}

	metrics.ResolutionsTotal.WithLabelValues(cc, string(StatusAmbiguous)).Inc()
	return Result{
		Status:      StatusAmbiguous,
		DistrictIDs: ids,
		Candidates:  candidates,
		Regional:    regional,
	}, nil
}

func (e *countryEntry) regionalReps(code string, store *roster.Store) []roster.Representative {
	n := e.cfg.RegionPrefixLen
	if n <= 0 || e.regions == nil || len(code) < n {
		return nil
	}
	region, ok := e.regions[code[:n]]
	if !ok {
		return nil
	}
	return store.ByRegion(e.cfg.Code, region)
}
