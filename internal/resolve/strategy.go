package resolve

import (
	"context"
	"errors"
	"fmt"

	"github.com/LetterLobby/LL-Backend/internal/config"
	"github.com/LetterLobby/LL-Backend/internal/resolve/geocoding"
	"github.com/LetterLobby/LL-Backend/internal/roster"
	"github.com/LetterLobby/LL-Backend/internal/snapshot"
)

// Sentinel outcomes a strategy reports as return values. Lookup misses
// are normal user-facing outcomes, not exceptional program state.
var (
	ErrNotFound    = errors.New("postal code not found")
	ErrUnavailable = errors.New("geocoding unavailable")
)

// Strategy resolves a normalized postal code to district ids. A strategy
// never decides ambiguity policy; it reports every matching district and
// leaves presentation to the dispatcher and its callers.
type Strategy interface {
	// Name identifies the strategy for logging.
	Name() string

	// DistrictIDs returns all district ids for the code, ErrNotFound for
	// a clean miss, or ErrUnavailable when an upstream dependency failed.
	DistrictIDs(ctx context.Context, code string) ([]string, error)
}

// BuildContext carries everything a strategy constructor may need.
// Table is the loaded snapshot for table-backed strategies, nil for
// live ones.
type BuildContext struct {
	Country  config.Country
	Table    *snapshot.Table
	Store    *roster.Store
	Geocoder *geocoding.Client
}

// strategyRegistry holds strategy constructors, registered from init()
// in each strategy file so new strategies need no dispatcher changes.
var strategyRegistry = make(map[config.StrategyType]func(BuildContext) (Strategy, error))

// RegisterStrategy registers a constructor for a strategy type.
func RegisterStrategy(t config.StrategyType, constructor func(BuildContext) (Strategy, error)) {
	strategyRegistry[t] = constructor
}

func newStrategy(bc BuildContext) (Strategy, error) {
	constructor, ok := strategyRegistry[bc.Country.Strategy]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q", bc.Country.Strategy)
	}
	return constructor(bc)
}
