package resolve

import (
	"context"
	"fmt"

	"github.com/LetterLobby/LL-Backend/internal/config"
)

func init() {
	RegisterStrategy(config.StrategyTable, newTableStrategy)
}

// tableStrategy serves a precomputed snapshot: the crosswalk composer's
// and the spatial builder's outputs share the same table contract, so
// one strategy covers both.
type tableStrategy struct {
	entries map[string][]string
}

func newTableStrategy(bc BuildContext) (Strategy, error) {
	if bc.Table == nil {
		return nil, fmt.Errorf("%s: table strategy needs a loaded snapshot", bc.Country.Code)
	}
	return &tableStrategy{entries: bc.Table.Entries}, nil
}

func (s *tableStrategy) Name() string { return "table" }

func (s *tableStrategy) DistrictIDs(ctx context.Context, code string) ([]string, error) {
	ids, ok := s.entries[code]
	if !ok {
		return nil, ErrNotFound
	}
	// Copy so no caller can reach into the shared table.
	out := make([]string, len(ids))
	copy(out, ids)
	return out, nil
}
