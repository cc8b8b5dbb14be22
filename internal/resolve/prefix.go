package resolve

import (
	"context"
	"fmt"

	"github.com/LetterLobby/LL-Backend/internal/config"
)

func init() {
	RegisterStrategy(config.StrategyPrefix, newPrefixStrategy)
}

// prefixStrategy keys the lookup on a fixed-length prefix of the
// normalized postal code (e.g. the Canadian forward sortation area).
// Prefixes are coarser than full codes, so several districts per prefix
// is the normal case, and every match is reported; silently taking the
// first would address the wrong representative for many users.
type prefixStrategy struct {
	entries   map[string][]string
	prefixLen int
}

func newPrefixStrategy(bc BuildContext) (Strategy, error) {
	if bc.Table == nil {
		return nil, fmt.Errorf("%s: prefix strategy needs a loaded snapshot", bc.Country.Code)
	}
	if bc.Country.PrefixLen <= 0 {
		return nil, fmt.Errorf("%s: prefix strategy needs prefix_len", bc.Country.Code)
	}
	return &prefixStrategy{
		entries:   bc.Table.Entries,
		prefixLen: bc.Country.PrefixLen,
	}, nil
}

func (s *prefixStrategy) Name() string { return "prefix" }

func (s *prefixStrategy) DistrictIDs(ctx context.Context, code string) ([]string, error) {
	if len(code) < s.prefixLen {
		return nil, ErrNotFound
	}
	ids, ok := s.entries[code[:s.prefixLen]]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]string, len(ids))
	copy(out, ids)
	return out, nil
}
