package resolve

import (
	"context"
	"fmt"
	"log"

	"github.com/LetterLobby/LL-Backend/internal/config"
	"github.com/LetterLobby/LL-Backend/internal/postal"
)

func init() {
	RegisterStrategy(config.StrategyGeocode, newGeocodeStrategy)
}

// geocodeStrategy asks an external service for the constituency name and
// joins it against the district catalog's display names. Weaker than the
// table strategies by construction: it depends on network availability
// and on two independently maintained name sources agreeing exactly
// after folding. Every failure mode degrades to ErrUnavailable so the
// letter-writing flow never breaks on a lookup.
type geocodeStrategy struct {
	bc BuildContext
}

func newGeocodeStrategy(bc BuildContext) (Strategy, error) {
	if bc.Geocoder == nil {
		return nil, fmt.Errorf("%s: geocode strategy needs a geocoding client", bc.Country.Code)
	}
	return &geocodeStrategy{bc: bc}, nil
}

func (s *geocodeStrategy) Name() string { return "geocode" }

func (s *geocodeStrategy) DistrictIDs(ctx context.Context, code string) ([]string, error) {
	name, err := s.bc.Geocoder.Constituency(ctx, code)
	if err != nil {
		log.Printf("[resolve] %s geocode %s: %v", s.bc.Country.Code, code, err)
		return nil, ErrUnavailable
	}

	id, ok := s.bc.Store.DistrictIDByName(s.bc.Country.Code, postal.Fold(name))
	if !ok {
		// Name drift across redistricting cycles; no fuzzy matching,
		// a near-miss could silently address the wrong representative.
		log.Printf("[resolve] %s geocode %s: constituency %q not in catalog", s.bc.Country.Code, code, name)
		return nil, ErrUnavailable
	}

	return []string{id}, nil
}
