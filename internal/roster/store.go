package roster

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/LetterLobby/LL-Backend/internal/postal"
	"gorm.io/gorm"
)

// Store holds the district catalog and representative roster in memory.
// It is built once at process start and never mutated after, so
// concurrent resolution requests read it without locking.
type Store struct {
	districts  map[string]District
	byCountry  map[string][]District
	byDistrict map[string][]Representative
	byRegion   map[string]map[string][]Representative
	nameIndex  map[string]map[string]string // country -> folded name -> district id
}

// NewStore indexes a catalog and roster. Used by Load and directly by
// tests that have no database.
func NewStore(districts []District, reps []Representative) *Store {
	s := &Store{
		districts:  make(map[string]District, len(districts)),
		byCountry:  make(map[string][]District),
		byDistrict: make(map[string][]Representative),
		byRegion:   make(map[string]map[string][]Representative),
		nameIndex:  make(map[string]map[string]string),
	}

	for _, d := range districts {
		cc := strings.ToUpper(d.CountryCode)
		d.CountryCode = cc
		s.districts[d.ID] = d
		s.byCountry[cc] = append(s.byCountry[cc], d)

		if _, ok := s.nameIndex[cc]; !ok {
			s.nameIndex[cc] = make(map[string]string)
		}
		folded := postal.Fold(d.Name)
		if prev, dup := s.nameIndex[cc][folded]; dup && prev != d.ID {
			// Two catalog rows folding to one name would make the
			// geocode join pick arbitrarily; surface it at load time.
			log.Printf("[roster] WARNING: duplicate folded district name %q in %s (%s, %s)", folded, cc, prev, d.ID)
			continue
		}
		s.nameIndex[cc][folded] = d.ID
	}

	for _, r := range reps {
		cc := strings.ToUpper(r.CountryCode)
		r.CountryCode = cc
		if r.DistrictID != "" {
			s.byDistrict[r.DistrictID] = append(s.byDistrict[r.DistrictID], r)
		}
		if r.RegionCode != "" {
			if _, ok := s.byRegion[cc]; !ok {
				s.byRegion[cc] = make(map[string][]Representative)
			}
			s.byRegion[cc][r.RegionCode] = append(s.byRegion[cc][r.RegionCode], r)
		}
	}

	// Deterministic ordering for every caller-visible slice.
	for id := range s.byDistrict {
		sortReps(s.byDistrict[id])
	}
	for _, regions := range s.byRegion {
		for code := range regions {
			sortReps(regions[code])
		}
	}
	for cc := range s.byCountry {
		sort.Slice(s.byCountry[cc], func(i, j int) bool {
			return s.byCountry[cc][i].ID < s.byCountry[cc][j].ID
		})
	}

	return s
}

func sortReps(reps []Representative) {
	sort.Slice(reps, func(i, j int) bool {
		if reps[i].FullName != reps[j].FullName {
			return reps[i].FullName < reps[j].FullName
		}
		return reps[i].ExternalID < reps[j].ExternalID
	})
}

// Load reads the full catalog and roster from the database and indexes
// them. Both tables are rebuilt per electoral cycle by import tooling;
// a running process only ever sees one consistent generation.
func Load(ctx context.Context, db *gorm.DB) (*Store, error) {
	var districts []District
	if err := db.WithContext(ctx).Find(&districts).Error; err != nil {
		return nil, fmt.Errorf("load district catalog: %w", err)
	}

	var reps []Representative
	if err := db.WithContext(ctx).Find(&reps).Error; err != nil {
		return nil, fmt.Errorf("load representative roster: %w", err)
	}

	log.Printf("[roster] loaded %d districts, %d representatives", len(districts), len(reps))
	return NewStore(districts, reps), nil
}

// District returns the catalog entry for a district id.
func (s *Store) District(id string) (District, bool) {
	d, ok := s.districts[id]
	return d, ok
}

// ByDistrict returns all representatives bound to a district id, covering
// the many-representatives-per-district case.
func (s *Store) ByDistrict(id string) []Representative {
	return s.byDistrict[id]
}

// ByRegion returns the upper-chamber representatives for a region code
// (e.g. the two senators of a US state). Works independently of any
// district lookup.
func (s *Store) ByRegion(countryCode, regionCode string) []Representative {
	regions, ok := s.byRegion[strings.ToUpper(countryCode)]
	if !ok {
		return nil
	}
	return regions[regionCode]
}

// DistrictIDByName resolves a folded display name to a district id.
// Only the geocode strategy uses this; everywhere else ids are the join
// key.
func (s *Store) DistrictIDByName(countryCode, foldedName string) (string, bool) {
	names, ok := s.nameIndex[strings.ToUpper(countryCode)]
	if !ok {
		return "", false
	}
	id, ok := names[foldedName]
	return id, ok
}

// DistrictsByCountry lists a country's catalog, sorted by id.
func (s *Store) DistrictsByCountry(countryCode string) []District {
	return s.byCountry[strings.ToUpper(countryCode)]
}
