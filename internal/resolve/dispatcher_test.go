package resolve

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/LetterLobby/LL-Backend/internal/config"
	"github.com/LetterLobby/LL-Backend/internal/resolve/geocoding"
	"github.com/LetterLobby/LL-Backend/internal/roster"
	"github.com/LetterLobby/LL-Backend/internal/snapshot"
)

func testRosterStore() *roster.Store {
	districts := []roster.District{
		{ID: "DE-075", Name: "Berlin-Mitte", CountryCode: "DE"},
		{ID: "FR-75-02", Name: "Paris 2e circonscription", CountryCode: "FR"},
		{ID: "FR-75-11", Name: "Paris 11e circonscription", CountryCode: "FR"},
		{ID: "CA-35020", Name: "Ottawa Centre", CountryCode: "CA"},
		{ID: "CA-35021", Name: "Ottawa South", CountryCode: "CA"},
		{ID: "CA-35022", Name: "Ottawa—Vanier", CountryCode: "CA"},
		{ID: "US-IN-09", Name: "Indiana's 9th congressional district", CountryCode: "US", Region: "IN"},
		{ID: "GB-E14000639", Name: "Cities of London and Westminster", CountryCode: "GB"},
	}
	reps := []roster.Representative{
		{ExternalID: "de-1", FullName: "Anna Beispiel", Role: "MdB", CountryCode: "DE", DistrictID: "DE-075"},
		{ExternalID: "fr-2", FullName: "Claire Deux", Role: "Députée", CountryCode: "FR", DistrictID: "FR-75-02"},
		{ExternalID: "fr-11", FullName: "Marc Onze", Role: "Député", CountryCode: "FR", DistrictID: "FR-75-11"},
		{ExternalID: "ca-20", FullName: "Jo Centre", Role: "MP", CountryCode: "CA", DistrictID: "CA-35020"},
		{ExternalID: "ca-21", FullName: "Pat South", Role: "MP", CountryCode: "CA", DistrictID: "CA-35021"},
		{ExternalID: "ca-22", FullName: "Sam Vanier", Role: "MP", CountryCode: "CA", DistrictID: "CA-35022"},
		{ExternalID: "us-h9", FullName: "Sam House", Role: "Representative", CountryCode: "US", DistrictID: "US-IN-09"},
		{ExternalID: "us-s1", FullName: "Alex Senate", Role: "Senator", CountryCode: "US", RegionCode: "IN"},
		{ExternalID: "us-s2", FullName: "Morgan Senate", Role: "Senator", CountryCode: "US", RegionCode: "IN"},
		{ExternalID: "gb-1", FullName: "Jordan Member", Role: "MP", CountryCode: "GB", DistrictID: "GB-E14000639"},
	}
	return roster.NewStore(districts, reps)
}

func writeSnapshot(t *testing.T, dir, name string, table *snapshot.Table) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := snapshot.Write(path, table); err != nil {
		t.Fatal(err)
	}
	return path
}

// testDispatcher wires every strategy against in-memory fixtures plus an
// httptest geocoding backend.
func testDispatcher(t *testing.T, geocodeBase string) *Dispatcher {
	t.Helper()
	dir := t.TempDir()

	dePath := writeSnapshot(t, dir, "de.json", &snapshot.Table{
		Country: "DE", Strategy: "crosswalk",
		Entries: map[string][]string{"10115": {"DE-075"}},
	})
	frPath := writeSnapshot(t, dir, "fr.json", &snapshot.Table{
		Country: "FR", Strategy: "crosswalk",
		Entries:    map[string][]string{"75006": {"FR-75-11", "FR-75-02", "FR-75-11"}},
		Overridden: map[string]string{"75006": "6th arrondissement split"},
	})
	caPath := writeSnapshot(t, dir, "ca.json", &snapshot.Table{
		Country: "CA", Strategy: "prefix",
		Entries: map[string][]string{"K1A": {"CA-35020", "CA-35021", "CA-35022"}},
	})
	usPath := writeSnapshot(t, dir, "us.json", &snapshot.Table{
		Country: "US", Strategy: "spatial",
		Entries: map[string][]string{"47403": {"US-IN-09"}},
		Regions: map[string]string{"474": "IN"},
	})

	cfg := &config.Config{
		Countries: []config.Country{
			{Code: "DE", Strategy: config.StrategyTable, Snapshot: dePath},
			{Code: "FR", Strategy: config.StrategyTable, Snapshot: frPath},
			{Code: "CA", Strategy: config.StrategyPrefix, Snapshot: caPath, PrefixLen: 3},
			{Code: "US", Strategy: config.StrategyTable, Snapshot: usPath, RegionPrefixLen: 3},
			{Code: "GB", Strategy: config.StrategyGeocode},
		},
	}

	geocoder := geocoding.NewClient(geocodeBase, time.Second, nil)
	d, err := NewDispatcher(cfg, testRosterStore(), geocoder)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func geocodeServer(t *testing.T, constituency string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			http.Error(w, `{"status":404,"error":"Postcode not found"}`, status)
			return
		}
		w.Write([]byte(`{"status":200,"result":{"parliamentary_constituency":"` + constituency + `"}}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestResolveSingleDistrict(t *testing.T) {
	srv := geocodeServer(t, "", http.StatusNotFound)
	d := testDispatcher(t, srv.URL)

	res, err := d.Resolve(context.Background(), "DE", "10115")
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusResolved {
		t.Fatalf("status = %s, want resolved", res.Status)
	}
	if !reflect.DeepEqual(res.DistrictIDs, []string{"DE-075"}) {
		t.Errorf("district ids = %v", res.DistrictIDs)
	}
	if len(res.Representatives) != 1 || res.Representatives[0].FullName != "Anna Beispiel" {
		t.Errorf("representatives = %v", res.Representatives)
	}
}

func TestResolveOverrideSpansTwoDistricts(t *testing.T) {
	srv := geocodeServer(t, "", http.StatusNotFound)
	d := testDispatcher(t, srv.URL)

	res, err := d.Resolve(context.Background(), "FR", "75006")
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusAmbiguous {
		t.Fatalf("status = %s, want ambiguous", res.Status)
	}
	// Exactly the override's two districts, deduplicated and sorted.
	if !reflect.DeepEqual(res.DistrictIDs, []string{"FR-75-02", "FR-75-11"}) {
		t.Errorf("district ids = %v", res.DistrictIDs)
	}
	if len(res.Candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(res.Candidates))
	}
	if res.Candidates[0].DistrictName != "Paris 2e circonscription" {
		t.Errorf("candidate name = %q", res.Candidates[0].DistrictName)
	}
}

func TestResolvePrefixReturnsAllCandidates(t *testing.T) {
	srv := geocodeServer(t, "", http.StatusNotFound)
	d := testDispatcher(t, srv.URL)

	res, err := d.Resolve(context.Background(), "CA", "k1a 0b1")
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusAmbiguous {
		t.Fatalf("status = %s, want ambiguous", res.Status)
	}
	if len(res.Candidates) != 3 {
		t.Fatalf("expected all 3 prefix candidates, got %d", len(res.Candidates))
	}
	for _, c := range res.Candidates {
		if len(c.Representatives) != 1 {
			t.Errorf("candidate %s has %d reps", c.DistrictID, len(c.Representatives))
		}
	}
}

func TestResolveInvalidFormatBeforeLookup(t *testing.T) {
	srv := geocodeServer(t, "", http.StatusNotFound)
	d := testDispatcher(t, srv.URL)

	for _, raw := range []string{"abc", "1234", "", "10115-X"} {
		res, err := d.Resolve(context.Background(), "DE", raw)
		if err != nil {
			t.Fatal(err)
		}
		if res.Status != StatusUnresolved || res.Reason != ReasonInvalidFormat {
			t.Errorf("Resolve(DE, %q) = %s/%s, want unresolved/invalid-format", raw, res.Status, res.Reason)
		}
	}
}

func TestResolveNotFoundKeepsRegional(t *testing.T) {
	srv := geocodeServer(t, "", http.StatusNotFound)
	d := testDispatcher(t, srv.URL)

	// Valid ZIP, absent from the table, but the ZIP3 still names the
	// state, so the senators come back anyway.
	res, err := d.Resolve(context.Background(), "US", "47499")
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusUnresolved || res.Reason != ReasonNotFound {
		t.Fatalf("got %s/%s, want unresolved/not-found", res.Status, res.Reason)
	}
	if len(res.Regional) != 2 {
		t.Errorf("expected 2 regional representatives, got %d", len(res.Regional))
	}
}

func TestResolveRegionalOnResolved(t *testing.T) {
	srv := geocodeServer(t, "", http.StatusNotFound)
	d := testDispatcher(t, srv.URL)

	res, err := d.Resolve(context.Background(), "US", "47403-1234")
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusResolved {
		t.Fatalf("status = %s", res.Status)
	}
	if len(res.Regional) != 2 {
		t.Errorf("expected senators alongside the house member, got %d", len(res.Regional))
	}
}

func TestResolveGeocodeSuccess(t *testing.T) {
	srv := geocodeServer(t, "Cities of London and Westminster", http.StatusOK)
	d := testDispatcher(t, srv.URL)

	res, err := d.Resolve(context.Background(), "GB", "SW1A 1AA")
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusResolved {
		t.Fatalf("status = %s/%s, want resolved", res.Status, res.Reason)
	}
	if !reflect.DeepEqual(res.DistrictIDs, []string{"GB-E14000639"}) {
		t.Errorf("district ids = %v", res.DistrictIDs)
	}
}

func TestResolveGeocodeServiceFailure(t *testing.T) {
	srv := geocodeServer(t, "", http.StatusNotFound)
	d := testDispatcher(t, srv.URL)

	res, err := d.Resolve(context.Background(), "GB", "SW1A 1AA")
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusUnresolved || res.Reason != ReasonUnavailable {
		t.Errorf("got %s/%s, want unresolved/geocoding-unavailable", res.Status, res.Reason)
	}
}

func TestResolveGeocodeNameNotInCatalog(t *testing.T) {
	srv := geocodeServer(t, "Some Renamed Constituency", http.StatusOK)
	d := testDispatcher(t, srv.URL)

	res, err := d.Resolve(context.Background(), "GB", "SW1A 1AA")
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusUnresolved || res.Reason != ReasonUnavailable {
		t.Errorf("got %s/%s, want unresolved/geocoding-unavailable", res.Status, res.Reason)
	}
}

func TestResolveUnknownCountryIsError(t *testing.T) {
	srv := geocodeServer(t, "", http.StatusNotFound)
	d := testDispatcher(t, srv.URL)

	if _, err := d.Resolve(context.Background(), "XX", "12345"); err == nil {
		t.Fatal("expected error for unknown country code")
	}
}
