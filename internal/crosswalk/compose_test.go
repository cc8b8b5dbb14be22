package crosswalk

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/LetterLobby/LL-Backend/internal/snapshot"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func frenchConfig(t *testing.T, dir string) Config {
	postalUnits := "postal_code,admin_unit\n" +
		"75001,75101\n" +
		"75006,75106\n" +
		"13001,13201\n" +
		"13001,13202\n" + // one postal code spanning two communes
		"99999,00000\n" + // commune with no district mapping
		"bad,75101\n" // malformed postal code
	unitDistricts := "admin_unit,district_id\n" +
		"75101,FR-75-01\n" +
		"75106,FR-75-11\n" +
		"13201,FR-13-04\n" +
		"13202,FR-13-05\n" +
		"13202,FR-13-04\n" // duplicate mapping, must dedupe
	overrides := "postal_code,district_ids,note\n" +
		"75006,FR-75-11;FR-75-02,6th arrondissement split across constituencies\n"

	return Config{
		Country:           "FR",
		PostalUnitsPath:   writeFile(t, dir, "postal_units.csv", postalUnits),
		UnitDistrictsPath: writeFile(t, dir, "unit_districts.csv", unitDistricts),
		OverridesPath:     writeFile(t, dir, "overrides.csv", overrides),
	}
}

func TestComposeUnionsOverAdminUnits(t *testing.T) {
	table, report, err := Compose(frenchConfig(t, t.TempDir()))
	if err != nil {
		t.Fatal(err)
	}

	if want := []string{"FR-13-04", "FR-13-05"}; !reflect.DeepEqual(sorted(table, "13001"), want) {
		t.Errorf("13001 = %v, want %v", table.Entries["13001"], want)
	}
	if want := []string{"FR-75-01"}; !reflect.DeepEqual(sorted(table, "75001"), want) {
		t.Errorf("75001 = %v, want %v", table.Entries["75001"], want)
	}
	if report.Unjoined != 1 {
		t.Errorf("expected 1 unjoined postal code, got %d", report.Unjoined)
	}
	if report.SkippedRows == 0 {
		t.Error("expected malformed source row to be counted as skipped")
	}
}

func TestComposeOverrideReplacesComputedSet(t *testing.T) {
	table, report, err := Compose(frenchConfig(t, t.TempDir()))
	if err != nil {
		t.Fatal(err)
	}

	// The crosswalk alone would have said FR-75-11; the override set
	// wins in full, never merged element-wise.
	if want := []string{"FR-75-02", "FR-75-11"}; !reflect.DeepEqual(sorted(table, "75006"), want) {
		t.Errorf("75006 = %v, want override set %v", table.Entries["75006"], want)
	}
	if report.Overridden != 1 {
		t.Errorf("expected 1 override, got %d", report.Overridden)
	}
	if table.Overridden["75006"] == "" {
		t.Error("expected provenance note for 75006")
	}
}

func TestComposeIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	cfg := frenchConfig(t, dir)

	out1 := filepath.Join(dir, "fr1.json")
	out2 := filepath.Join(dir, "fr2.json")

	table, _, err := Compose(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := snapshot.Write(out1, table); err != nil {
		t.Fatal(err)
	}

	table, _, err = Compose(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := snapshot.Write(out2, table); err != nil {
		t.Fatal(err)
	}

	b1, _ := os.ReadFile(out1)
	b2, _ := os.ReadFile(out2)
	if string(b1) != string(b2) {
		t.Error("re-running the composer on unchanged inputs changed the snapshot bytes")
	}
}

func TestComposeMissingColumnFails(t *testing.T) {
	dir := t.TempDir()
	cfg := frenchConfig(t, dir)
	cfg.PostalUnitsPath = writeFile(t, dir, "wrong.csv", "zip,unit\n75001,75101\n")

	if _, _, err := Compose(cfg); err == nil {
		t.Fatal("expected error for missing required column")
	}
}

// sorted returns the entry through snapshot canonicalization so tests
// compare against the persisted ordering.
func sorted(table *snapshot.Table, code string) []string {
	table.Canonicalize()
	return table.Entries[code]
}
