package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/LetterLobby/LL-Backend/internal/config"
	"github.com/LetterLobby/LL-Backend/internal/crosswalk"
	"github.com/LetterLobby/LL-Backend/internal/snapshot"
)

func main() {
	var (
		country       = flag.String("country", "", "ISO country code (e.g. DE)")
		postalUnits   = flag.String("postal-units", "", "CSV: postal_code,admin_unit")
		unitDistricts = flag.String("unit-districts", "", "CSV: admin_unit,district_id")
		overrides     = flag.String("overrides", "", "optional CSV: postal_code,district_ids,note")
		out           = flag.String("out", "", "snapshot output path")
		reportPath    = flag.String("report", "", "optional build report output path")
		cfgPath       = flag.String("config", "", "optional countries.yaml supplying the QA threshold")
		maxUnjoined   = flag.Float64("max-unjoined", 0.02, "fail the build above this unjoined ratio")
	)
	flag.Parse()

	threshold := *maxUnjoined
	if *cfgPath != "" && !flagWasSet("max-unjoined") {
		cfg, err := config.Load(*cfgPath)
		if err != nil {
			log.Fatal(err)
		}
		threshold = cfg.Build.MaxUnmatchedRatio
	}

	if *country == "" || *postalUnits == "" || *unitDistricts == "" || *out == "" {
		flag.Usage()
		os.Exit(2)
	}

	table, report, err := crosswalk.Compose(crosswalk.Config{
		Country:           *country,
		PostalUnitsPath:   *postalUnits,
		UnitDistrictsPath: *unitDistricts,
		OverridesPath:     *overrides,
	})
	if err != nil {
		log.Fatal(err)
	}

	if *reportPath != "" {
		b, _ := json.MarshalIndent(report, "", "  ")
		if err := os.WriteFile(*reportPath, append(b, '\n'), 0o644); err != nil {
			log.Fatal("write report: ", err)
		}
	}

	if ratio := report.UnjoinedRatio(); ratio > threshold {
		log.Fatalf("unjoined ratio %.4f exceeds threshold %.4f, refusing to publish", ratio, threshold)
	}

	if err := snapshot.Write(*out, table); err != nil {
		log.Fatal(err)
	}
	log.Printf("wrote %s (%d entries, fingerprint %.12s)", *out, len(table.Entries), table.Fingerprint)
}

func flagWasSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
