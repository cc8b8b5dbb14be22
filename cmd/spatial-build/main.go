package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/LetterLobby/LL-Backend/internal/config"
	"github.com/LetterLobby/LL-Backend/internal/snapshot"
	"github.com/LetterLobby/LL-Backend/internal/spatial"
)

func main() {
	var (
		country         = flag.String("country", "", "ISO country code (e.g. US)")
		postalPath      = flag.String("postal", "", "GeoJSON of postal-code-area polygons")
		districtPath    = flag.String("districts", "", "GeoJSON of district polygons")
		postalIDProp    = flag.String("postal-id-prop", "ZCTA5CE20", "postal feature id property")
		districtIDProp  = flag.String("district-id-prop", "GEOID", "district feature id property")
		districtName    = flag.String("district-name-prop", "NAMELSAD", "district feature name property")
		districtRegion  = flag.String("district-region-prop", "STUSPS", "district feature region property")
		regionPrefixLen = flag.Int("region-prefix-len", 3, "postal prefix length for the region table (0 disables)")
		out             = flag.String("out", "", "snapshot output path")
		reportPath      = flag.String("report", "", "optional build report output path")
		cfgPath         = flag.String("config", "", "optional countries.yaml supplying the QA threshold")
		maxUnmatched    = flag.Float64("max-unmatched", 0.02, "fail the build above this unmatched ratio")
	)
	flag.Parse()

	threshold := *maxUnmatched
	if *cfgPath != "" && !flagWasSet("max-unmatched") {
		cfg, err := config.Load(*cfgPath)
		if err != nil {
			log.Fatal(err)
		}
		threshold = cfg.Build.MaxUnmatchedRatio
	}

	if *country == "" || *postalPath == "" || *districtPath == "" || *out == "" {
		flag.Usage()
		os.Exit(2)
	}

	table, report, err := spatial.Build(spatial.Config{
		Country:         *country,
		PostalPath:      *postalPath,
		DistrictPath:    *districtPath,
		PostalProps:     spatial.PropertyMap{ID: *postalIDProp},
		DistrictProps:   spatial.PropertyMap{ID: *districtIDProp, Name: *districtName, Region: *districtRegion},
		RegionPrefixLen: *regionPrefixLen,
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

	if ratio := report.UnmatchedRatio(); ratio > threshold {
		log.Fatalf("unmatched ratio %.4f exceeds threshold %.4f, refusing to publish", ratio, threshold)
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
