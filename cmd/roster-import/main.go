package main

import (
	"flag"
	"log"
	"os"

	"github.com/LetterLobby/LL-Backend/internal/rosterimport"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env.local")

	var (
		districtsCSV = flag.String("districts", "", "path to district catalog CSV")
		repsCSV      = flag.String("representatives", "", "path to representative roster CSV")
		dbURL        = flag.String("db", os.Getenv("DATABASE_URL"), "DATABASE_URL")
		source       = flag.String("source", "", "provenance label for this import (required)")
		wipe         = flag.Bool("wipe", false, "DANGER: truncates roster tables before importing")
	)
	flag.Parse()

	if *districtsCSV == "" || *repsCSV == "" || *dbURL == "" || *source == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := rosterimport.Config{
		DatabaseURL:        *dbURL,
		DistrictsCSV:       *districtsCSV,
		RepresentativesCSV: *repsCSV,
		Source:             *source,
		Wipe:               *wipe,
	}

	if err := rosterimport.Run(cfg); err != nil {
		log.Fatal(err)
	}
}
