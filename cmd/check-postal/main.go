package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/LetterLobby/LL-Backend/internal/config"
	"github.com/LetterLobby/LL-Backend/internal/db"
	"github.com/LetterLobby/LL-Backend/internal/resolve"
	"github.com/LetterLobby/LL-Backend/internal/resolve/geocoding"
	"github.com/LetterLobby/LL-Backend/internal/roster"
	"github.com/joho/godotenv"
)

// Operator spot check: resolve one postal code against the live tables
// and print who a letter would go to.
func main() {
	godotenv.Load(".env.local")

	var (
		country    = flag.String("country", "", "ISO country code")
		code       = flag.String("postal", "", "postal code to resolve")
		configPath = flag.String("config", "config/countries.yaml", "country registry")
	)
	flag.Parse()

	if *country == "" || *code == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	db.Connect()
	store, err := roster.Load(context.Background(), db.DB)
	if err != nil {
		log.Fatal(err)
	}

	geocoder := geocoding.NewClient(cfg.Geocode.BaseURL, cfg.GeocodeTimeout(), nil)
	dispatcher, err := resolve.NewDispatcher(cfg, store, geocoder)
	if err != nil {
		log.Fatal(err)
	}

	res, err := dispatcher.Resolve(context.Background(), *country, *code)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("%s %s -> %s", *country, *code, res.Status)
	if res.Reason != "" {
		fmt.Printf(" (%s)", res.Reason)
	}
	fmt.Println()

	for _, id := range res.DistrictIDs {
		name := ""
		if d, ok := store.District(id); ok {
			name = d.Name
		}
		fmt.Printf("  district %s %s\n", id, name)
	}
	for _, c := range res.Candidates {
		fmt.Printf("  candidate %s (%s)\n", c.DistrictID, c.DistrictName)
		for _, rep := range c.Representatives {
			fmt.Printf("    - %s (%s) | %s\n", rep.FullName, rep.Party, rep.Role)
		}
	}
	for _, rep := range res.Representatives {
		fmt.Printf("  - %s (%s) | %s\n", rep.FullName, rep.Party, rep.Role)
	}
	for _, rep := range res.Regional {
		fmt.Printf("  regional: %s (%s) | %s\n", rep.FullName, rep.Party, rep.Role)
	}
}
