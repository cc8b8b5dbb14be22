package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/LetterLobby/LL-Backend/internal/config"
	"github.com/LetterLobby/LL-Backend/internal/db"
	"github.com/LetterLobby/LL-Backend/internal/middleware"
	"github.com/LetterLobby/LL-Backend/internal/resolve"
	"github.com/LetterLobby/LL-Backend/internal/resolve/geocoding"
	"github.com/LetterLobby/LL-Backend/internal/roster"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	response := "Server is up!"
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, response)
}

func main() {
	_ = godotenv.Load(".env.local")
	db.Connect()

	port := os.Getenv("PORT")
	if port == "" {
		port = "5050"
	}

	configPath := os.Getenv("COUNTRIES_CONFIG")
	if configPath == "" {
		configPath = "config/countries.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal("Failed to load country config: ", err)
	}

	roster.Init()
	store, err := roster.Load(context.Background(), db.DB)
	if err != nil {
		log.Fatal("Failed to load roster: ", err)
	}

	geocoder := geocoding.NewClient(cfg.Geocode.BaseURL, cfg.GeocodeTimeout(), geocoding.OpenCacheFromEnv())

	dispatcher, err := resolve.NewDispatcher(cfg, store, geocoder)
	if err != nil {
		log.Fatal("Failed to build resolver dispatch: ", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware)
	r.Get("/", RootHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Mount("/resolve", resolve.SetupRoutes(dispatcher))

	fmt.Println("Server listening on port :" + port + "...")

	http.ListenAndServe("0.0.0.0:"+port, r)
}
