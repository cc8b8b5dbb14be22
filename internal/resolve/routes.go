package resolve

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func SetupRoutes(d *Dispatcher) http.Handler {
	h := NewHandler(d)
	r := chi.NewRouter()

	r.Get("/countries", h.ListCountries)
	r.Get("/{country}/{postal}", h.ResolvePostal)

	return r
}
