package resolve

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handler exposes the dispatcher over HTTP for the web form.
type Handler struct {
	dispatcher *Dispatcher
}

func NewHandler(d *Dispatcher) *Handler {
	return &Handler{dispatcher: d}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func addCacheHeaders(w http.ResponseWriter, maxAgeSeconds, swrSeconds int) {
	w.Header().Set("Cache-Control",
		fmt.Sprintf("public, max-age=%d, stale-while-revalidate=%d", maxAgeSeconds, swrSeconds))
}

func addNoStore(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
}

// ResolvePostal handles GET /{country}/{postal}. Every lookup outcome is
// a 200 with a Result body; only an unconfigured country is a 404.
func (h *Handler) ResolvePostal(w http.ResponseWriter, r *http.Request) {
	country := chi.URLParam(r, "country")
	postalCode := chi.URLParam(r, "postal")

	result, err := h.dispatcher.Resolve(r.Context(), country, postalCode)
	if err != nil {
		writeJSONStatus(w, http.StatusNotFound, map[string]string{"error": "unknown country"})
		return
	}

	if h.dispatcher.Live(country) {
		addNoStore(w)
	} else if result.Status != StatusUnresolved {
		// Table-backed answers only change with a new snapshot.
		addCacheHeaders(w, 86400, 3600)
	}

	writeJSON(w, result)
}

// ListCountries handles GET /countries.
func (h *Handler) ListCountries(w http.ResponseWriter, r *http.Request) {
	addCacheHeaders(w, 3600, 600)
	writeJSON(w, map[string][]string{"countries": h.dispatcher.Countries()})
}
