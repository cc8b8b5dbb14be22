package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/LetterLobby/LL-Backend/internal/middleware"
)

// callWithOrigin wraps a simple 200-OK inner handler in the CORS
// middleware, optionally setting an Origin header, and returns the
// recorded response.
func callWithOrigin(t *testing.T, method, origin string) *httptest.ResponseRecorder {
	t.Helper()

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := middleware.CORSMiddleware(inner)
	req := httptest.NewRequest(method, "/test", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestCORSAllowedOrigin(t *testing.T) {
	rec := callWithOrigin(t, http.MethodGet, "http://localhost:5173")

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Allow-Origin = %q", got)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestCORSUnknownOriginNotEchoed(t *testing.T) {
	rec := callWithOrigin(t, http.MethodGet, "https://evil.example")

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unexpected Allow-Origin %q for unknown origin", got)
	}
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	rec := callWithOrigin(t, http.MethodOptions, "http://localhost:5173")

	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", rec.Code)
	}
}
