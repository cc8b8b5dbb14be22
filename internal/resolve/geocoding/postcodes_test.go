package geocoding

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestConstituency(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/postcodes/SW1A1AA" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":200,"result":{"postcode":"SW1A 1AA","parliamentary_constituency":"Cities of London and Westminster"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nil)
	name, err := c.Constituency(context.Background(), "SW1A1AA")
	if err != nil {
		t.Fatalf("Constituency: %v", err)
	}
	if name != "Cities of London and Westminster" {
		t.Errorf("name = %q", name)
	}
}

func TestConstituencyNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status":404,"error":"Postcode not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nil)
	if _, err := c.Constituency(context.Background(), "ZZ11ZZ"); err == nil {
		t.Fatal("expected error for 404 response")
	}
}

func TestConstituencyMissingName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":200,"result":{"postcode":"SW1A 1AA","parliamentary_constituency":""}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nil)
	if _, err := c.Constituency(context.Background(), "SW1A1AA"); err == nil {
		t.Fatal("expected error when response carries no constituency")
	}
}

func TestConstituencyTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 20*time.Millisecond, nil)
	if _, err := c.Constituency(context.Background(), "SW1A1AA"); err == nil {
		t.Fatal("expected timeout error")
	}
}
