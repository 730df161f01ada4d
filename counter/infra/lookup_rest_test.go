package infra

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"counter-service/counter/domain"
)

func TestRESTCountriesLookup_ByCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/alpha/us" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("fields"); got != "cca2,name" {
			t.Errorf("expected fields filter, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"cca2":"US","name":{"common":"United States"}}]`))
	}))
	defer srv.Close()

	l := NewRESTCountriesLookup(WithBaseURL(srv.URL))

	c, found, err := l.ByCode(context.Background(), "us")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found || c.Code != "US" || c.Name != "United States" {
		t.Fatalf("unexpected country: %+v found=%v", c, found)
	}
}

func TestRESTCountriesLookup_ByCode_SingleObjectBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"cca2":"BR","name":{"common":"Brazil"}}`))
	}))
	defer srv.Close()

	l := NewRESTCountriesLookup(WithBaseURL(srv.URL))

	c, found, err := l.ByCode(context.Background(), "br")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found || c.Name != "Brazil" {
		t.Fatalf("unexpected country: %+v found=%v", c, found)
	}
}

func TestRESTCountriesLookup_ByCode_NotFoundIsDefinitive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.NotFound(w, nil)
	}))
	defer srv.Close()

	l := NewRESTCountriesLookup(WithBaseURL(srv.URL))

	_, found, err := l.ByCode(context.Background(), "zz")
	if err != nil {
		t.Fatalf("404 must not be an error, got %v", err)
	}
	if found {
		t.Fatalf("expected found=false for 404")
	}
}

func TestRESTCountriesLookup_ByCode_ServerErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	l := NewRESTCountriesLookup(WithBaseURL(srv.URL))

	_, _, err := l.ByCode(context.Background(), "us")
	if !errors.Is(err, domain.ErrLookupUnavailable) {
		t.Fatalf("expected ErrLookupUnavailable, got %v", err)
	}
}

func TestRESTCountriesLookup_ByCode_TimeoutSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	l := NewRESTCountriesLookup(
		WithBaseURL(srv.URL),
		WithHTTPClient(&http.Client{Timeout: 20 * time.Millisecond}),
	)

	_, _, err := l.ByCode(context.Background(), "us")
	if !errors.Is(err, domain.ErrLookupUnavailable) {
		t.Fatalf("expected ErrLookupUnavailable on timeout, got %v", err)
	}
}

func TestRESTCountriesLookup_All(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/all" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`[
			{"cca2":"FR","name":{"common":"France"}},
			{"cca2":"US","name":{"common":"United States"}},
			{"cca2":"","name":{"common":"bogus"}}
		]`))
	}))
	defer srv.Close()

	l := NewRESTCountriesLookup(WithBaseURL(srv.URL))

	all, err := l.All(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected entries without cca2 skipped, got %v", all)
	}
}
