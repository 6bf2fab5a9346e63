package nominatim_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/samirrijal/utechnav/internal/adapters/nominatim"
	"github.com/samirrijal/utechnav/internal/core/domain"
)

const ithacaResponse = `[
  {
    "name": "Cornell University",
    "display_name": "Cornell University, Ithaca, Tompkins County, New York, United States",
    "lat": "42.4534",
    "lon": "-76.4735",
    "address": {"city": "Ithaca", "county": "Tompkins County", "state": "New York"}
  },
  {
    "name": "",
    "display_name": "120, Valentine Place, Ithaca, New York, United States",
    "lat": "42.4416",
    "lon": "-76.4847",
    "address": {"house_number": "120", "road": "Valentine Place", "town": "Ithaca", "state": "New York"}
  }
]`

func TestSearchPlaces_Success(t *testing.T) {
	var gotQuery, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("expected /search, got %s", r.URL.Path)
		}
		gotQuery = r.URL.Query().Get("q")
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(ithacaResponse))
	}))
	defer srv.Close()

	c := nominatim.New(srv.URL, "utechnav-test", 5*time.Second)
	results, err := c.SearchPlaces(context.Background(), "cornell", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuery != "cornell" {
		t.Errorf("expected q=cornell, got %q", gotQuery)
	}
	if gotUA != "utechnav-test" {
		t.Errorf("expected user agent, got %q", gotUA)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].DisplayName != "Cornell University" || results[0].City != "Ithaca" || results[0].State != "New York" {
		t.Errorf("unexpected first result: %+v", results[0])
	}
	if results[1].DisplayName != "120 Valentine Place" {
		t.Errorf("expected street address as name, got %q", results[1].DisplayName)
	}
	if results[1].City != "Ithaca" {
		t.Errorf("expected town fallback Ithaca, got %q", results[1].City)
	}
	if results[1].Location.Lat != 42.4416 {
		t.Errorf("expected lat 42.4416, got %f", results[1].Location.Lat)
	}
}

func TestSearchPlaces_NoMatches(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := nominatim.New(srv.URL, "ua", 5*time.Second)
	results, err := c.SearchPlaces(context.Background(), "zzzz", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestSearchPlaces_UnknownName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"lat":"1.0","lon":"2.0","address":{}}]`))
	}))
	defer srv.Close()

	c := nominatim.New(srv.URL, "ua", 5*time.Second)
	results, err := c.SearchPlaces(context.Background(), "x", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results[0].DisplayName != domain.UnknownPlaceName {
		t.Errorf("expected %q, got %q", domain.UnknownPlaceName, results[0].DisplayName)
	}
}

func TestSearchPlaces_ErrorClassification(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"server error", http.StatusServiceUnavailable, ``, domain.ErrNetworkFailure},
		{"bad json", http.StatusOK, `{not json`, domain.ErrDecodeFailure},
		{"bad coordinates", http.StatusOK, `[{"lat":"abc","lon":"1"}]`, domain.ErrDecodeFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := nominatim.New(srv.URL, "ua", 5*time.Second)
			_, err := c.SearchPlaces(context.Background(), "q", 5)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSearchPlaces_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := nominatim.New(url, "ua", time.Second)
	_, err := c.SearchPlaces(context.Background(), "q", 5)
	if !errors.Is(err, domain.ErrNetworkFailure) {
		t.Errorf("expected network failure, got %v", err)
	}
}
