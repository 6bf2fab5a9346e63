package airquality_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/samirrijal/utechnav/internal/adapters/airquality"
	"github.com/samirrijal/utechnav/internal/core/domain"
)

func TestCurrentConditions_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/v1/currentConditions:lookup" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "secret" {
			t.Errorf("expected key param, got %q", r.URL.Query().Get("key"))
		}

		var body struct {
			Location struct {
				Latitude  float64 `json:"latitude"`
				Longitude float64 `json:"longitude"`
			} `json:"location"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body.Location.Latitude != 42.4358 || body.Location.Longitude != -76.4866 {
			t.Errorf("unexpected location %+v", body.Location)
		}

		w.Write([]byte(`{
		  "dateTime": "2024-12-07T18:00:00Z",
		  "regionCode": "us",
		  "indexes": [
		    {"code": "uaqi", "displayName": "Universal AQI", "aqi": 42, "aqiDisplay": "42",
		     "color": {"red": 0.9, "green": 0.8, "blue": 0.1}, "category": "Good", "dominantPollutant": "o3"},
		    {"code": "usa_epa", "aqi": 30, "category": "Moderate"}
		  ]
		}`))
	}))
	defer srv.Close()

	c := airquality.New(srv.URL, "secret", 5*time.Second)
	indexes, err := c.CurrentConditions(context.Background(), domain.Coordinate{Lat: 42.4358, Lon: -76.4866})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(indexes) != 2 {
		t.Fatalf("expected 2 indexes, got %d", len(indexes))
	}
	if indexes[0].AQI != 42 || indexes[0].Category != "Good" || indexes[0].DominantPollutant != "o3" {
		t.Errorf("unexpected first index %+v", indexes[0])
	}
	if indexes[0].Color == nil || indexes[0].Color.Green != 0.8 {
		t.Errorf("expected color to be decoded, got %+v", indexes[0].Color)
	}
	if indexes[1].DominantPollutant != "" || indexes[1].Color != nil {
		t.Errorf("expected missing optional fields to stay empty, got %+v", indexes[1])
	}
}

func TestCurrentConditions_EmptyIndexes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"indexes": []}`))
	}))
	defer srv.Close()

	c := airquality.New(srv.URL, "k", 5*time.Second)
	indexes, err := c.CurrentConditions(context.Background(), domain.Coordinate{Lat: 1, Lon: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(indexes) != 0 {
		t.Errorf("expected no indexes, got %d", len(indexes))
	}
}

func TestCurrentConditions_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"forbidden", http.StatusForbidden, `{"error":{"message":"API key not valid"}}`, domain.ErrNetworkFailure},
		{"malformed", http.StatusOK, `<html>`, domain.ErrDecodeFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := airquality.New(srv.URL, "k", 5*time.Second)
			_, err := c.CurrentConditions(context.Background(), domain.Coordinate{})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCurrentConditions_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c := airquality.New(srv.URL, "topsecret", 50*time.Millisecond)
	_, err := c.CurrentConditions(context.Background(), domain.Coordinate{})
	if !errors.Is(err, domain.ErrNetworkFailure) {
		t.Fatalf("expected network failure, got %v", err)
	}
	if strings.Contains(err.Error(), "topsecret") {
		t.Errorf("api key leaked into error: %v", err)
	}
}
