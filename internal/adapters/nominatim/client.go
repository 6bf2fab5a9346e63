package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/utechnav/internal/core/domain"
	"github.com/samirrijal/utechnav/internal/pkg/metrics"
	"github.com/samirrijal/utechnav/internal/pkg/telemetry"
)

const providerName = "nominatim"

// Client implements ports.PlaceSearchProvider against a Nominatim /search endpoint.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
}

// New creates a Nominatim client. Nominatim's usage policy requires an
// identifying User-Agent.
func New(baseURL, userAgent string, timeout time.Duration) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		http:      &http.Client{Timeout: timeout},
	}
}

type address struct {
	HouseNumber string `json:"house_number"`
	Road        string `json:"road"`
	Suburb      string `json:"suburb"`
	City        string `json:"city"`
	Town        string `json:"town"`
	Village     string `json:"village"`
	County      string `json:"county"`
	State       string `json:"state"`
	Postcode    string `json:"postcode"`
}

type place struct {
	Name        string  `json:"name"`
	DisplayName string  `json:"display_name"`
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	Address     address `json:"address"`
}

// SearchPlaces geocodes a natural-language query. Results keep the provider's
// relevance order. No match is an empty slice, not an error.
func (c *Client) SearchPlaces(ctx context.Context, query string, limit int) (results []domain.PlaceResult, err error) {
	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanPlaceSearch)
	span.SetAttributes(
		attribute.String(telemetry.AttrProvider, providerName),
		attribute.Int(telemetry.AttrQueryLen, len(query)),
	)
	start := time.Now()
	defer func() {
		metrics.ObserveProvider(providerName, start, err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	params := url.Values{
		"q":              {query},
		"format":         {"jsonv2"},
		"addressdetails": {"1"},
		"limit":          {strconv.Itoa(limit)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", domain.ErrInvalidInput, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: nominatim: %w", domain.ErrNetworkFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: nominatim returned status %d", domain.ErrNetworkFailure, resp.StatusCode)
	}

	var places []place
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, fmt.Errorf("%w: nominatim response: %v", domain.ErrDecodeFailure, err)
	}

	results = make([]domain.PlaceResult, 0, len(places))
	for _, p := range places {
		r, err := toPlaceResult(p)
		if err != nil {
			slog.DebugContext(ctx, "nominatim: skipping result", "display_name", p.DisplayName, "error", err)
			continue
		}
		results = append(results, r)
	}
	if len(results) == 0 && len(places) > 0 {
		return nil, fmt.Errorf("%w: nominatim results had no usable coordinates", domain.ErrDecodeFailure)
	}
	return results, nil
}

func toPlaceResult(p place) (domain.PlaceResult, error) {
	lat, err := strconv.ParseFloat(p.Lat, 64)
	if err != nil {
		return domain.PlaceResult{}, fmt.Errorf("parse lat: %w", err)
	}
	lon, err := strconv.ParseFloat(p.Lon, 64)
	if err != nil {
		return domain.PlaceResult{}, fmt.Errorf("parse lon: %w", err)
	}
	loc := domain.Coordinate{Lat: lat, Lon: lon}
	if err := loc.Validate(); err != nil {
		return domain.PlaceResult{}, err
	}

	return domain.PlaceResult{
		Location:    loc,
		DisplayName: placeName(p),
		City:        locality(p.Address),
		State:       p.Address.State,
		Address:     p.DisplayName,
	}, nil
}

// placeName prefers the feature name, then the street address, then the
// first component of display_name.
func placeName(p place) string {
	if p.Name != "" {
		return p.Name
	}
	street := strings.TrimSpace(strings.Join([]string{p.Address.HouseNumber, p.Address.Road}, " "))
	if street != "" {
		return street
	}
	if first, _, _ := strings.Cut(p.DisplayName, ","); strings.TrimSpace(first) != "" {
		return strings.TrimSpace(first)
	}
	return domain.UnknownPlaceName
}

func locality(a address) string {
	for _, s := range []string{a.City, a.Town, a.Village, a.Suburb, a.County} {
		if s != "" {
			return s
		}
	}
	return ""
}
