package valhalla

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/utechnav/internal/core/domain"
	"github.com/samirrijal/utechnav/internal/pkg/metrics"
	"github.com/samirrijal/utechnav/internal/pkg/telemetry"
)

const providerName = "valhalla"

// costing maps travel categories onto Valhalla costing models.
var costing = map[domain.TravelCategory]string{
	domain.CategoryDriving: "auto",
	domain.CategoryWalking: "pedestrian",
	domain.CategoryCycling: "bicycle",
	domain.CategoryTransit: "multimodal",
}

// Valhalla error codes that mean "no route" rather than a broken request.
var noRouteCodes = map[int]bool{
	171: true, // no suitable edges near location
	442: true, // no path could be found for input
	443: true, // exact route match algorithm failed
}

// Client implements ports.DirectionsProvider against a Valhalla /route endpoint.
type Client struct {
	baseURL    string
	alternates int
	http       *http.Client
}

// New creates a Valhalla client. alternates asks the server for that many
// extra candidates; zero requests only the best trip.
func New(baseURL string, alternates int, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		alternates: alternates,
		http:       &http.Client{Timeout: timeout},
	}
}

type location struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Type string  `json:"type"`
}

type routeRequest struct {
	Locations  []location `json:"locations"`
	Costing    string     `json:"costing"`
	Units      string     `json:"units"`
	Alternates int        `json:"alternates,omitempty"`
}

type trip struct {
	Legs []struct {
		Shape string `json:"shape"`
	} `json:"legs"`
	Summary struct {
		Time   float64 `json:"time"`
		Length float64 `json:"length"`
	} `json:"summary"`
}

type routeResponse struct {
	Trip       *trip `json:"trip"`
	Alternates []struct {
		Trip *trip `json:"trip"`
	} `json:"alternates"`
}

type errorResponse struct {
	ErrorCode  int    `json:"error_code"`
	Error      string `json:"error"`
	StatusCode int    `json:"status_code"`
}

// Supports reports whether a costing model exists for the category.
func (c *Client) Supports(category domain.TravelCategory) bool {
	_, ok := costing[category]
	return ok
}

// Directions requests a route. The main trip comes first, followed by any
// alternates in the order Valhalla ranks them.
func (c *Client) Directions(ctx context.Context, dr domain.DirectionsRequest) (candidates []domain.RouteCandidate, err error) {
	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanDirections)
	span.SetAttributes(
		attribute.String(telemetry.AttrProvider, providerName),
		attribute.String(telemetry.AttrCategory, string(dr.Category)),
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

	model, ok := costing[dr.Category]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported travel category %q", domain.ErrInvalidInput, dr.Category)
	}

	payload, err := json.Marshal(routeRequest{
		Locations: []location{
			{Lat: dr.Origin.Lat, Lon: dr.Origin.Lon, Type: "break"},
			{Lat: dr.Destination.Lat, Lon: dr.Destination.Lon, Type: "break"},
		},
		Costing:    model,
		Units:      "kilometers",
		Alternates: c.alternates,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", domain.ErrInvalidInput, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/route", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", domain.ErrInvalidInput, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: valhalla: %w", domain.ErrNetworkFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read valhalla response: %w", domain.ErrNetworkFailure, err)
	}

	if resp.StatusCode != http.StatusOK {
		var e errorResponse
		if json.Unmarshal(body, &e) == nil && noRouteCodes[e.ErrorCode] {
			return nil, fmt.Errorf("%w: valhalla %d: %s", domain.ErrNoResultFound, e.ErrorCode, e.Error)
		}
		return nil, fmt.Errorf("%w: valhalla returned status %d: %s",
			domain.ErrNetworkFailure, resp.StatusCode, truncate(string(body), 256))
	}

	var r routeResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("%w: valhalla response: %v", domain.ErrDecodeFailure, err)
	}
	if r.Trip == nil {
		return nil, fmt.Errorf("%w: valhalla response has no trip", domain.ErrNoResultFound)
	}

	trips := []*trip{r.Trip}
	for _, alt := range r.Alternates {
		if alt.Trip != nil {
			trips = append(trips, alt.Trip)
		}
	}

	candidates = make([]domain.RouteCandidate, 0, len(trips))
	for i, t := range trips {
		cand, err := toCandidate(t)
		if err != nil {
			return nil, fmt.Errorf("%w: trip %d: %v", domain.ErrDecodeFailure, i, err)
		}
		candidates = append(candidates, cand)
	}
	return candidates, nil
}

func toCandidate(t *trip) (domain.RouteCandidate, error) {
	var path []domain.Coordinate
	for _, leg := range t.Legs {
		pts, err := decodeShape(leg.Shape, shapePrecision)
		if err != nil {
			return domain.RouteCandidate{}, err
		}
		// Consecutive legs share their joining point.
		if len(path) > 0 && len(pts) > 0 && path[len(path)-1] == pts[0] {
			pts = pts[1:]
		}
		path = append(path, pts...)
	}
	return domain.RouteCandidate{
		DistanceMeters: t.Summary.Length * 1000,
		TravelSeconds:  t.Summary.Time,
		Path:           path,
	}, nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
