package airquality

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/utechnav/internal/core/domain"
	"github.com/samirrijal/utechnav/internal/pkg/metrics"
	"github.com/samirrijal/utechnav/internal/pkg/telemetry"
)

const (
	providerName   = "google_air_quality"
	lookupEndpoint = "/v1/currentConditions:lookup"
)

// Client implements ports.AirQualityProvider using the Google Air Quality API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New creates an air-quality client. The API key is sent as the "key" URL parameter.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

type lookupRequest struct {
	Location struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"location"`
}

type lookupResponse struct {
	DateTime   string `json:"dateTime"`
	RegionCode string `json:"regionCode"`
	Indexes    []struct {
		Code              string      `json:"code"`
		DisplayName       string      `json:"displayName"`
		AQI               *int        `json:"aqi"`
		AQIDisplay        string      `json:"aqiDisplay"`
		Color             *domain.RGB `json:"color"`
		Category          string      `json:"category"`
		DominantPollutant string      `json:"dominantPollutant"`
	} `json:"indexes"`
}

// CurrentConditions performs one lookup. Indexes come back in provider order;
// an index missing its numeric aqi is skipped rather than failing the call.
func (c *Client) CurrentConditions(ctx context.Context, at domain.Coordinate) (indexes []domain.AQIIndex, err error) {
	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanAirQuality)
	span.SetAttributes(attribute.String(telemetry.AttrProvider, providerName))
	start := time.Now()
	defer func() {
		metrics.ObserveProvider(providerName, start, err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	var body lookupRequest
	body.Location.Latitude = at.Lat
	body.Location.Longitude = at.Lon
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", domain.ErrInvalidInput, err)
	}

	u := c.baseURL + lookupEndpoint + "?" + url.Values{"key": {c.apiKey}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", domain.ErrInvalidInput, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// url.Error carries the request URL, which includes the key.
		return nil, fmt.Errorf("%w: air quality lookup: %s", domain.ErrNetworkFailure, redact(err.Error(), c.apiKey))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("%w: air quality api returned status %d: %s",
			domain.ErrNetworkFailure, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var r lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("%w: air quality response: %v", domain.ErrDecodeFailure, err)
	}

	indexes = make([]domain.AQIIndex, 0, len(r.Indexes))
	for _, idx := range r.Indexes {
		if idx.AQI == nil {
			continue
		}
		indexes = append(indexes, domain.AQIIndex{
			Code:              idx.Code,
			DisplayName:       idx.DisplayName,
			AQI:               *idx.AQI,
			Category:          idx.Category,
			DominantPollutant: idx.DominantPollutant,
			Color:             idx.Color,
		})
	}
	return indexes, nil
}

func redact(s, secret string) string {
	if secret == "" {
		return s
	}
	return strings.ReplaceAll(s, url.QueryEscape(secret), "REDACTED")
}
