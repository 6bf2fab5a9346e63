package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/samirrijal/utechnav/internal/core/domain"
	"github.com/samirrijal/utechnav/internal/core/usecases"
)

func TestAirQualityService_Lookup(t *testing.T) {
	at := domain.Coordinate{Lat: 42.4358, Lon: -76.4866}
	provider := &mockAirQualityProvider{
		conditionsFn: func(ctx context.Context, c domain.Coordinate) ([]domain.AQIIndex, error) {
			if c != at {
				t.Errorf("expected %v, got %v", at, c)
			}
			return []domain.AQIIndex{
				{Code: "uaqi", AQI: 42, Category: "Good"},
				{Code: "usa_epa", AQI: 90, Category: "Moderate"},
			}, nil
		},
	}
	svc := usecases.NewAirQualityService(provider)

	sample, err := svc.Lookup(context.Background(), at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sample.Index != 42 || sample.Category != "Good" || sample.Code != "uaqi" {
		t.Errorf("expected first index, got %+v", sample)
	}
	if sample.DominantPollutant != "" {
		t.Errorf("expected empty pollutant, got %q", sample.DominantPollutant)
	}
	if sample.Band != domain.BandUnhealthy {
		t.Errorf("expected band %s, got %s", domain.BandUnhealthy, sample.Band)
	}
	if got := domain.FormatAirQuality(*sample); got != "Good (42)" {
		t.Errorf("expected \"Good (42)\", got %q", got)
	}
}

func TestAirQualityService_EmptyIndexes(t *testing.T) {
	provider := &mockAirQualityProvider{
		conditionsFn: func(ctx context.Context, c domain.Coordinate) ([]domain.AQIIndex, error) {
			return []domain.AQIIndex{}, nil
		},
	}
	svc := usecases.NewAirQualityService(provider)

	_, err := svc.Lookup(context.Background(), domain.Coordinate{Lat: 1, Lon: 1})
	if !errors.Is(err, domain.ErrNoResultFound) {
		t.Errorf("expected no result, got %v", err)
	}
}

func TestAirQualityService_ProviderError(t *testing.T) {
	provider := &mockAirQualityProvider{
		conditionsFn: func(ctx context.Context, c domain.Coordinate) ([]domain.AQIIndex, error) {
			return nil, domain.ErrDecodeFailure
		},
	}
	svc := usecases.NewAirQualityService(provider)

	_, err := svc.Lookup(context.Background(), domain.Coordinate{Lat: 1, Lon: 1})
	if !errors.Is(err, domain.ErrDecodeFailure) {
		t.Errorf("expected decode failure, got %v", err)
	}
}

func TestAirQualityService_InvalidCoordinate(t *testing.T) {
	called := false
	provider := &mockAirQualityProvider{
		conditionsFn: func(ctx context.Context, c domain.Coordinate) ([]domain.AQIIndex, error) {
			called = true
			return nil, nil
		},
	}
	svc := usecases.NewAirQualityService(provider)

	_, err := svc.Lookup(context.Background(), domain.Coordinate{Lat: 91, Lon: 0})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected invalid input, got %v", err)
	}
	if called {
		t.Error("provider should not be called")
	}
}
