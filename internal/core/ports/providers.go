package ports

import (
	"context"

	"github.com/samirrijal/utechnav/internal/core/domain"
)

// PlaceSearchProvider geocodes a free-text query into ranked candidates.
type PlaceSearchProvider interface {
	SearchPlaces(ctx context.Context, query string, limit int) ([]domain.PlaceResult, error)
}

// AirQualityProvider looks up current air-quality indexes at a coordinate.
type AirQualityProvider interface {
	CurrentConditions(ctx context.Context, at domain.Coordinate) ([]domain.AQIIndex, error)
}

// DirectionsProvider computes route candidates, best-ranked first.
type DirectionsProvider interface {
	Directions(ctx context.Context, req domain.DirectionsRequest) ([]domain.RouteCandidate, error)
	// Supports reports whether the provider can route the given category.
	Supports(category domain.TravelCategory) bool
}
