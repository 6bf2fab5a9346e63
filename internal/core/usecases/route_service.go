package usecases

import (
	"context"
	"fmt"

	"github.com/samirrijal/utechnav/internal/core/domain"
	"github.com/samirrijal/utechnav/internal/core/ports"
)

// RouteService turns directions provider candidates into a presented estimate.
type RouteService struct {
	provider ports.DirectionsProvider
}

// NewRouteService creates a new RouteService.
func NewRouteService(provider ports.DirectionsProvider) *RouteService {
	return &RouteService{provider: provider}
}

// Route estimates travel from origin to destination. The mode is resolved to
// the first travel category in its fallback chain the provider supports, and
// only the provider's first-ranked candidate is used.
func (s *RouteService) Route(ctx context.Context, origin, destination domain.Coordinate, mode domain.TransportMode) (*domain.RouteEstimate, error) {
	if err := origin.Validate(); err != nil {
		return nil, fmt.Errorf("origin: %w", err)
	}
	if err := destination.Validate(); err != nil {
		return nil, fmt.Errorf("destination: %w", err)
	}
	if !mode.IsValid() {
		return nil, fmt.Errorf("%w: unknown transport mode %q", domain.ErrInvalidInput, mode)
	}

	category, ok := mode.Category(s.provider.Supports)
	if !ok {
		return nil, fmt.Errorf("no travel category for mode %s: %w", mode, domain.ErrNoResultFound)
	}

	candidates, err := s.provider.Directions(ctx, domain.DirectionsRequest{
		Origin:      origin,
		Destination: destination,
		Category:    category,
	})
	if err != nil {
		return nil, fmt.Errorf("directions (%s): %w", category, err)
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("directions (%s): %w", category, domain.ErrNoResultFound)
	}

	best := candidates[0]
	return &domain.RouteEstimate{
		DistanceText:   domain.FormatDistance(best.DistanceMeters),
		TravelTimeText: domain.FormatTravelTime(best.TravelSeconds),
		DistanceMeters: best.DistanceMeters,
		TravelSeconds:  best.TravelSeconds,
		Path:           best.Path,
		Mode:           mode,
		Category:       category,
	}, nil
}
