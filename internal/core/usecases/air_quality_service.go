package usecases

import (
	"context"
	"fmt"

	"github.com/samirrijal/utechnav/internal/core/domain"
	"github.com/samirrijal/utechnav/internal/core/ports"
)

// AirQualityService looks up the air quality at a coordinate.
type AirQualityService struct {
	provider ports.AirQualityProvider
}

// NewAirQualityService creates a new AirQualityService.
func NewAirQualityService(provider ports.AirQualityProvider) *AirQualityService {
	return &AirQualityService{provider: provider}
}

// Lookup performs a single provider call. The first index in provider order
// becomes the sample; an empty index list is ErrNoResultFound.
func (s *AirQualityService) Lookup(ctx context.Context, at domain.Coordinate) (*domain.AirQualitySample, error) {
	if err := at.Validate(); err != nil {
		return nil, err
	}

	indexes, err := s.provider.CurrentConditions(ctx, at)
	if err != nil {
		return nil, fmt.Errorf("air quality lookup: %w", err)
	}
	if len(indexes) == 0 {
		return nil, fmt.Errorf("air quality at %s: %w", at, domain.ErrNoResultFound)
	}

	idx := indexes[0]
	return &domain.AirQualitySample{
		Index:             idx.AQI,
		Category:          idx.Category,
		DominantPollutant: idx.DominantPollutant,
		Code:              idx.Code,
		DisplayName:       idx.DisplayName,
		Color:             idx.Color,
		Band:              domain.BandFor(idx.AQI),
	}, nil
}
