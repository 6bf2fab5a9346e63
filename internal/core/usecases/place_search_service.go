package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/samirrijal/utechnav/internal/core/domain"
	"github.com/samirrijal/utechnav/internal/core/ports"
	"github.com/samirrijal/utechnav/internal/pkg/metrics"
)

const (
	maxQueryRunes  = 200
	maxSearchLimit = 20
)

// PlaceSearchService geocodes free-text queries.
type PlaceSearchService struct {
	provider     ports.PlaceSearchProvider
	cache        ports.CacheService
	cacheTTL     int
	defaultLimit int
}

// NewPlaceSearchService creates a new PlaceSearchService. cache may be nil;
// cacheTTL is in seconds.
func NewPlaceSearchService(provider ports.PlaceSearchProvider, cache ports.CacheService, cacheTTL, defaultLimit int) *PlaceSearchService {
	if defaultLimit <= 0 || defaultLimit > maxSearchLimit {
		defaultLimit = 10
	}
	return &PlaceSearchService{provider: provider, cache: cache, cacheTTL: cacheTTL, defaultLimit: defaultLimit}
}

// NormalizeQuery trims query and rejects one that is too long. An empty
// result means there is nothing to search for.
func NormalizeQuery(query string) (string, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) > maxQueryRunes {
		return "", fmt.Errorf("%w: query longer than %d characters", domain.ErrInvalidInput, maxQueryRunes)
	}
	return query, nil
}

// Search returns candidates for query in provider relevance order.
// An empty or whitespace-only query returns no results and makes no call.
func (s *PlaceSearchService) Search(ctx context.Context, query string, limit int) ([]domain.PlaceResult, error) {
	query, err := NormalizeQuery(query)
	if err != nil || query == "" {
		return nil, err
	}
	if limit <= 0 {
		limit = s.defaultLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	// Try cache
	cacheKey := fmt.Sprintf("places:search:%s:%d", strings.ToLower(query), limit)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var results []domain.PlaceResult
			if err := json.Unmarshal(data, &results); err == nil {
				metrics.CacheHits.WithLabelValues("places").Inc()
				return results, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("places").Inc()
	}

	results, err := s.provider.SearchPlaces(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search places: %w", err)
	}

	if s.cache != nil && s.cacheTTL > 0 {
		if data, err := json.Marshal(results); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, s.cacheTTL)
		}
	}

	return results, nil
}
