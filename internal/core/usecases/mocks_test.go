package usecases_test

import (
	"context"
	"errors"
	"sync"

	"github.com/samirrijal/utechnav/internal/core/domain"
)

// --- Mock PlaceSearchProvider ---

type mockPlaceProvider struct {
	mu       sync.Mutex
	calls    int
	searchFn func(ctx context.Context, query string, limit int) ([]domain.PlaceResult, error)
}

func (m *mockPlaceProvider) SearchPlaces(ctx context.Context, query string, limit int) ([]domain.PlaceResult, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.searchFn != nil {
		return m.searchFn(ctx, query, limit)
	}
	return nil, nil
}

func (m *mockPlaceProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// --- Mock AirQualityProvider ---

type mockAirQualityProvider struct {
	conditionsFn func(ctx context.Context, at domain.Coordinate) ([]domain.AQIIndex, error)
}

func (m *mockAirQualityProvider) CurrentConditions(ctx context.Context, at domain.Coordinate) ([]domain.AQIIndex, error) {
	if m.conditionsFn != nil {
		return m.conditionsFn(ctx, at)
	}
	return nil, nil
}

// --- Mock DirectionsProvider ---

type mockDirectionsProvider struct {
	mu           sync.Mutex
	requests     []domain.DirectionsRequest
	supported    map[domain.TravelCategory]bool
	directionsFn func(ctx context.Context, req domain.DirectionsRequest) ([]domain.RouteCandidate, error)
}

func (m *mockDirectionsProvider) Directions(ctx context.Context, req domain.DirectionsRequest) ([]domain.RouteCandidate, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	if m.directionsFn != nil {
		return m.directionsFn(ctx, req)
	}
	return nil, nil
}

func (m *mockDirectionsProvider) Supports(c domain.TravelCategory) bool {
	if m.supported == nil {
		return true
	}
	return m.supported[c]
}

func (m *mockDirectionsProvider) Requests() []domain.DirectionsRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.DirectionsRequest(nil), m.requests...)
}

// --- Mock CacheService ---

type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]int
}

func newMockCache() *mockCache {
	return &mockCache{data: map[string][]byte{}, ttls: map[string]int{}}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, errors.New("cache miss")
	}
	return v, nil
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.ttls[key] = ttlSeconds
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// --- Mock StatePublisher ---

type mockPublisher struct {
	mu        sync.Mutex
	states    map[string]int
	closed    []string
	publishFn func(ctx context.Context, sessionID string, data []byte) error
}

func (m *mockPublisher) PublishSessionState(ctx context.Context, sessionID string, data []byte) error {
	if m.publishFn != nil {
		if err := m.publishFn(ctx, sessionID, data); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.states == nil {
		m.states = map[string]int{}
	}
	m.states[sessionID]++
	return nil
}

func (m *mockPublisher) PublishSessionClosed(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = append(m.closed, sessionID)
	return nil
}

func (m *mockPublisher) Published(sessionID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.states[sessionID]
}

func (m *mockPublisher) Closed() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.closed...)
}
