package usecases_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/samirrijal/utechnav/internal/core/domain"
	"github.com/samirrijal/utechnav/internal/core/usecases"
)

func TestPlaceSearchService_EmptyQuery(t *testing.T) {
	provider := &mockPlaceProvider{}
	svc := usecases.NewPlaceSearchService(provider, nil, 0, 10)

	for _, q := range []string{"", "   ", "\t\n"} {
		results, err := svc.Search(context.Background(), q, 5)
		if err != nil {
			t.Fatalf("query %q: unexpected error: %v", q, err)
		}
		if len(results) != 0 {
			t.Errorf("query %q: expected no results, got %d", q, len(results))
		}
	}
	if provider.Calls() != 0 {
		t.Errorf("expected no provider calls, got %d", provider.Calls())
	}
}

func TestPlaceSearchService_Success(t *testing.T) {
	provider := &mockPlaceProvider{
		searchFn: func(ctx context.Context, query string, limit int) ([]domain.PlaceResult, error) {
			if query != "Ithaca Commons" {
				t.Errorf("expected trimmed query, got %q", query)
			}
			return []domain.PlaceResult{
				{DisplayName: "Ithaca Commons", City: "Ithaca", State: "New York"},
			}, nil
		},
	}
	svc := usecases.NewPlaceSearchService(provider, nil, 0, 10)

	results, err := svc.Search(context.Background(), "  Ithaca Commons ", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].City != "Ithaca" {
		t.Errorf("unexpected results %+v", results)
	}
}

func TestPlaceSearchService_ClampLimit(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 7},
		{-1, 7},
		{5, 5},
		{99, 20},
	}
	for _, tt := range tests {
		var got int
		provider := &mockPlaceProvider{
			searchFn: func(ctx context.Context, query string, limit int) ([]domain.PlaceResult, error) {
				got = limit
				return nil, nil
			},
		}
		svc := usecases.NewPlaceSearchService(provider, nil, 0, 7)
		_, _ = svc.Search(context.Background(), "x", tt.in)
		if got != tt.want {
			t.Errorf("limit %d: expected %d, got %d", tt.in, tt.want, got)
		}
	}
}

func TestPlaceSearchService_QueryTooLong(t *testing.T) {
	provider := &mockPlaceProvider{}
	svc := usecases.NewPlaceSearchService(provider, nil, 0, 10)

	_, err := svc.Search(context.Background(), strings.Repeat("a", 201), 5)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected invalid input, got %v", err)
	}
	if provider.Calls() != 0 {
		t.Error("provider should not be called")
	}
}

func TestPlaceSearchService_ProviderError(t *testing.T) {
	provider := &mockPlaceProvider{
		searchFn: func(ctx context.Context, query string, limit int) ([]domain.PlaceResult, error) {
			return nil, domain.ErrNetworkFailure
		},
	}
	svc := usecases.NewPlaceSearchService(provider, nil, 0, 10)

	_, err := svc.Search(context.Background(), "x", 5)
	if !errors.Is(err, domain.ErrNetworkFailure) {
		t.Errorf("expected network failure, got %v", err)
	}
}

func TestPlaceSearchService_Cache(t *testing.T) {
	provider := &mockPlaceProvider{
		searchFn: func(ctx context.Context, query string, limit int) ([]domain.PlaceResult, error) {
			return []domain.PlaceResult{{DisplayName: "Cornell University"}}, nil
		},
	}
	cache := newMockCache()
	svc := usecases.NewPlaceSearchService(provider, cache, 300, 10)

	for i := 0; i < 3; i++ {
		results, err := svc.Search(context.Background(), "Cornell", 5)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results) != 1 || results[0].DisplayName != "Cornell University" {
			t.Fatalf("unexpected results %+v", results)
		}
	}
	if provider.Calls() != 1 {
		t.Errorf("expected one provider call, got %d", provider.Calls())
	}
	if ttl := cache.ttls["places:search:cornell:5"]; ttl != 300 {
		t.Errorf("expected ttl 300 on normalized key, got %d (keys %v)", ttl, cache.ttls)
	}

	// Case differences hit the same entry.
	_, _ = svc.Search(context.Background(), "CORNELL", 5)
	if provider.Calls() != 1 {
		t.Errorf("expected cache hit for different case, got %d calls", provider.Calls())
	}
}
