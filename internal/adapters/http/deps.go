package http

import (
	"context"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/utechnav/internal/core/ports"
	"github.com/samirrijal/utechnav/internal/core/usecases"
)

// Pinger is anything the readiness probe can check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies holds the services the HTTP layer needs.
type Dependencies struct {
	Sessions   *usecases.SessionService
	Places     *usecases.PlaceSearchService
	AirQuality *usecases.AirQualityService
	Routes     *usecases.RouteService

	// Subscriber relays published session state to WebSocket clients.
	// When nil, clients are fed straight from the in-process session.
	Subscriber ports.StateSubscriber

	NATS    *nats.Conn
	Cache   Pinger
	Version string
}
