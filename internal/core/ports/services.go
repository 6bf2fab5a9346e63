package ports

import (
	"context"
)

// StatePublisher fans out session state snapshots to a message broker.
type StatePublisher interface {
	PublishSessionState(ctx context.Context, sessionID string, data []byte) error
	PublishSessionClosed(ctx context.Context, sessionID string) error
}

// StateSubscriber delivers a session's state snapshots as they are published.
// onClosed runs once if the session is closed while subscribed.
type StateSubscriber interface {
	SubscribeSessionState(ctx context.Context, sessionID string, onState func(data []byte), onClosed func()) (unsubscribe func(), err error)
}

// CacheService provides read-through caching. Get returns an error on a miss.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
