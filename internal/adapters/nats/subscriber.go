package natsadapter

import (
	"context"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"
)

// Subscriber implements ports.StateSubscriber using NATS JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewSubscriber creates a subscriber on a shared connection.
func NewSubscriber(conn *nats.Conn) (*Subscriber, error) {
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeSessionState delivers the session's latest snapshot followed by
// every new one. Subscriptions end on unsubscribe or when ctx is done.
func (s *Subscriber) SubscribeSessionState(ctx context.Context, sessionID string, onState func(data []byte), onClosed func()) (func(), error) {
	stateSub, err := s.js.Subscribe(stateSubject(sessionID), func(msg *nats.Msg) {
		onState(msg.Data)
	},
		nats.OrderedConsumer(),
		nats.DeliverLast(),
	)
	if err != nil {
		return nil, fmt.Errorf("subscribe state %s: %w", sessionID, err)
	}

	var closeOnce sync.Once
	closedSub, err := s.conn.Subscribe(closedSubject(sessionID), func(*nats.Msg) {
		closeOnce.Do(onClosed)
	})
	if err != nil {
		_ = stateSub.Unsubscribe()
		return nil, fmt.Errorf("subscribe closed %s: %w", sessionID, err)
	}

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			_ = stateSub.Unsubscribe()
			_ = closedSub.Unsubscribe()
		})
	}
	go func() {
		<-ctx.Done()
		unsubscribe()
	}()
	return unsubscribe, nil
}
