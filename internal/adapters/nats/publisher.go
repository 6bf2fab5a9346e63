package natsadapter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	sessionStream   = "NAV_SESSIONS"
	sessionSubjects = "nav.session.*.state"
)

func stateSubject(sessionID string) string  { return "nav.session." + sessionID + ".state" }
func closedSubject(sessionID string) string { return "nav.session." + sessionID + ".closed" }

// Connect opens a NATS connection that keeps retrying in the background.
func Connect(url string) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name("utechnav"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return conn, nil
}

// Publisher implements ports.StatePublisher using NATS JetStream.
// Each session subject keeps only its latest snapshot, so a late subscriber
// starts from the current state.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher enables JetStream on conn and ensures the session stream exists.
func NewPublisher(conn *nats.Conn) (*Publisher, error) {
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := &nats.StreamConfig{
		Name:              sessionStream,
		Subjects:          []string{sessionSubjects},
		Retention:         nats.LimitsPolicy,
		MaxMsgsPerSubject: 1,
		MaxAge:            1 * time.Hour,
		Storage:           nats.MemoryStorage,
	}
	if _, err := js.AddStream(cfg); err != nil {
		// Stream may already exist, try update
		if _, err := js.UpdateStream(cfg); err != nil {
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishSessionState stores data as the session's latest snapshot.
func (p *Publisher) PublishSessionState(ctx context.Context, sessionID string, data []byte) error {
	if _, err := p.js.Publish(stateSubject(sessionID), data, nats.Context(ctx)); err != nil {
		return fmt.Errorf("publish state %s: %w", sessionID, err)
	}
	return nil
}

// PublishSessionClosed notifies subscribers and drops the retained snapshot.
func (p *Publisher) PublishSessionClosed(ctx context.Context, sessionID string) error {
	var errs []error
	if err := p.conn.Publish(closedSubject(sessionID), nil); err != nil {
		errs = append(errs, fmt.Errorf("publish closed %s: %w", sessionID, err))
	}
	if err := p.js.PurgeStream(sessionStream, &nats.StreamPurgeRequest{Subject: stateSubject(sessionID)}, nats.Context(ctx)); err != nil {
		errs = append(errs, fmt.Errorf("purge state %s: %w", sessionID, err))
	}
	return errors.Join(errs...)
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}
