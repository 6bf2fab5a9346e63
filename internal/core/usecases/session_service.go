package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/samirrijal/utechnav/internal/core/domain"
	"github.com/samirrijal/utechnav/internal/pkg/metrics"
)

// SessionService keeps one MapPresenter per client screen.
type SessionService struct {
	cfg     PresenterConfig
	idleTTL time.Duration

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

type sessionEntry struct {
	presenter *MapPresenter
	lastSeen  time.Time
}

// NewSessionService creates a new SessionService. Sessions untouched for
// idleTTL are closed by the janitor.
func NewSessionService(cfg PresenterConfig, idleTTL time.Duration) *SessionService {
	return &SessionService{
		cfg:      cfg,
		idleTTL:  idleTTL,
		sessions: make(map[string]*sessionEntry),
	}
}

// Create starts a new session.
func (s *SessionService) Create(ctx context.Context) (*MapPresenter, error) {
	id := uuid.NewString()
	p := NewMapPresenter(id, s.cfg)

	s.mu.Lock()
	s.sessions[id] = &sessionEntry{presenter: p, lastSeen: time.Now()}
	s.mu.Unlock()

	metrics.ActiveSessions.Inc()
	slog.InfoContext(ctx, "session created", "session_id", id)
	return p, nil
}

// Get returns the session and marks it as recently used.
func (s *SessionService) Get(id string) (*MapPresenter, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: session id %q", domain.ErrInvalidInput, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrNoResultFound)
	}
	e.lastSeen = time.Now()
	return e.presenter, nil
}

// List returns a snapshot of every open session, oldest first.
func (s *SessionService) List() []domain.SessionState {
	s.mu.Lock()
	presenters := make([]*MapPresenter, 0, len(s.sessions))
	for _, e := range s.sessions {
		presenters = append(presenters, e.presenter)
	}
	s.mu.Unlock()

	states := make([]domain.SessionState, 0, len(presenters))
	for _, p := range presenters {
		st, err := p.Snapshot()
		if err != nil {
			continue
		}
		states = append(states, st)
	}
	sort.Slice(states, func(i, j int) bool {
		if states[i].CreatedAt.Equal(states[j].CreatedAt) {
			return states[i].SessionID < states[j].SessionID
		}
		return states[i].CreatedAt.Before(states[j].CreatedAt)
	})
	return states
}

// Count returns the number of open sessions.
func (s *SessionService) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Close stops a session and forgets it.
func (s *SessionService) Close(ctx context.Context, id string) error {
	s.mu.Lock()
	e, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("session %s: %w", id, domain.ErrNoResultFound)
	}
	e.presenter.Close(ctx)
	metrics.ActiveSessions.Dec()
	return nil
}

// CloseAll stops every session. Used on shutdown.
func (s *SessionService) CloseAll(ctx context.Context) {
	s.mu.Lock()
	entries := s.sessions
	s.sessions = make(map[string]*sessionEntry)
	s.mu.Unlock()

	for _, e := range entries {
		e.presenter.Close(ctx)
		metrics.ActiveSessions.Dec()
	}
}

// ExpireIdle closes sessions idle for longer than the TTL and returns how many.
func (s *SessionService) ExpireIdle(ctx context.Context) int {
	cutoff := time.Now().Add(-s.idleTTL)

	s.mu.Lock()
	var expired []*sessionEntry
	for id, e := range s.sessions {
		if e.lastSeen.Before(cutoff) {
			expired = append(expired, e)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, e := range expired {
		e.presenter.Close(ctx)
		metrics.ActiveSessions.Dec()
		slog.InfoContext(ctx, "session expired", "session_id", e.presenter.ID())
	}
	return len(expired)
}

// RunJanitor expires idle sessions every interval until ctx is done.
func (s *SessionService) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.ExpireIdle(ctx); n > 0 {
				slog.Debug("janitor pass", "expired", n)
			}
		}
	}
}
