package usecases

import (
	"fmt"
	"sync"

	"github.com/samirrijal/utechnav/internal/core/domain"
)

// LocationState is what a LocationTracker subscriber receives.
type LocationState struct {
	Current       *domain.Coordinate
	Authorization domain.AuthorizationStatus
	// Ready becomes true on the first fix after authorization and resets
	// when authorization is revoked.
	Ready bool
}

// LocationTracker holds the device position for one session and pushes
// every change to its subscribers.
type LocationTracker struct {
	mu      sync.Mutex
	state   LocationState
	subs    map[int]func(LocationState)
	nextSub int
}

// NewLocationTracker creates a tracker with authorization not yet determined.
func NewLocationTracker() *LocationTracker {
	return &LocationTracker{
		state: LocationState{Authorization: domain.AuthNotDetermined},
		subs:  make(map[int]func(LocationState)),
	}
}

// Subscribe registers fn and immediately delivers the current state to it.
// Callbacks run on the updating goroutine, in update order, with the
// tracker locked; they must not call back into the tracker.
func (t *LocationTracker) Subscribe(fn func(LocationState)) (unsubscribe func()) {
	t.mu.Lock()
	id := t.nextSub
	t.nextSub++
	t.subs[id] = fn
	fn(t.state)
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		delete(t.subs, id)
		t.mu.Unlock()
	}
}

// State returns the current location state.
func (t *LocationTracker) State() LocationState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Update records a new fix. A fix arriving while authorization is still
// undetermined implies the device granted in-use access.
func (t *LocationTracker) Update(c domain.Coordinate) error {
	if err := c.Validate(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	switch t.state.Authorization {
	case domain.AuthDenied, domain.AuthRestricted:
		return fmt.Errorf("location update: %w", domain.ErrPermissionDenied)
	case domain.AuthNotDetermined:
		t.state.Authorization = domain.AuthWhenInUse
	}
	t.state.Current = &c
	t.state.Ready = true
	t.notifyLocked()
	return nil
}

// SetAuthorization applies a permission transition. Revoking access drops
// the last fix so nothing keeps centering on a stale position.
func (t *LocationTracker) SetAuthorization(status domain.AuthorizationStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: unknown authorization status %q", domain.ErrInvalidInput, status)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state.Authorization == status {
		return nil
	}
	t.state.Authorization = status
	if !status.Granted() {
		t.state.Current = nil
		t.state.Ready = false
	}
	t.notifyLocked()
	return nil
}

func (t *LocationTracker) notifyLocked() {
	for _, fn := range t.subs {
		fn(t.state)
	}
}
