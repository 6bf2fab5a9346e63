package domain

import "time"

// SelectionPhase is where a session is in the destination flow.
type SelectionPhase string

const (
	PhaseIdle                SelectionPhase = "idle"
	PhaseSelected            SelectionPhase = "selected"
	PhaseDirectionsRequested SelectionPhase = "directions_requested"
)

// RequestPhase tracks one async lookup (air quality or route).
type RequestPhase string

const (
	RequestIdle    RequestPhase = "idle"
	RequestPending RequestPhase = "pending"
	RequestReady   RequestPhase = "ready"
	RequestFailed  RequestPhase = "failed"
)

// SearchState is the latest applied search.
type SearchState struct {
	Query   string        `json:"query"`
	Pending bool          `json:"pending"`
	Results []PlaceResult `json:"results"`
	Message string        `json:"message,omitempty"`
}

// AirQualityState is the overlay for the selected destination. Display is
// empty while idle, "loading" while pending and "unavailable" on failure.
type AirQualityState struct {
	Phase   RequestPhase      `json:"phase"`
	Sample  *AirQualitySample `json:"sample,omitempty"`
	Display string            `json:"display"`
}

// RouteState is the route for the selected destination and current mode.
// Estimate is nil unless Phase is ready.
type RouteState struct {
	Phase    RequestPhase   `json:"phase"`
	Estimate *RouteEstimate `json:"estimate,omitempty"`
	Message  string         `json:"message,omitempty"`
}

// SessionState is an immutable snapshot of one navigation session.
type SessionState struct {
	SessionID      string              `json:"session_id"`
	Version        uint64              `json:"version"`
	Phase          SelectionPhase      `json:"phase"`
	Style          MapStyle            `json:"style"`
	Mode           TransportMode       `json:"mode"`
	Camera         *CameraPosition     `json:"camera,omitempty"`
	UserLocation   *Coordinate         `json:"user_location,omitempty"`
	Authorization  AuthorizationStatus `json:"authorization"`
	LocationReady  bool                `json:"location_ready"`
	Selection      *PlaceResult        `json:"selection,omitempty"`
	SelectionToken uint64              `json:"selection_token"`
	Search         SearchState         `json:"search"`
	AirQuality     AirQualityState     `json:"air_quality"`
	Route          RouteState          `json:"route"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}
