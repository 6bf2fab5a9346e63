package domain

import "fmt"

// TransportMode is the travel method the user picks.
type TransportMode string

const (
	ModeCar     TransportMode = "car"
	ModeWalk    TransportMode = "walk"
	ModeBicycle TransportMode = "bicycle"
	ModeBus     TransportMode = "bus"
	ModeTram    TransportMode = "tram"
)

// DefaultMode is used when a session has not chosen one.
const DefaultMode = ModeCar

// TravelCategory is the routing capability a provider offers.
type TravelCategory string

const (
	CategoryDriving TravelCategory = "driving"
	CategoryWalking TravelCategory = "walking"
	CategoryCycling TravelCategory = "cycling"
	CategoryTransit TravelCategory = "transit"
)

// fallbacks lists, per mode, the categories to try in order.
var fallbacks = map[TransportMode][]TravelCategory{
	ModeCar:     {CategoryDriving},
	ModeWalk:    {CategoryWalking, CategoryDriving},
	ModeBicycle: {CategoryCycling, CategoryWalking, CategoryDriving},
	ModeBus:     {CategoryTransit, CategoryDriving},
	ModeTram:    {CategoryTransit, CategoryDriving},
}

// ParseTransportMode accepts the canonical names plus a few client aliases.
func ParseTransportMode(s string) (TransportMode, error) {
	switch s {
	case "car", "automobile", "driving":
		return ModeCar, nil
	case "walk", "walking", "figure.walk":
		return ModeWalk, nil
	case "bicycle", "bike", "cycling":
		return ModeBicycle, nil
	case "bus":
		return ModeBus, nil
	case "tram":
		return ModeTram, nil
	}
	return "", fmt.Errorf("%w: unknown transport mode %q", ErrInvalidInput, s)
}

// IsValid checks if the transport mode is valid.
func (m TransportMode) IsValid() bool {
	_, ok := fallbacks[m]
	return ok
}

// Category picks the first category in the mode's fallback chain that
// supported accepts. ok is false when none is supported.
func (m TransportMode) Category(supported func(TravelCategory) bool) (TravelCategory, bool) {
	for _, c := range fallbacks[m] {
		if supported(c) {
			return c, true
		}
	}
	return "", false
}

// MapStyle is the base layer shown under the annotations.
type MapStyle string

const (
	StyleStandard   MapStyle = "standard"
	StyleSatellite  MapStyle = "satellite"
	StyleAirQuality MapStyle = "air_quality"
)

// IsValid checks if the map style is valid.
func (s MapStyle) IsValid() bool {
	switch s {
	case StyleStandard, StyleSatellite, StyleAirQuality:
		return true
	}
	return false
}

// AuthorizationStatus mirrors the device's location permission.
type AuthorizationStatus string

const (
	AuthNotDetermined AuthorizationStatus = "not_determined"
	AuthWhenInUse     AuthorizationStatus = "when_in_use"
	AuthAlways        AuthorizationStatus = "always"
	AuthDenied        AuthorizationStatus = "denied"
	AuthRestricted    AuthorizationStatus = "restricted"
)

// IsValid checks if the authorization status is valid.
func (a AuthorizationStatus) IsValid() bool {
	switch a {
	case AuthNotDetermined, AuthWhenInUse, AuthAlways, AuthDenied, AuthRestricted:
		return true
	}
	return false
}

// Granted reports whether location updates may be used.
func (a AuthorizationStatus) Granted() bool {
	return a == AuthWhenInUse || a == AuthAlways
}
