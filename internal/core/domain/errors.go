package domain

import (
	"context"
	"errors"
)

// Error taxonomy shared by providers, services and the presenter.
// Adapters wrap these with fmt.Errorf("%w: ...").
var (
	ErrNetworkFailure   = errors.New("network failure")
	ErrDecodeFailure    = errors.New("decode failure")
	ErrNoResultFound    = errors.New("no result found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidInput     = errors.New("invalid input")
)

// User-visible state strings.
const (
	MessageAirQualityUnavailable = "unavailable"
	MessageAirQualityNoData      = "No AQI data available"
	MessageLoading               = "loading"
	MessageNoRoute               = "No route found"
	MessageNoResults             = "No results found"
	MessageNetwork               = "Network unavailable, try again"
	MessageDecode                = "Unexpected response from provider"
	MessageLocationDenied        = "Location access denied"
	MessageLocationUnavailable   = "Current location unavailable"
	MessageInvalidInput          = "Invalid request"
)

// UserMessage maps an error onto the string shown to the user.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoResultFound):
		return MessageNoResults
	case errors.Is(err, ErrPermissionDenied):
		return MessageLocationDenied
	case errors.Is(err, ErrInvalidInput):
		return MessageInvalidInput
	case errors.Is(err, ErrDecodeFailure):
		return MessageDecode
	default:
		return MessageNetwork
	}
}

// RouteMessage is UserMessage for a failed directions request.
func RouteMessage(err error) string {
	if errors.Is(err, ErrNoResultFound) {
		return MessageNoRoute
	}
	return UserMessage(err)
}

// IsNetwork reports whether err should be classified as a transport failure,
// including deadline expiry.
func IsNetwork(err error) bool {
	return errors.Is(err, ErrNetworkFailure) || errors.Is(err, context.DeadlineExceeded)
}
