package domain

import (
	"fmt"
	"math"
)

// Kilometers converts meters to kilometers rounded to one decimal.
func Kilometers(meters float64) float64 {
	return math.Round(meters/100) / 10
}

// Minutes converts seconds to whole minutes, rounded to nearest.
func Minutes(seconds float64) int {
	return int(math.Round(seconds / 60))
}

// FormatDistance renders a distance in meters as "5.6 km".
func FormatDistance(meters float64) string {
	return fmt.Sprintf("%.1f km", Kilometers(meters))
}

// FormatTravelTime renders a duration in seconds as "10 min".
func FormatTravelTime(seconds float64) string {
	return fmt.Sprintf("%d min", Minutes(seconds))
}

// FormatAirQuality renders a sample as "Good (42)".
func FormatAirQuality(s AirQualitySample) string {
	return fmt.Sprintf("%s (%d)", s.Category, s.Index)
}

// AQIBand is a coarse severity bucket for the overlay's color bar.
type AQIBand string

const (
	BandGood          AQIBand = "green"
	BandModerate      AQIBand = "yellow"
	BandUnhealthy     AQIBand = "orange"
	BandVeryUnhealthy AQIBand = "red"
)

// BandFor places an index on the 0–100 reference bar. The provider's
// universal AQI runs high-is-clean, so higher values map to greener bands.
func BandFor(index int) AQIBand {
	switch {
	case index >= 80:
		return BandGood
	case index >= 60:
		return BandModerate
	case index >= 40:
		return BandUnhealthy
	default:
		return BandVeryUnhealthy
	}
}
