package domain

// PlaceResult is a search candidate returned by the place search provider.
type PlaceResult struct {
	Location    Coordinate `json:"location"`
	DisplayName string     `json:"display_name"`
	City        string     `json:"city"`
	State       string     `json:"state"`
	Address     string     `json:"address,omitempty"`
}

// UnknownPlaceName is used when the provider returns a result without a name.
const UnknownPlaceName = "Unknown Address"

// RGB is a color with components in [0,1], as the air-quality provider sends them.
type RGB struct {
	Red   float64 `json:"red"`
	Green float64 `json:"green"`
	Blue  float64 `json:"blue"`
}

// AQIIndex is one index entry from an air-quality response.
// DominantPollutant and Color are optional in the payload.
type AQIIndex struct {
	Code              string `json:"code,omitempty"`
	DisplayName       string `json:"display_name,omitempty"`
	AQI               int    `json:"aqi"`
	Category          string `json:"category"`
	DominantPollutant string `json:"dominant_pollutant,omitempty"`
	Color             *RGB   `json:"color,omitempty"`
}

// AirQualitySample is the air quality at a coordinate.
type AirQualitySample struct {
	Index             int     `json:"index"`
	Category          string  `json:"category"`
	DominantPollutant string  `json:"dominant_pollutant,omitempty"`
	Code              string  `json:"code,omitempty"`
	DisplayName       string  `json:"display_name,omitempty"`
	Color             *RGB    `json:"color,omitempty"`
	Band              AQIBand `json:"band"`
}

// RouteCandidate is one route as the directions provider reports it.
type RouteCandidate struct {
	DistanceMeters float64
	TravelSeconds  float64
	Path           []Coordinate
}

// RouteEstimate is the presented route for an (origin, destination, mode) triple.
type RouteEstimate struct {
	DistanceText   string         `json:"distance_text"`
	TravelTimeText string         `json:"travel_time_text"`
	DistanceMeters float64        `json:"distance_meters"`
	TravelSeconds  float64        `json:"travel_seconds"`
	Path           []Coordinate   `json:"path"`
	Mode           TransportMode  `json:"mode"`
	Category       TravelCategory `json:"category"`
}

// DirectionsRequest is what the directions provider needs for one lookup.
type DirectionsRequest struct {
	Origin      Coordinate
	Destination Coordinate
	Category    TravelCategory
}
