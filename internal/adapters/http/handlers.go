package http

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/utechnav/internal/core/domain"
)

// queryCoordinate reads a required lat/lon pair from the query string.
func queryCoordinate(c *fiber.Ctx, latKey, lonKey string) (domain.Coordinate, error) {
	rawLat, rawLon := c.Query(latKey), c.Query(lonKey)
	if rawLat == "" || rawLon == "" {
		return domain.Coordinate{}, fmt.Errorf("%w: %s and %s are required", domain.ErrInvalidInput, latKey, lonKey)
	}
	lat, err := strconv.ParseFloat(rawLat, 64)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("%w: %s is not a number", domain.ErrInvalidInput, latKey)
	}
	lon, err := strconv.ParseFloat(rawLon, 64)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("%w: %s is not a number", domain.ErrInvalidInput, lonKey)
	}
	coord := domain.Coordinate{Lat: lat, Lon: lon}
	if err := coord.Validate(); err != nil {
		return domain.Coordinate{}, err
	}
	return coord, nil
}

// SearchPlacesHandler geocodes the q parameter.
func SearchPlacesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", 0)
		if limit < 0 {
			return errBadRequest(c, "limit must not be negative")
		}

		places, err := deps.Places.Search(c.UserContext(), c.Query("q"), limit)
		if err != nil {
			return errFromDomain(c, err)
		}
		if places == nil {
			places = []domain.PlaceResult{}
		}

		c.Set("Cache-Control", "public, max-age=300")
		return c.JSON(places)
	}
}

// airQualityResponse pairs the sample with the text a client shows. The
// sample is absent when the provider had no index for the location.
type airQualityResponse struct {
	*domain.AirQualitySample
	Display string `json:"display"`
}

// airQualityResult turns a lookup into what clients show. No index at the
// location is a result, not an error.
func airQualityResult(sample *domain.AirQualitySample, err error) (*airQualityResponse, error) {
	switch {
	case err == nil:
		return &airQualityResponse{AirQualitySample: sample, Display: domain.FormatAirQuality(*sample)}, nil
	case errors.Is(err, domain.ErrNoResultFound):
		return &airQualityResponse{Display: domain.MessageAirQualityNoData}, nil
	default:
		return nil, err
	}
}

// AirQualityHandler returns the current index at lat/lon.
func AirQualityHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		at, err := queryCoordinate(c, "lat", "lon")
		if err != nil {
			return errFromDomain(c, err)
		}

		res, err := airQualityResult(deps.AirQuality.Lookup(c.UserContext(), at))
		if err != nil {
			return errFromDomain(c, err)
		}

		// Every lookup is fresh.
		c.Set("Cache-Control", "no-store")
		return c.JSON(res)
	}
}

// RouteEstimateHandler estimates travel between two points.
func RouteEstimateHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		from, err := queryCoordinate(c, "from_lat", "from_lon")
		if err != nil {
			return errFromDomain(c, err)
		}
		to, err := queryCoordinate(c, "to_lat", "to_lon")
		if err != nil {
			return errFromDomain(c, err)
		}

		mode := domain.DefaultMode
		if raw := c.Query("mode"); raw != "" {
			if mode, err = domain.ParseTransportMode(raw); err != nil {
				return errFromDomain(c, err)
			}
		}

		est, err := deps.Routes.Route(c.UserContext(), from, to, mode)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(est)
	}
}
