package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/samirrijal/utechnav/internal/adapters/airquality"
	"github.com/samirrijal/utechnav/internal/adapters/nominatim"
	"github.com/samirrijal/utechnav/internal/adapters/valhalla"
	"github.com/samirrijal/utechnav/internal/core/domain"
	"github.com/samirrijal/utechnav/internal/core/usecases"
	"github.com/samirrijal/utechnav/internal/pkg/config"
	"github.com/samirrijal/utechnav/internal/pkg/logging"
)

const usage = `usage:
  navprobe search <query>
  navprobe aqi <lat> <lon>
  navprobe route <from_lat> <from_lon> <to_lat> <to_lon> [mode]`

func main() {
	if len(os.Args) < 2 {
		log.Fatal(usage)
	}

	cfg, err := config.Load("utechnav-navprobe")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, "text")

	timeout := cfg.Providers.RequestTimeout()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	args := os.Args[2:]
	switch os.Args[1] {
	case "search":
		if len(args) != 1 {
			log.Fatal(usage)
		}
		svc := usecases.NewPlaceSearchService(nominatim.New(cfg.Search.NominatimURL, cfg.Search.UserAgent, timeout), nil, 0, cfg.Search.Limit)
		places, err := svc.Search(ctx, args[0], 0)
		if err != nil {
			log.Fatalf("search: %v", err)
		}
		for i, p := range places {
			fmt.Printf("%2d  %-40s %s, %s  (%s)\n", i, p.DisplayName, p.City, p.State, p.Location)
		}

	case "aqi":
		coords := parseCoordinates(args, 2)
		svc := usecases.NewAirQualityService(airquality.New(cfg.AirQuality.BaseURL, cfg.AirQuality.APIKey, timeout))
		sample, err := svc.Lookup(ctx, coords[0])
		if err != nil {
			log.Fatalf("air quality: %s (%v)", domain.MessageAirQualityUnavailable, err)
		}
		fmt.Printf("%s  band=%s pollutant=%s\n", domain.FormatAirQuality(*sample), sample.Band, sample.DominantPollutant)

	case "route":
		mode := domain.DefaultMode
		if len(args) == 5 {
			if mode, err = domain.ParseTransportMode(args[4]); err != nil {
				log.Fatal(err)
			}
			args = args[:4]
		}
		coords := parseCoordinates(args, 4)
		svc := usecases.NewRouteService(valhalla.New(cfg.Directions.ValhallaURL, cfg.Directions.Alternates, timeout))
		est, err := svc.Route(ctx, coords[0], coords[1], mode)
		if err != nil {
			log.Fatalf("route: %s (%v)", domain.RouteMessage(err), err)
		}
		fmt.Printf("%s  %s  via %s (%d points)\n", est.DistanceText, est.TravelTimeText, est.Category, len(est.Path))

	default:
		log.Fatalf("unknown command: %s\n%s", os.Args[1], usage)
	}
}

// parseCoordinates reads want numbers as lat/lon pairs.
func parseCoordinates(args []string, want int) []domain.Coordinate {
	if len(args) != want {
		log.Fatal(usage)
	}
	var out []domain.Coordinate
	for i := 0; i < want; i += 2 {
		lat, err := strconv.ParseFloat(args[i], 64)
		if err != nil {
			log.Fatalf("latitude %q: %v", args[i], err)
		}
		lon, err := strconv.ParseFloat(args[i+1], 64)
		if err != nil {
			log.Fatalf("longitude %q: %v", args[i+1], err)
		}
		out = append(out, domain.Coordinate{Lat: lat, Lon: lon})
	}
	return out
}
