package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/utechnav/internal/core/domain"
)

// buildSchema creates the read-only GraphQL schema wired to our services.
// Field names follow the JSON tags so the default resolver can read structs.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	coordinateType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Coordinate",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	placeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Place",
		Fields: graphql.Fields{
			"display_name": &graphql.Field{Type: graphql.String},
			"city":         &graphql.Field{Type: graphql.String},
			"state":        &graphql.Field{Type: graphql.String},
			"address":      &graphql.Field{Type: graphql.String},
			"location":     &graphql.Field{Type: coordinateType},
		},
	})

	airQualityType := graphql.NewObject(graphql.ObjectConfig{
		Name: "AirQuality",
		Fields: graphql.Fields{
			"index":              aqField(graphql.Int, func(s *domain.AirQualitySample) interface{} { return s.Index }),
			"category":           aqField(graphql.String, func(s *domain.AirQualitySample) interface{} { return s.Category }),
			"dominant_pollutant": aqField(graphql.String, func(s *domain.AirQualitySample) interface{} { return s.DominantPollutant }),
			"code":               aqField(graphql.String, func(s *domain.AirQualitySample) interface{} { return s.Code }),
			"display_name":       aqField(graphql.String, func(s *domain.AirQualitySample) interface{} { return s.DisplayName }),
			"band":               aqField(graphql.String, func(s *domain.AirQualitySample) interface{} { return string(s.Band) }),
			"display": &graphql.Field{
				Type:        graphql.String,
				Description: "Text shown to the user, e.g. \"Good (42)\"",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if r, ok := p.Source.(*airQualityResponse); ok {
						return r.Display, nil
					}
					return nil, nil
				},
			},
		},
	})

	routeEstimateType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RouteEstimate",
		Fields: graphql.Fields{
			"distance_text":    &graphql.Field{Type: graphql.String},
			"travel_time_text": &graphql.Field{Type: graphql.String},
			"distance_meters":  &graphql.Field{Type: graphql.Float},
			"travel_seconds":   &graphql.Field{Type: graphql.Float},
			"path":             &graphql.Field{Type: graphql.NewList(coordinateType)},
			"mode": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if e, ok := p.Source.(*domain.RouteEstimate); ok {
						return string(e.Mode), nil
					}
					return nil, nil
				},
			},
			"category": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if e, ok := p.Source.(*domain.RouteEstimate); ok {
						return string(e.Category), nil
					}
					return nil, nil
				},
			},
		},
	})

	// Session fields are flattened from the snapshot so clients need not
	// know its nesting.
	sessionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Session",
		Fields: graphql.Fields{
			"session_id": &graphql.Field{Type: graphql.String},
			"version":    &graphql.Field{Type: graphql.Int},
			"phase":      stringField(func(s domain.SessionState) string { return string(s.Phase) }),
			"style":      stringField(func(s domain.SessionState) string { return string(s.Style) }),
			"mode":       stringField(func(s domain.SessionState) string { return string(s.Mode) }),
			"authorization": stringField(func(s domain.SessionState) string {
				return string(s.Authorization)
			}),
			"location_ready": &graphql.Field{Type: graphql.Boolean},
			"user_location":  &graphql.Field{Type: coordinateType},
			"selection":      &graphql.Field{Type: placeType},
			"search_results": &graphql.Field{
				Type: graphql.NewList(placeType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if s, ok := p.Source.(domain.SessionState); ok {
						return s.Search.Results, nil
					}
					return nil, nil
				},
			},
			"air_quality_display": stringField(func(s domain.SessionState) string { return s.AirQuality.Display }),
			"air_quality": &graphql.Field{
				Type: airQualityType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if s, ok := p.Source.(domain.SessionState); ok && s.AirQuality.Phase == domain.RequestReady {
						return &airQualityResponse{AirQualitySample: s.AirQuality.Sample, Display: s.AirQuality.Display}, nil
					}
					return nil, nil
				},
			},
			"route_phase":   stringField(func(s domain.SessionState) string { return string(s.Route.Phase) }),
			"route_message": stringField(func(s domain.SessionState) string { return s.Route.Message }),
			"route": &graphql.Field{
				Type: routeEstimateType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if s, ok := p.Source.(domain.SessionState); ok && s.Route.Estimate != nil {
						return s.Route.Estimate, nil
					}
					return nil, nil
				},
			},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"places": &graphql.Field{
				Type:        graphql.NewList(placeType),
				Description: "Search places by free text",
				Args: graphql.FieldConfigArgument{
					"query": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					q := p.Args["query"].(string)
					limit := p.Args["limit"].(int)
					return deps.Places.Search(p.Context, q, limit)
				},
			},
			"airQuality": &graphql.Field{
				Type:        airQualityType,
				Description: "Current air quality at a location",
				Args: graphql.FieldConfigArgument{
					"lat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					at := domain.Coordinate{Lat: p.Args["lat"].(float64), Lon: p.Args["lon"].(float64)}
					return airQualityResult(deps.AirQuality.Lookup(p.Context, at))
				},
			},
			"routeEstimate": &graphql.Field{
				Type:        routeEstimateType,
				Description: "Travel distance and time between two points",
				Args: graphql.FieldConfigArgument{
					"fromLat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"fromLon": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"toLat":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"toLon":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"mode":    &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: string(domain.DefaultMode)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					mode, err := domain.ParseTransportMode(p.Args["mode"].(string))
					if err != nil {
						return nil, err
					}
					from := domain.Coordinate{Lat: p.Args["fromLat"].(float64), Lon: p.Args["fromLon"].(float64)}
					to := domain.Coordinate{Lat: p.Args["toLat"].(float64), Lon: p.Args["toLon"].(float64)}
					return deps.Routes.Route(p.Context, from, to, mode)
				},
			},
			"session": &graphql.Field{
				Type:        sessionType,
				Description: "Current state of a navigation session",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					s, err := deps.Sessions.Get(p.Args["id"].(string))
					if err != nil {
						return nil, err
					}
					return s.Snapshot()
				},
			},
			"sessions": &graphql.Field{
				Type:        graphql.NewList(sessionType),
				Description: "All open sessions, oldest first",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Sessions.List(), nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// aqField resolves an AirQuality field from the sample, or null when the
// provider had no index.
func aqField(typ graphql.Output, get func(*domain.AirQualitySample) interface{}) *graphql.Field {
	return &graphql.Field{
		Type: typ,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			if r, ok := p.Source.(*airQualityResponse); ok && r.AirQualitySample != nil {
				return get(r.AirQualitySample), nil
			}
			return nil, nil
		},
	}
}

func stringField(get func(domain.SessionState) string) *graphql.Field {
	return &graphql.Field{
		Type: graphql.String,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			if s, ok := p.Source.(domain.SessionState); ok {
				return get(s), nil
			}
			return nil, nil
		},
	}
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
