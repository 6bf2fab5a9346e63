package telemetry

// Span and attribute names used for instrumentation.
const (
	// Provider calls
	SpanPlaceSearch = "provider.place_search"
	SpanAirQuality  = "provider.air_quality"
	SpanDirections  = "provider.directions"

	// Presenter
	SpanSelect            = "session.select"
	SpanRequestDirections = "session.directions"

	AttrSessionID = "session.id"
	AttrProvider  = "provider.name"
	AttrMode      = "route.mode"
	AttrCategory  = "route.category"
	AttrQueryLen  = "search.query_length"
)
