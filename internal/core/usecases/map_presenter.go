package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/utechnav/internal/core/domain"
	"github.com/samirrijal/utechnav/internal/core/ports"
	"github.com/samirrijal/utechnav/internal/pkg/geospatial"
	"github.com/samirrijal/utechnav/internal/pkg/logging"
	"github.com/samirrijal/utechnav/internal/pkg/metrics"
	"github.com/samirrijal/utechnav/internal/pkg/telemetry"
)

const (
	defaultProviderTimeout = 10 * time.Second
	defaultCameraSpan      = 1000.0
	routeCameraPadding     = 1.2
	watcherBuffer          = 16
	publishTimeout         = 5 * time.Second
)

// ErrSessionClosed is returned by every presenter operation after Close.
var ErrSessionClosed = fmt.Errorf("%w: session closed", domain.ErrNoResultFound)

// PresenterConfig wires a MapPresenter to its collaborators.
type PresenterConfig struct {
	Search     *PlaceSearchService
	AirQuality *AirQualityService
	Routes     *RouteService
	// Publisher is optional; when set every state change is fanned out through it.
	Publisher       ports.StatePublisher
	ProviderTimeout time.Duration
	SearchLimit     int
	Logger          *slog.Logger
}

// MapPresenter owns the state of one navigation session. All state lives on
// a single goroutine; callers and provider results reach it as commands.
type MapPresenter struct {
	id          string
	cfg         PresenterConfig
	log         *slog.Logger
	tracker     *LocationTracker
	unsubscribe func()

	ctx       context.Context
	cancel    context.CancelFunc
	cmds      chan func()
	done      chan struct{}
	closeOnce sync.Once

	// Broker I/O runs on its own goroutine; only the newest snapshot waits.
	outbox      chan []byte
	publishDone chan struct{}

	// Owned by the loop goroutine.
	state                                  domain.SessionState
	searchGen, aqGen, routeGen             uint64
	cancelSearch, cancelAQ, cancelRouteReq context.CancelFunc
	watchers                               map[int]chan domain.SessionState
	nextWatcher                            int
}

// NewMapPresenter starts a presenter in the idle phase.
func NewMapPresenter(id string, cfg PresenterConfig) *MapPresenter {
	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = defaultProviderTimeout
	}
	ctx, cancel := context.WithCancel(context.Background())
	now := time.Now().UTC()

	p := &MapPresenter{
		id:      id,
		cfg:     cfg,
		log:     logging.ForSession(cfg.Logger, id),
		tracker: NewLocationTracker(),
		ctx:     ctx,
		cancel:  cancel,
		cmds:    make(chan func()),
		done:    make(chan struct{}),
		state: domain.SessionState{
			SessionID:     id,
			Phase:         domain.PhaseIdle,
			Style:         domain.StyleStandard,
			Mode:          domain.DefaultMode,
			Authorization: domain.AuthNotDetermined,
			Search:        domain.SearchState{Results: []domain.PlaceResult{}},
			AirQuality:    domain.AirQualityState{Phase: domain.RequestIdle},
			Route:         domain.RouteState{Phase: domain.RequestIdle},
			CreatedAt:     now,
			UpdatedAt:     now,
		},
		watchers: make(map[int]chan domain.SessionState),
	}

	go p.run()
	if cfg.Publisher != nil {
		p.outbox = make(chan []byte, 1)
		p.publishDone = make(chan struct{})
		go p.publishLoop()
	}
	p.unsubscribe = p.tracker.Subscribe(p.onLocation)
	return p
}

// ID returns the session identifier.
func (p *MapPresenter) ID() string { return p.id }

func (p *MapPresenter) run() {
	defer close(p.done)
	for {
		select {
		case fn := <-p.cmds:
			fn()
		case <-p.ctx.Done():
			for id, ch := range p.watchers {
				close(ch)
				delete(p.watchers, id)
			}
			return
		}
	}
}

// post schedules fn on the loop. It reports false once the loop has stopped.
func (p *MapPresenter) post(fn func()) bool {
	select {
	case p.cmds <- fn:
		return true
	case <-p.done:
		return false
	}
}

// do runs fn on the loop and returns the state it leaves behind.
func (p *MapPresenter) do(fn func() error) (domain.SessionState, error) {
	type result struct {
		st  domain.SessionState
		err error
	}
	ch := make(chan result, 1)
	if !p.post(func() {
		err := fn()
		ch <- result{p.state, err}
	}) {
		return domain.SessionState{}, ErrSessionClosed
	}
	r := <-ch
	return r.st, r.err
}

// mutate is do for commands that change state; the change is broadcast
// only when fn succeeds.
func (p *MapPresenter) mutate(fn func() error) (domain.SessionState, error) {
	return p.do(func() error {
		if err := fn(); err != nil {
			return err
		}
		p.changed()
		return nil
	})
}

func (p *MapPresenter) changed() {
	p.state.Version++
	p.state.UpdatedAt = time.Now().UTC()
	st := p.state

	for _, ch := range p.watchers {
		offer(ch, st)
	}

	if p.cfg.Publisher == nil {
		return
	}
	data, err := json.Marshal(st)
	if err != nil {
		p.log.Error("marshal session state", "error", err)
		return
	}
	// Latest wins: an unsent older snapshot is replaced.
	select {
	case p.outbox <- data:
		return
	default:
	}
	select {
	case <-p.outbox:
	default:
	}
	select {
	case p.outbox <- data:
	default:
	}
}

// publishLoop hands snapshots to the broker until the session stops. Each
// publish is bounded so a broker outage only delays state fan-out.
func (p *MapPresenter) publishLoop() {
	defer close(p.publishDone)
	for {
		select {
		case data := <-p.outbox:
			ctx, cancel := context.WithTimeout(p.ctx, publishTimeout)
			err := p.cfg.Publisher.PublishSessionState(ctx, p.id, data)
			cancel()
			if err != nil {
				p.log.Warn("publish session state", "error", err)
			}
		case <-p.ctx.Done():
			return
		}
	}
}

// offer delivers st, replacing the oldest queued snapshot when ch is full.
// Only the loop sends on watcher channels.
func offer(ch chan domain.SessionState, st domain.SessionState) {
	select {
	case ch <- st:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- st
}

// Snapshot returns the current state.
func (p *MapPresenter) Snapshot() (domain.SessionState, error) {
	return p.do(func() error { return nil })
}

// Watch streams a snapshot after every change, starting with the current
// one. The channel is closed by stop or when the session closes.
func (p *MapPresenter) Watch() (<-chan domain.SessionState, func()) {
	ch := make(chan domain.SessionState, watcherBuffer)
	var id int
	if !p.post(func() {
		id = p.nextWatcher
		p.nextWatcher++
		p.watchers[id] = ch
		ch <- p.state
	}) {
		close(ch)
		return ch, func() {}
	}

	var once sync.Once
	stop := func() {
		once.Do(func() {
			p.post(func() {
				if w, ok := p.watchers[id]; ok {
					close(w)
					delete(p.watchers, id)
				}
			})
		})
	}
	return ch, stop
}

// SetMapStyle switches the base layer.
func (p *MapPresenter) SetMapStyle(style domain.MapStyle) (domain.SessionState, error) {
	if !style.IsValid() {
		return domain.SessionState{}, fmt.Errorf("%w: unknown map style %q", domain.ErrInvalidInput, style)
	}
	return p.mutate(func() error {
		p.state.Style = style
		return nil
	})
}

// UpdateLocation pushes a device fix into the session.
func (p *MapPresenter) UpdateLocation(c domain.Coordinate) (domain.SessionState, error) {
	if err := p.tracker.Update(c); err != nil {
		return domain.SessionState{}, err
	}
	return p.Snapshot()
}

// SetAuthorization applies a location permission change.
func (p *MapPresenter) SetAuthorization(status domain.AuthorizationStatus) (domain.SessionState, error) {
	if err := p.tracker.SetAuthorization(status); err != nil {
		return domain.SessionState{}, err
	}
	return p.Snapshot()
}

func (p *MapPresenter) onLocation(ls LocationState) {
	p.post(func() {
		first := ls.Ready && !p.state.LocationReady
		p.state.Authorization = ls.Authorization
		p.state.UserLocation = ls.Current
		p.state.LocationReady = ls.Ready
		if first && p.state.Selection == nil {
			p.state.Camera = &domain.CameraPosition{Center: *ls.Current, SpanMeters: defaultCameraSpan}
		}
		p.changed()
	})
}

// Search starts a place search, superseding any search in flight. An empty
// query clears the results without calling the provider.
func (p *MapPresenter) Search(ctx context.Context, query string) (domain.SessionState, error) {
	q, err := NormalizeQuery(query)
	if err != nil {
		return domain.SessionState{}, err
	}
	return p.mutate(func() error {
		p.searchGen++
		gen := p.searchGen
		if p.cancelSearch != nil {
			p.cancelSearch()
			p.cancelSearch = nil
		}

		if q == "" {
			p.state.Search = domain.SearchState{Query: query, Results: []domain.PlaceResult{}}
			return nil
		}
		// Earlier results stay visible until the new ones land.
		p.state.Search.Query = query
		p.state.Search.Pending = true
		p.state.Search.Message = ""

		cctx, cancel := context.WithTimeout(p.ctx, p.cfg.ProviderTimeout)
		p.cancelSearch = cancel
		go func() {
			defer cancel()
			results, err := p.cfg.Search.Search(cctx, q, p.cfg.SearchLimit)
			p.post(func() { p.applySearch(gen, results, err) })
		}()
		return nil
	})
}

func (p *MapPresenter) applySearch(gen uint64, results []domain.PlaceResult, err error) {
	if gen != p.searchGen {
		metrics.SupersededResults.WithLabelValues("search").Inc()
		return
	}
	p.state.Search.Pending = false
	if err != nil {
		p.log.Warn("place search failed", "error", err)
		p.state.Search.Results = []domain.PlaceResult{}
		p.state.Search.Message = domain.UserMessage(err)
	} else {
		if results == nil {
			results = []domain.PlaceResult{}
		}
		p.state.Search.Results = results
		p.state.Search.Message = ""
	}
	p.changed()
}

// Select makes place the destination: the camera recenters on it, any route
// is cleared, and a fresh air-quality lookup starts.
func (p *MapPresenter) Select(ctx context.Context, place domain.PlaceResult) (domain.SessionState, error) {
	if err := place.Location.Validate(); err != nil {
		return domain.SessionState{}, err
	}
	return p.mutate(func() error {
		p.selectLocked(ctx, place)
		return nil
	})
}

// SelectResult selects the index-th result of the latest search.
func (p *MapPresenter) SelectResult(ctx context.Context, index int) (domain.SessionState, error) {
	return p.mutate(func() error {
		results := p.state.Search.Results
		if index < 0 || index >= len(results) {
			return fmt.Errorf("%w: result index %d out of range (have %d)", domain.ErrInvalidInput, index, len(results))
		}
		p.selectLocked(ctx, results[index])
		return nil
	})
}

func (p *MapPresenter) selectLocked(ctx context.Context, place domain.PlaceResult) {
	p.state.SelectionToken++
	p.state.Selection = &place
	p.state.Phase = domain.PhaseSelected
	p.state.Camera = &domain.CameraPosition{Center: place.Location, SpanMeters: defaultCameraSpan}
	p.resetRoute()
	p.startAirQuality(ctx)
}

func (p *MapPresenter) startAirQuality(reqCtx context.Context) {
	if p.cancelAQ != nil {
		p.cancelAQ()
	}
	p.aqGen++
	gen, token := p.aqGen, p.state.SelectionToken
	at := p.state.Selection.Location
	p.state.AirQuality = domain.AirQualityState{Phase: domain.RequestPending, Display: domain.MessageLoading}

	cctx, cancel := context.WithTimeout(p.ctx, p.cfg.ProviderTimeout)
	p.cancelAQ = cancel
	go func() {
		defer cancel()
		ctx, span := telemetry.StartSpan(cctx, telemetry.SpanSelect,
			trace.WithLinks(trace.LinkFromContext(reqCtx)),
			trace.WithAttributes(attribute.String(telemetry.AttrSessionID, p.id)),
		)
		sample, err := p.cfg.AirQuality.Lookup(ctx, at)
		span.End()
		p.post(func() { p.applyAirQuality(token, gen, sample, err) })
	}()
}

func (p *MapPresenter) applyAirQuality(token, gen uint64, sample *domain.AirQualitySample, err error) {
	if token != p.state.SelectionToken || gen != p.aqGen {
		metrics.SupersededResults.WithLabelValues("air_quality").Inc()
		return
	}
	switch {
	case err == nil:
		p.state.AirQuality = domain.AirQualityState{
			Phase:   domain.RequestReady,
			Sample:  sample,
			Display: domain.FormatAirQuality(*sample),
		}
	case errors.Is(err, domain.ErrNoResultFound):
		p.state.AirQuality = domain.AirQualityState{Phase: domain.RequestReady, Display: domain.MessageAirQualityNoData}
	default:
		p.log.Warn("air quality lookup failed", "error", err)
		p.state.AirQuality = domain.AirQualityState{Phase: domain.RequestFailed, Display: domain.MessageAirQualityUnavailable}
	}
	p.changed()
}

// RequestDirections routes from the user's location to the selected
// destination using the current transport mode.
func (p *MapPresenter) RequestDirections(ctx context.Context) (domain.SessionState, error) {
	return p.mutate(func() error {
		if p.state.Selection == nil {
			return fmt.Errorf("%w: no destination selected", domain.ErrInvalidInput)
		}
		p.state.Phase = domain.PhaseDirectionsRequested
		p.startRoute(ctx)
		return nil
	})
}

// SetTransportMode changes the mode. While directions are requested the
// displayed estimate is cleared and a new route request replaces the old one.
func (p *MapPresenter) SetTransportMode(ctx context.Context, mode domain.TransportMode) (domain.SessionState, error) {
	if !mode.IsValid() {
		return domain.SessionState{}, fmt.Errorf("%w: unknown transport mode %q", domain.ErrInvalidInput, mode)
	}
	return p.mutate(func() error {
		if p.state.Mode == mode {
			return nil
		}
		p.state.Mode = mode
		if p.state.Phase == domain.PhaseDirectionsRequested {
			p.startRoute(ctx)
		}
		return nil
	})
}

func (p *MapPresenter) startRoute(reqCtx context.Context) {
	p.resetRoute()

	if p.state.UserLocation == nil {
		msg := domain.MessageLocationUnavailable
		if a := p.state.Authorization; a == domain.AuthDenied || a == domain.AuthRestricted {
			msg = domain.MessageLocationDenied
		}
		p.state.Route = domain.RouteState{Phase: domain.RequestFailed, Message: msg}
		return
	}

	gen, token := p.routeGen, p.state.SelectionToken
	origin, dest, mode := *p.state.UserLocation, p.state.Selection.Location, p.state.Mode
	p.state.Route = domain.RouteState{Phase: domain.RequestPending}

	cctx, cancel := context.WithTimeout(p.ctx, p.cfg.ProviderTimeout)
	p.cancelRouteReq = cancel
	go func() {
		defer cancel()
		ctx, span := telemetry.StartSpan(cctx, telemetry.SpanRequestDirections,
			trace.WithLinks(trace.LinkFromContext(reqCtx)),
			trace.WithAttributes(
				attribute.String(telemetry.AttrSessionID, p.id),
				attribute.String(telemetry.AttrMode, string(mode)),
			),
		)
		est, err := p.cfg.Routes.Route(ctx, origin, dest, mode)
		span.End()
		p.post(func() { p.applyRoute(token, gen, est, err) })
	}()
}

// resetRoute cancels any route request and clears the estimate.
func (p *MapPresenter) resetRoute() {
	if p.cancelRouteReq != nil {
		p.cancelRouteReq()
		p.cancelRouteReq = nil
	}
	p.routeGen++
	p.state.Route = domain.RouteState{Phase: domain.RequestIdle}
}

func (p *MapPresenter) applyRoute(token, gen uint64, est *domain.RouteEstimate, err error) {
	if token != p.state.SelectionToken || gen != p.routeGen {
		metrics.SupersededResults.WithLabelValues("route").Inc()
		return
	}
	if err != nil {
		p.log.Warn("route request failed", "mode", p.state.Mode, "error", err)
		p.state.Route = domain.RouteState{Phase: domain.RequestFailed, Message: domain.RouteMessage(err)}
		p.changed()
		return
	}

	p.state.Route = domain.RouteState{Phase: domain.RequestReady, Estimate: est}
	if b, ok := domain.BoundsOf(est.Path); ok {
		p.state.Camera = &domain.CameraPosition{
			Center:     b.Center(),
			SpanMeters: geospatial.FitSpan(b.MinLat, b.MinLon, b.MaxLat, b.MaxLon, routeCameraPadding),
		}
	}
	p.changed()
}

// Recenter returns to idle and points the camera at the user, when known.
func (p *MapPresenter) Recenter(ctx context.Context) (domain.SessionState, error) {
	return p.mutate(func() error {
		p.clearSelection()
		if p.state.UserLocation != nil {
			p.state.Camera = &domain.CameraPosition{Center: *p.state.UserLocation, SpanMeters: defaultCameraSpan}
		}
		return nil
	})
}

// Dismiss returns to idle without moving the camera.
func (p *MapPresenter) Dismiss(ctx context.Context) (domain.SessionState, error) {
	return p.mutate(func() error {
		p.clearSelection()
		return nil
	})
}

func (p *MapPresenter) clearSelection() {
	p.state.SelectionToken++
	p.state.Selection = nil
	p.state.Phase = domain.PhaseIdle
	if p.cancelAQ != nil {
		p.cancelAQ()
		p.cancelAQ = nil
	}
	p.aqGen++
	p.state.AirQuality = domain.AirQualityState{Phase: domain.RequestIdle}
	p.resetRoute()
}

// Close stops the session, cancelling any provider calls in flight.
func (p *MapPresenter) Close(ctx context.Context) {
	p.closeOnce.Do(func() {
		p.cancel()
		<-p.done
		p.unsubscribe()
		if p.cfg.Publisher != nil {
			<-p.publishDone
			ctx, cancel := context.WithTimeout(ctx, publishTimeout)
			defer cancel()
			if err := p.cfg.Publisher.PublishSessionClosed(ctx, p.id); err != nil {
				p.log.Warn("publish session closed", "error", err)
			}
		}
		p.log.Info("session closed")
	})
}

// Done is closed once the session has stopped.
func (p *MapPresenter) Done() <-chan struct{} { return p.done }
