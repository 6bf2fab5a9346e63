package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/utechnav/internal/core/domain"
	"github.com/samirrijal/utechnav/internal/core/usecases"
)

type searchRequest struct {
	Query string `json:"query"`
}

// selectRequest picks either a result of the latest search or an explicit place.
type selectRequest struct {
	Index *int                `json:"index"`
	Place *domain.PlaceResult `json:"place"`
}

type modeRequest struct {
	Mode string `json:"mode"`
}

type styleRequest struct {
	Style domain.MapStyle `json:"style"`
}

type locationRequest struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

type authorizationRequest struct {
	Status domain.AuthorizationStatus `json:"status"`
}

// sessionCommand resolves :id and runs fn against the session, replying
// with the resulting snapshot.
func sessionCommand(deps *Dependencies, fn func(c *fiber.Ctx, p *usecases.MapPresenter) (domain.SessionState, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := deps.Sessions.Get(c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		st, err := fn(c, p)
		if err != nil {
			return errFromDomain(c, err)
		}
		c.Set("Cache-Control", "no-store")
		return c.JSON(st)
	}
}

// CreateSessionHandler opens a navigation session.
func CreateSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := deps.Sessions.Create(c.UserContext())
		if err != nil {
			return errFromDomain(c, err)
		}
		st, err := p.Snapshot()
		if err != nil {
			return errFromDomain(c, err)
		}
		c.Location("/v1/sessions/" + p.ID())
		return c.Status(fiber.StatusCreated).JSON(st)
	}
}

// ListSessionsHandler returns open sessions, oldest first.
func ListSessionsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessions := deps.Sessions.List()

		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 50)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 200 {
			limit = 50
		}

		total := len(sessions)
		if offset >= total {
			sessions = []domain.SessionState{}
		} else {
			end := offset + limit
			if end > total {
				end = total
			}
			sessions = sessions[offset:end]
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		c.Set("Cache-Control", "no-store")
		return c.JSON(PaginatedResponse{Data: sessions, Pagination: pg})
	}
}

// GetSessionHandler returns the current snapshot.
func GetSessionHandler(deps *Dependencies) fiber.Handler {
	return sessionCommand(deps, func(_ *fiber.Ctx, p *usecases.MapPresenter) (domain.SessionState, error) {
		return p.Snapshot()
	})
}

// DeleteSessionHandler closes a session.
func DeleteSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Sessions.Close(c.UserContext(), c.Params("id")); err != nil {
			return errFromDomain(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// SessionSearchHandler starts a place search inside the session.
func SessionSearchHandler(deps *Dependencies) fiber.Handler {
	return sessionCommand(deps, func(c *fiber.Ctx, p *usecases.MapPresenter) (domain.SessionState, error) {
		var req searchRequest
		if err := c.BodyParser(&req); err != nil {
			return domain.SessionState{}, badBody(err)
		}
		return p.Search(c.UserContext(), req.Query)
	})
}

// SessionSelectHandler selects a destination.
func SessionSelectHandler(deps *Dependencies) fiber.Handler {
	return sessionCommand(deps, func(c *fiber.Ctx, p *usecases.MapPresenter) (domain.SessionState, error) {
		var req selectRequest
		if err := c.BodyParser(&req); err != nil {
			return domain.SessionState{}, badBody(err)
		}
		switch {
		case req.Index != nil && req.Place != nil:
			return domain.SessionState{}, invalid("give either index or place, not both")
		case req.Index != nil:
			return p.SelectResult(c.UserContext(), *req.Index)
		case req.Place != nil:
			place := *req.Place
			if place.DisplayName == "" {
				place.DisplayName = domain.UnknownPlaceName
			}
			return p.Select(c.UserContext(), place)
		}
		return domain.SessionState{}, invalid("index or place is required")
	})
}

// SessionDirectionsHandler requests a route to the selected destination.
func SessionDirectionsHandler(deps *Dependencies) fiber.Handler {
	return sessionCommand(deps, func(c *fiber.Ctx, p *usecases.MapPresenter) (domain.SessionState, error) {
		return p.RequestDirections(c.UserContext())
	})
}

// SessionModeHandler changes the transport mode.
func SessionModeHandler(deps *Dependencies) fiber.Handler {
	return sessionCommand(deps, func(c *fiber.Ctx, p *usecases.MapPresenter) (domain.SessionState, error) {
		var req modeRequest
		if err := c.BodyParser(&req); err != nil {
			return domain.SessionState{}, badBody(err)
		}
		mode, err := domain.ParseTransportMode(req.Mode)
		if err != nil {
			return domain.SessionState{}, err
		}
		return p.SetTransportMode(c.UserContext(), mode)
	})
}

// SessionStyleHandler switches the map style.
func SessionStyleHandler(deps *Dependencies) fiber.Handler {
	return sessionCommand(deps, func(c *fiber.Ctx, p *usecases.MapPresenter) (domain.SessionState, error) {
		var req styleRequest
		if err := c.BodyParser(&req); err != nil {
			return domain.SessionState{}, badBody(err)
		}
		return p.SetMapStyle(req.Style)
	})
}

// SessionLocationHandler pushes a device location fix.
func SessionLocationHandler(deps *Dependencies) fiber.Handler {
	return sessionCommand(deps, func(c *fiber.Ctx, p *usecases.MapPresenter) (domain.SessionState, error) {
		var req locationRequest
		if err := c.BodyParser(&req); err != nil {
			return domain.SessionState{}, badBody(err)
		}
		if req.Lat == nil || req.Lon == nil {
			return domain.SessionState{}, invalid("lat and lon are required")
		}
		return p.UpdateLocation(domain.Coordinate{Lat: *req.Lat, Lon: *req.Lon})
	})
}

// SessionAuthorizationHandler applies a location permission change.
func SessionAuthorizationHandler(deps *Dependencies) fiber.Handler {
	return sessionCommand(deps, func(c *fiber.Ctx, p *usecases.MapPresenter) (domain.SessionState, error) {
		var req authorizationRequest
		if err := c.BodyParser(&req); err != nil {
			return domain.SessionState{}, badBody(err)
		}
		return p.SetAuthorization(req.Status)
	})
}

// SessionRecenterHandler clears the selection and centers on the user.
func SessionRecenterHandler(deps *Dependencies) fiber.Handler {
	return sessionCommand(deps, func(c *fiber.Ctx, p *usecases.MapPresenter) (domain.SessionState, error) {
		return p.Recenter(c.UserContext())
	})
}

// SessionDismissHandler clears the selection.
func SessionDismissHandler(deps *Dependencies) fiber.Handler {
	return sessionCommand(deps, func(c *fiber.Ctx, p *usecases.MapPresenter) (domain.SessionState, error) {
		return p.Dismiss(c.UserContext())
	})
}
