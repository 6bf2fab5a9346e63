package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/utechnav/internal/pkg/metrics"
)

var errConnGone = errors.New("websocket connection gone")

const (
	wsPingInterval = 30 * time.Second
	wsLoggerKey    = "ws_logger"
)

// wsMessage is sent by the client. "snapshot" asks for the current state
// again, "ping" is answered with "pong".
type wsMessage struct {
	Action string `json:"action"`
}

// wsEvent is sent to the client when the stream itself changes state.
type wsEvent struct {
	Event   string `json:"event"`
	Session string `json:"session,omitempty"`
	Error   string `json:"error,omitempty"`
}

// WebSocketUpgrade rejects non-upgrade requests and unknown sessions before
// the connection is hijacked, so clients get a normal HTTP error.
func WebSocketUpgrade(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		if _, err := deps.Sessions.Get(c.Query("session")); err != nil {
			return errFromDomain(c, err)
		}
		c.Locals(wsLoggerKey, LoggerFromCtx(c.UserContext()))
		return c.Next()
	}
}

// WebSocketHandler streams a session's state snapshots to the client: the
// current snapshot first, then one per change, then a "closed" event when
// the session ends. Snapshots come from the broker when a subscriber is
// configured and from the in-process session otherwise.
func WebSocketHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		sessionID := c.Query("session")
		base, ok := c.Locals(wsLoggerKey).(*slog.Logger)
		if !ok {
			base = slog.Default()
		}
		log := base.With("session_id", sessionID, "remote", c.RemoteAddr().String())
		log.Info("ws client connected")

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		// Callbacks may outlive the handler; once gone is set nothing
		// touches the connection again.
		var (
			mu   sync.Mutex
			gone bool
		)
		send := func(messageType int, data []byte) error {
			mu.Lock()
			defer mu.Unlock()
			if gone {
				return errConnGone
			}
			return c.WriteMessage(messageType, data)
		}
		defer func() {
			mu.Lock()
			gone = true
			mu.Unlock()
		}()
		writeJSON := func(v any) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			return send(websocket.TextMessage, data)
		}
		// Closing the conn unblocks ReadMessage below.
		var closeOnce sync.Once
		sessionClosed := func() {
			closeOnce.Do(func() {
				_ = writeJSON(wsEvent{Event: "closed", Session: sessionID})
				mu.Lock()
				defer mu.Unlock()
				if !gone {
					_ = c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"))
					_ = c.Close()
				}
			})
		}

		p, err := deps.Sessions.Get(sessionID)
		if err != nil {
			_ = writeJSON(wsEvent{Event: "error", Session: sessionID, Error: err.Error()})
			return
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var stop func()
		if deps.Subscriber != nil {
			stop, err = deps.Subscriber.SubscribeSessionState(ctx, sessionID, func(data []byte) {
				_ = send(websocket.TextMessage, data)
			}, sessionClosed)
			if err != nil {
				log.Error("ws subscribe", "error", err)
				_ = writeJSON(wsEvent{Event: "error", Session: sessionID, Error: "subscribe failed"})
				return
			}
		} else {
			states, stopWatch := p.Watch()
			stop = stopWatch
			go func() {
				for st := range states {
					_ = writeJSON(st)
				}
				select {
				case <-p.Done():
					sessionClosed()
				case <-ctx.Done():
				}
			}()
		}
		defer stop()

		done := make(chan struct{})
		defer close(done)
		go func() {
			ticker := time.NewTicker(wsPingInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					if err := send(websocket.PingMessage, nil); err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(wsEvent{Event: "error", Error: "invalid JSON"})
				continue
			}

			switch m.Action {
			case "ping":
				_ = writeJSON(wsEvent{Event: "pong"})
			case "snapshot":
				st, err := p.Snapshot()
				if err != nil {
					sessionClosed()
					continue
				}
				_ = writeJSON(st)
			default:
				_ = writeJSON(wsEvent{Event: "error", Error: "unknown action: " + m.Action})
			}
		}

		log.Info("ws client disconnected")
	}
}
