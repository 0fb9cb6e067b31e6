package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/vedalearn/session-backend/internal/session"
	"github.com/vedalearn/session-backend/internal/store"
	ws "github.com/vedalearn/session-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowed-origins slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams live session events (countdown ticks, the final result)
// to the browser.
type WSHandler struct {
	store    *store.Store
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(st *store.Store, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		store:    st,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// SessionStream godoc
// WS /ws/v1/sessions/:session_id/stream
// Upgrades to WebSocket and pushes the current snapshot, then every timer
// tick and finally the graded result.
func (h *WSHandler) SessionStream(c *gin.Context) {
	sess, ok := h.store.Session(c.Param("session_id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Str("session_id", sess.ID()).Logger()
	wsLog.Info().Msg("Client connected")

	// Snapshot first so a reconnecting client can render immediately.
	if err := ws.WriteTyped(conn, ws.StateResponse{Event: ws.EventState, Snapshot: sess.Snapshot()}); err != nil {
		return
	}

	eventsCh, cancel := sess.Subscribe()
	defer cancel()

	// Reader goroutine: we never expect client messages, but reading is the
	// only way to notice the peer going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			wsLog.Debug().Msg("Client disconnected")
			return
		case ev, ok := <-eventsCh:
			if !ok {
				return
			}
			if err := h.writeEvent(conn, ev); err != nil {
				wsLog.Debug().Err(err).Msg("Write failed, dropping client")
				return
			}
			if ev.Type == session.EventFinished {
				wsLog.Info().Msg("Session finished, closing stream")
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "finished"))
				return
			}
		}
	}
}

func (h *WSHandler) writeEvent(conn *websocket.Conn, ev session.Event) error {
	switch ev.Type {
	case session.EventTick:
		return ws.WriteTyped(conn, ws.TickResponse{Event: ws.EventTick, RemainingSeconds: ev.RemainingSeconds})
	case session.EventFinished:
		return ws.WriteTyped(conn, ws.FinishedResponse{Event: ws.EventFinished, Result: ev.Result})
	default:
		return nil
	}
}
