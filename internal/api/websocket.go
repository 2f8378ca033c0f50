package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ashureev/offertalk/internal/negotiation"
	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
)

// sessionNotFoundMessage is the terminal channel message for unknown ids.
const sessionNotFoundMessage = "Error: Session not found."

// WebSocketHandler serves the long-lived negotiation channel. Each inbound
// text message is one turn: it is routed to the opposing agent and the reply
// is sent back prefixed with the responding role's label.
type WebSocketHandler struct {
	svc           *negotiation.Service
	allowedOrigin string
	isDev         bool
}

// NewWebSocketHandler creates a new WebSocket handler.
func NewWebSocketHandler(svc *negotiation.Service, allowedOrigin string, isDev bool) *WebSocketHandler {
	return &WebSocketHandler{
		svc:           svc,
		allowedOrigin: allowedOrigin,
		isDev:         isDev,
	}
}

// ServeHTTP implements http.Handler for WebSocket upgrade.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	slog.Info("Negotiation channel request", "session_id", sessionID, "ip", r.RemoteAddr)

	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err, "session_id", sessionID)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "session ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr, "session_id", sessionID)
		}
	}()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	h.messageLoop(ctx, ws, sessionID)
	slog.Info("Negotiation channel closed", "session_id", sessionID)
}

// messageLoop processes turns until the client disconnects or the session id
// turns out to be unknown. An unknown session is fatal to the connection;
// any other per-turn failure is reported inline and the channel stays open.
func (h *WebSocketHandler) messageLoop(ctx context.Context, ws *websocket.Conn, sessionID string) {
	for {
		_, data, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				slog.Debug("WebSocket closed by client", "session_id", sessionID)
			} else {
				slog.Warn("WebSocket read error", "error", err, "session_id", sessionID)
			}
			return
		}

		role, reply, err := h.svc.Turn(ctx, sessionID, string(data))
		if err != nil {
			if errors.Is(err, negotiation.ErrSessionNotFound) {
				h.writeText(ctx, ws, sessionID, sessionNotFoundMessage)
				return
			}
			slog.Error("Turn failed", "session_id", sessionID, "error", err)
			h.writeText(ctx, ws, sessionID, "Error: "+err.Error())
			continue
		}

		h.writeText(ctx, ws, sessionID, role.Label()+": "+reply)
	}
}

func (h *WebSocketHandler) writeText(ctx context.Context, ws *websocket.Conn, sessionID, text string) {
	if err := ws.Write(ctx, websocket.MessageText, []byte(text)); err != nil {
		slog.Debug("WebSocket write error", "error", err, "session_id", sessionID)
	}
}

func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowedOrigin == "*" {
		return true
	}
	if origin == h.allowedOrigin {
		return true
	}
	slog.Warn("WebSocket origin rejected", "origin", origin, "allowed", h.allowedOrigin)
	return false
}
