package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/fiesta-dev/fiesta/internal/types"
	"github.com/fiesta-dev/fiesta/internal/utils"
)

const (
	wsWriteWait      = 10 * time.Second
	wsPongWait       = 60 * time.Second
	wsPingPeriod     = (wsPongWait * 9) / 10
	wsMaxMessageSize = 512
)

// WebSocket subscribes the caller to a party's live feed. Authorization is
// the same as reading the party: creator or participant.
func (h *Handler) WebSocket(ctx *gin.Context) {
	actor, err := utils.CurrentIdentity(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	partyID, ok := uintParam(ctx, "party_id")
	if !ok {
		return
	}

	if _, err := h.Engine.GetParty(ctx.Request.Context(), actor, partyID); err != nil {
		engineError(ctx, err)
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, allowed := range types.AllowedOrigins {
				if origin == allowed {
					return true
				}
			}
			return false
		},
	}

	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		slog.Warn("WebSocket upgrade failed", "party_id", partyID, "error", err)
		return
	}

	conn.SetReadLimit(wsMaxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(wsPongWait)); err != nil {
		conn.Close()
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	h.Hub.Register(partyID, conn)

	defer func() {
		h.Hub.Unregister(partyID, conn)
		conn.Close()
		slog.Debug("WebSocket connection closed", "party_id", partyID, "user_id", actor.ID)
	}()

	if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
		return
	}
	if err := conn.WriteJSON(map[string]interface{}{
		"type":     "connected",
		"party_id": partyID,
	}); err != nil {
		slog.Warn("Failed to send welcome message", "party_id", partyID, "error", err)
		return
	}

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	go func() {
		for range ticker.C {
			if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}()

	for {
		if err := conn.SetReadDeadline(time.Now().Add(wsPongWait)); err != nil {
			break
		}

		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("WebSocket error", "party_id", partyID, "error", err)
			}
			break
		}
	}
}
