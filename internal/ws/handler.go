package ws

import (
	"context"
	"net/http"

	"github.com/CaptainYami1/Flowvahub-Test/internal/domain"
	"github.com/CaptainYami1/Flowvahub-Test/internal/logger"
	"github.com/CaptainYami1/Flowvahub-Test/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// SnapshotFunc loads the balance sent right after the socket opens
type SnapshotFunc func(ctx context.Context, userID string) (domain.BalanceRecord, error)

// HandleWS upgrades /ws?token=... into a balance subscription
func HandleWS(hub *Hub, allowedOrigin string, snapshot SnapshotFunc) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == allowedOrigin
		},
	}

	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
			return
		}

		raw, err := service.ParseJWT(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		// published records carry the canonical id
		userID, err := domain.NormalizeUserID(raw)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		initial := [][]byte{encode(Message{Type: MsgReady})}
		if snapshot != nil {
			if rec, err := snapshot(c.Request.Context(), userID); err == nil {
				initial = append(initial, BalanceFrame(rec))
			} else {
				logger.Warn("ws initial snapshot failed", "user_id", userID, "error", err)
			}
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("ws upgrade error", "error", err)
			return
		}

		client := NewClient(userID, conn, hub)
		go client.Run(initial...)
	}
}
