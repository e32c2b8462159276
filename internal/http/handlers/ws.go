package handlers

import (
	"github.com/CaptainYami1/Flowvahub-Test/internal/ws"

	"github.com/gin-gonic/gin"
)

// WS streams the caller's balance snapshots, starting with the current one
func (h *Handler) WS(hub *ws.Hub, allowedOrigin string) gin.HandlerFunc {
	return ws.HandleWS(hub, allowedOrigin, h.Ledger.Balances.Read)
}
