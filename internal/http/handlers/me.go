package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Me returns the caller's identity, balance and referral code
func (h *Handler) Me(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	ctx := c.Request.Context()
	bal, err := h.Ledger.Balances.Read(ctx, userID)
	if err != nil {
		respondError(c, err, "failed to load balance")
		return
	}
	code, err := h.Ledger.Referrals.EnsureCode(ctx, userID)
	if err != nil {
		respondError(c, err, "failed to get referral code")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":            userID,
		"balance":       bal.Balance,
		"referral_code": code,
	})
}

func (h *Handler) Balance(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	bal, err := h.Ledger.Balances.Read(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "failed to load balance")
		return
	}
	c.JSON(http.StatusOK, bal)
}

func (h *Handler) RewardConfig(c *gin.Context) {
	c.JSON(http.StatusOK, h.Ledger.Config.Get(c.Request.Context()))
}
