package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Redeemables lists the catalog for ?tab=all|unlocked|locked|coming_soon
func (h *Handler) Redeemables(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	items, bal, err := h.Ledger.Rewards.Catalog(c.Request.Context(), userID, c.Query("tab"))
	if err != nil {
		respondError(c, err, "failed to load rewards")
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": bal.Balance, "items": items})
}

type RedeemRequest struct {
	Item string `json:"item" binding:"required"`
}

func (h *Handler) Redeem(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "item is required"})
		return
	}

	res, err := h.Ledger.Rewards.Redeem(c.Request.Context(), userID, req.Item)
	if err != nil {
		respondError(c, err, "failed to redeem reward")
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Redemptions(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	list, err := h.Ledger.Rewards.Redemptions(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, err, "failed to load redemptions")
		return
	}
	c.JSON(http.StatusOK, gin.H{"redemptions": list})
}
