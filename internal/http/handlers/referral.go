package handlers

import (
	"net/http"

	"github.com/CaptainYami1/Flowvahub-Test/internal/domain"

	"github.com/gin-gonic/gin"
)

// GetReferralCode returns user's referral code (generates if needed)
func (h *Handler) GetReferralCode(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	code, err := h.Ledger.Referrals.EnsureCode(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "failed to get referral code")
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": code})
}

// GetReferralLink returns the full referral link for sharing
func (h *Handler) GetReferralLink(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	code, err := h.Ledger.Referrals.EnsureCode(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "failed to get referral code")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": code,
		"link": h.Ledger.Referrals.Link(code),
	})
}

// GetReferralStats returns user's referral statistics
func (h *Handler) GetReferralStats(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	stats, err := h.Ledger.Referrals.Stats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "failed to get stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetReferrals lists the users the current user referred
func (h *Handler) GetReferrals(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	refs, err := h.Ledger.Referrals.Referrals(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "failed to list referrals")
		return
	}
	if refs == nil {
		refs = []domain.ReferralRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"referrals": refs})
}

type ApplyReferralRequest struct {
	Code string `json:"code" binding:"required"`
}

// ApplyReferralCode attributes the current user to the owner of code.
// Attributing a second time answers 200 with status already_attributed.
func (h *Handler) ApplyReferralCode(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req ApplyReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code is required"})
		return
	}

	res, err := h.Ledger.Referrals.Attribute(c.Request.Context(), userID, req.Code)
	if err != nil {
		respondError(c, err, "failed to apply referral")
		return
	}
	c.JSON(http.StatusOK, res)
}
