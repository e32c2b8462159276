package handlers

import (
	"net/http"

	"github.com/CaptainYami1/Flowvahub-Test/internal/domain"

	"github.com/gin-gonic/gin"
)

// ClaimDaily grants today's check-in. A repeat returns 200 with status already_claimed.
func (h *Handler) ClaimDaily(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	res, err := h.Ledger.Rewards.ClaimDaily(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "failed to claim daily reward")
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) ClaimShare(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	res, err := h.Ledger.Rewards.ClaimShare(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "failed to claim share reward")
		return
	}
	c.JSON(http.StatusOK, res)
}

// ClaimTopTool takes a multipart form: email and a screenshot file
func (h *Handler) ClaimTopTool(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, domain.MaxScreenshotBytes+1<<20)

	sub := domain.TopToolSubmission{Email: c.PostForm("email")}
	if fh, err := c.FormFile("screenshot"); err == nil {
		sub.ScreenshotName = fh.Filename
		sub.ScreenshotType = fh.Header.Get("Content-Type")
		sub.ScreenshotSize = fh.Size
	}

	res, err := h.Ledger.Rewards.ClaimTopTool(c.Request.Context(), userID, sub)
	if err != nil {
		respondError(c, err, "failed to claim top tool reward")
		return
	}
	c.JSON(http.StatusOK, res)
}

// ClaimStatus answers ?event=daily|referral|share_stack|top_tool&key=...
// The key defaults to today for daily and to the single-shot key otherwise.
func (h *Handler) ClaimStatus(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	event := domain.EventType(c.Query("event"))
	if !event.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown event type", "field": "event"})
		return
	}
	key := c.Query("key")
	if key == "" {
		key = domain.KeyOnce
		if event == domain.EventDaily {
			key = h.Ledger.Rewards.TodayKey()
		}
	}

	claimed, err := h.Ledger.Rewards.HasClaimed(c.Request.Context(), userID, event, key)
	if err != nil {
		respondError(c, err, "failed to check claim")
		return
	}
	c.JSON(http.StatusOK, gin.H{"event": event, "key": key, "claimed": claimed})
}

func (h *Handler) Streak(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	view, err := h.Ledger.Rewards.Streak(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "failed to load streak")
		return
	}
	c.JSON(http.StatusOK, view)
}
