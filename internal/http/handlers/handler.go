package handlers

import (
	"errors"
	"net/http"

	"github.com/CaptainYami1/Flowvahub-Test/internal/domain"
	"github.com/CaptainYami1/Flowvahub-Test/internal/http/middleware"
	"github.com/CaptainYami1/Flowvahub-Test/internal/logger"
	"github.com/CaptainYami1/Flowvahub-Test/internal/service"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Ledger *service.Ledger
}

func NewHandler(ledger *service.Ledger) *Handler {
	return &Handler{Ledger: ledger}
}

// getUserID извлекает user_id из контекста Gin
func getUserID(c *gin.Context) (string, bool) {
	raw := c.GetString(middleware.UserIDKey)
	if raw == "" {
		return "", false
	}
	id, err := domain.NormalizeUserID(raw)
	if err != nil {
		return "", false
	}
	return id, true
}

// respondError maps ledger errors onto HTTP statuses. Anything not caused
// by the caller is logged and reported as msg.
func respondError(c *gin.Context, err error, msg string) {
	var v *domain.ValidationError
	var ib *domain.InsufficientBalanceError

	switch {
	case errors.As(err, &v):
		c.JSON(http.StatusBadRequest, gin.H{"error": v.Message, "field": v.Field})
	case errors.As(err, &ib):
		c.JSON(http.StatusConflict, gin.H{
			"error":     "insufficient balance",
			"available": ib.Available,
			"requested": ib.Requested,
		})
	case errors.Is(err, domain.ErrInsufficientBalance):
		c.JSON(http.StatusConflict, gin.H{"error": "insufficient balance"})
	case errors.Is(err, domain.ErrUnknownItem), errors.Is(err, domain.ErrUnknownReferralCode):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrSelfReferral), errors.Is(err, domain.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "please retry"})
	default:
		logger.WithContext(c.Request.Context()).Error(msg, "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}
