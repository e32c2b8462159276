package http

import (
	"github.com/CaptainYami1/Flowvahub-Test/internal/config"
	"github.com/CaptainYami1/Flowvahub-Test/internal/http/handlers"
	"github.com/CaptainYami1/Flowvahub-Test/internal/http/middleware"
	"github.com/CaptainYami1/Flowvahub-Test/internal/service"
	"github.com/CaptainYami1/Flowvahub-Test/internal/ws"

	"github.com/gin-gonic/gin"
)

// Deps is everything the routes are served from
type Deps struct {
	Ledger *service.Ledger
	Hub    *ws.Hub
	Config *config.Config
	// readiness checks by name ("database", "redis")
	Checks map[string]handlers.Pinger
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	cfg := d.Config
	h := handlers.NewHandler(d.Ledger)
	healthHandler := handlers.NewHealthHandler(cfg.AppVersion, d.Checks)

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(cfg.APIRateLimit, cfg.APIRateWindow))
	registerAPIRoutes(v1, h, cfg)

	// Balance push
	r.GET("/ws", h.WS(d.Hub, cfg.AllowedOrigin))
}

func registerAPIRoutes(api *gin.RouterGroup, h *handlers.Handler, cfg *config.Config) {
	api.GET("/rewards/config", h.RewardConfig)

	auth := api.Group("")
	auth.Use(middleware.JWT())

	// per-user limiter for every write
	claimRL := middleware.ClaimRateLimit(cfg.ClaimRateLimit, cfg.ClaimRateWindow)

	auth.GET("/me", h.Me)
	auth.GET("/balance", h.Balance)
	auth.GET("/streak", h.Streak)

	claims := auth.Group("/claims")
	{
		claims.GET("/status", h.ClaimStatus)
		claims.POST("/daily", claimRL, h.ClaimDaily)
		claims.POST("/share", claimRL, h.ClaimShare)
		claims.POST("/top-tool", claimRL, h.ClaimTopTool)
	}

	referral := auth.Group("/referral")
	{
		referral.GET("/code", h.GetReferralCode)
		referral.GET("/link", h.GetReferralLink)
		referral.GET("/stats", h.GetReferralStats)
		referral.GET("/list", h.GetReferrals)
		referral.POST("/apply", claimRL, h.ApplyReferralCode)
	}

	auth.GET("/redeemables", h.Redeemables)
	auth.POST("/redeem", claimRL, h.Redeem)
	auth.GET("/redemptions", h.Redemptions)
}
