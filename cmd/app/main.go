package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CaptainYami1/Flowvahub-Test/internal/config"
	"github.com/CaptainYami1/Flowvahub-Test/internal/db"
	"github.com/CaptainYami1/Flowvahub-Test/internal/eventbus"
	httpServer "github.com/CaptainYami1/Flowvahub-Test/internal/http"
	"github.com/CaptainYami1/Flowvahub-Test/internal/http/handlers"
	"github.com/CaptainYami1/Flowvahub-Test/internal/http/middleware"
	"github.com/CaptainYami1/Flowvahub-Test/internal/logger"
	"github.com/CaptainYami1/Flowvahub-Test/internal/repository"
	"github.com/CaptainYami1/Flowvahub-Test/internal/repository/memory"
	"github.com/CaptainYami1/Flowvahub-Test/internal/service"
	"github.com/CaptainYami1/Flowvahub-Test/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	service.InitJWT(cfg.JWTSecret)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	checks := map[string]handlers.Pinger{}

	var stores service.Stores
	switch cfg.StoreDriver {
	case config.DriverMemory:
		logger.Warn("using in-memory store, data is lost on restart")
		mem := memory.New()
		stores = service.Stores{
			Balances:     mem.Balances,
			Claims:       mem.Claims,
			Referrals:    mem.Referrals,
			Redemptions:  mem.Redemptions,
			RewardConfig: mem.RewardConfig,
		}
	default:
		dbPool := db.Connect(cfg.DatabaseURL)
		defer dbPool.Close()
		checks["database"] = dbPool.Ping
		stores = service.Stores{
			Balances:     repository.NewBalanceRepository(dbPool),
			Claims:       repository.NewClaimRepository(dbPool),
			Referrals:    repository.NewReferralRepository(dbPool),
			Redemptions:  repository.NewRedemptionRepository(dbPool),
			RewardConfig: repository.NewRewardConfigRepository(dbPool),
		}
	}

	bus := eventbus.New()
	ledger := service.NewLedger(stores, service.LedgerOptions{
		DefaultRewards:  cfg.Rewards,
		ReferralBaseURL: cfg.ReferralBaseURL,
		Notifier:        bus,
	})

	hub := ws.NewHub()
	hub.Consume(bus.Subscribe(ctx, 256))

	// Redis: shared by the rate limiters and the cross-instance balance bridge
	if rdb := middleware.InitRedisRateLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); rdb != nil {
		defer rdb.Close()
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }

		bridge := ws.NewRedisBridge(rdb, hub)
		bridge.Forward(ctx, bus.Subscribe(ctx, 256))
		go func() {
			if err := bridge.Run(ctx); err != nil {
				logger.Error("redis bridge stopped", "error", err)
			}
		}()
	}

	if cfg.JanitorInterval > 0 {
		ledger.Janitor.Start(ctx, cfg.JanitorInterval)
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.Metrics())

	// CORS for production (frontend on different domain)
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" && (cfg.AllowedOrigin == "" || origin == cfg.AllowedOrigin) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		}
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	httpServer.RegisterRoutes(r, httpServer.Deps{
		Ledger: ledger,
		Hub:    hub,
		Config: cfg,
		Checks: checks,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "store", cfg.StoreDriver, "version", cfg.AppVersion)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
