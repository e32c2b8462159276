package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/CaptainYami1/Flowvahub-Test/internal/config"
	"github.com/CaptainYami1/Flowvahub-Test/internal/db"
	"github.com/CaptainYami1/Flowvahub-Test/internal/domain"
	"github.com/CaptainYami1/Flowvahub-Test/internal/logger"
	"github.com/CaptainYami1/Flowvahub-Test/internal/repository"
	"github.com/CaptainYami1/Flowvahub-Test/internal/service"

	"github.com/google/uuid"
)

// Prints a token for a new (or given) user id. With a postgres store the
// user's referral code is created too.
func main() {
	userFlag := flag.String("user", "", "user id (default: a new UUID)")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	service.InitJWT(cfg.JWTSecret)

	userID := uuid.NewString()
	if *userFlag != "" {
		id, err := domain.NormalizeUserID(*userFlag)
		if err != nil {
			logger.Fatal("invalid user id", "error", err)
		}
		userID = id
	}

	if cfg.StoreDriver == config.DriverPostgres {
		pool := db.Connect(cfg.DatabaseURL)
		defer pool.Close()

		ctx := context.Background()
		ledger := service.NewLedger(service.Stores{
			Balances:     repository.NewBalanceRepository(pool),
			Claims:       repository.NewClaimRepository(pool),
			Referrals:    repository.NewReferralRepository(pool),
			Redemptions:  repository.NewRedemptionRepository(pool),
			RewardConfig: repository.NewRewardConfigRepository(pool),
		}, service.LedgerOptions{DefaultRewards: cfg.Rewards, ReferralBaseURL: cfg.ReferralBaseURL})
		referrals := ledger.Referrals

		code, err := referrals.EnsureCode(ctx, userID)
		if err != nil {
			logger.Fatal("failed to create referral code", "user_id", userID, "error", err)
		}
		bal, err := ledger.Balances.Read(ctx, userID)
		if err != nil {
			logger.Fatal("failed to read balance", "user_id", userID, "error", err)
		}
		fmt.Printf("referral_code=%s link=%s balance=%d\n", code, referrals.Link(code), bal.Balance)
	}

	token, err := service.GenerateJWT(userID, *ttl)
	if err != nil {
		logger.Fatal("failed to generate token", "error", err)
	}
	fmt.Printf("user_id=%s\n", userID)
	fmt.Printf("token=%s\n", token)
}
