package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/CaptainYami1/Flowvahub-Test/internal/client"
	"github.com/CaptainYami1/Flowvahub-Test/internal/domain"
	"github.com/CaptainYami1/Flowvahub-Test/internal/logger"
	"github.com/CaptainYami1/Flowvahub-Test/internal/service"
	"github.com/CaptainYami1/Flowvahub-Test/internal/session"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Smoke test against a running server: logs a user in, claims the daily
// reward and prints what the session saw.
func main() {
	_ = godotenv.Load()

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	baseURL := flag.String("url", "http://localhost:"+port, "server base url")
	userFlag := flag.String("user", "", "user id (default: a new UUID)")
	wait := flag.Duration("wait", 2*time.Second, "time to wait for pushed updates")
	flag.Parse()

	logger.Init(os.Getenv("LOG_LEVEL"), false)

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		logger.Fatal("JWT_SECRET not set")
	}
	service.InitJWT(secret)

	userID := *userFlag
	if userID == "" {
		userID = uuid.NewString()
	}
	token, err := service.GenerateJWT(userID, time.Hour)
	if err != nil {
		logger.Fatal("generate token", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s := session.New(client.Connector(*baseURL), session.WithOnChange(func(st session.State) {
		fmt.Printf("state: user=%s confirmed=%d pending=%d display=%d\n",
			st.UserID, st.Confirmed.Balance, st.Pending, st.Display)
	}))

	if err := s.HandleAuth(ctx, session.AuthEvent{Kind: session.AuthLogin, UserID: userID, Token: token}); err != nil {
		logger.Fatal("login failed", "error", err)
	}
	defer s.Logout()

	cfg := s.RewardConfig()
	fmt.Printf("rewards: daily=%d referral=%d share=%d top_tool=%d\n",
		cfg.DailyReward, cfg.ReferralReward, cfg.ShareStackReward, cfg.TopToolReward)

	can, err := s.CanClaim(ctx, domain.EventDaily)
	if err != nil {
		logger.Fatal("claim status", "error", err)
	}
	fmt.Printf("daily claimable: %v\n", can)

	res, err := s.ClaimDaily(ctx)
	if err != nil {
		logger.Fatal("claim daily", "error", err)
	}
	fmt.Printf("claim: status=%s awarded=%d balance=%d\n", res.Status, res.Awarded, res.Balance.Balance)

	streak, err := client.New(*baseURL, token).Streak(ctx)
	if err != nil {
		logger.Fatal("streak", "error", err)
	}
	fmt.Printf("streak: %d (carried %d), can_claim=%v\n", streak.Streak, streak.CarriedStreak, streak.CanClaim)
	for _, d := range streak.Week {
		mark := " "
		if d.Claimed {
			mark = "x"
		}
		fmt.Printf("  [%s] %s %s\n", mark, d.Weekday, d.Date)
	}

	time.Sleep(*wait)
	fmt.Printf("final display balance: %d\n", s.Display())
}
