package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/CaptainYami1/Flowvahub-Test/internal/domain"
	"github.com/CaptainYami1/Flowvahub-Test/internal/logger"
)

// StreakView is the daily check-in widget state
type StreakView struct {
	Streak        int         `json:"streak"`
	CarriedStreak int         `json:"carried_streak"`
	CanClaim      bool        `json:"can_claim"`
	Today         string      `json:"today"`
	Week          []DayStatus `json:"week"`
}

// RewardsService runs the earning and spending flows: claim, then credit,
// then opportunistic cleanup. Every flow returns the authoritative balance.
type RewardsService struct {
	claims      *ClaimService
	balances    *BalanceService
	janitor     *Janitor
	config      *RewardConfigProvider
	catalog     *Catalog
	redemptions RedemptionRepository
	now         Clock
	log         *slog.Logger
}

func NewRewardsService(claims *ClaimService, balances *BalanceService, janitor *Janitor, config *RewardConfigProvider, catalog *Catalog, redemptions RedemptionRepository) *RewardsService {
	return &RewardsService{
		claims:      claims,
		balances:    balances,
		janitor:     janitor,
		config:      config,
		catalog:     catalog,
		redemptions: redemptions,
		now:         time.Now,
		log:         logger.Component("rewards"),
	}
}

// WithClock replaces the time source
func (s *RewardsService) WithClock(now Clock) *RewardsService {
	s.now = now
	return s
}

func (s *RewardsService) Balance(ctx context.Context, userID string) (domain.BalanceRecord, error) {
	return s.balances.Read(ctx, userID)
}

func (s *RewardsService) RewardConfig(ctx context.Context) domain.RewardConfig {
	return s.config.Get(ctx)
}

// TodayKey is the claim key of today's daily check-in
func (s *RewardsService) TodayKey() string {
	return domain.DateKey(s.now())
}

func (s *RewardsService) HasClaimed(ctx context.Context, userID string, event domain.EventType, key string) (bool, error) {
	return s.claims.HasClaimed(ctx, userID, event, key)
}

// ClaimDaily grants today's check-in reward once per UTC day
func (s *RewardsService) ClaimDaily(ctx context.Context, userID string) (domain.ClaimResult, error) {
	return s.earn(ctx, userID, domain.EventDaily, s.TodayKey(), nil)
}

// ClaimShare grants the one-time share-your-stack reward
func (s *RewardsService) ClaimShare(ctx context.Context, userID string) (domain.ClaimResult, error) {
	return s.earn(ctx, userID, domain.EventShareStack, domain.KeyOnce, nil)
}

// ClaimTopTool grants the one-time spotlight-tool reward. The submission is
// validated before anything is written.
func (s *RewardsService) ClaimTopTool(ctx context.Context, userID string, sub domain.TopToolSubmission) (domain.ClaimResult, error) {
	if err := sub.Validate(); err != nil {
		return domain.ClaimResult{}, err
	}
	return s.earn(ctx, userID, domain.EventTopTool, domain.KeyOnce, sub.Meta())
}

// Claim runs an earning event by type. Referral claims go through the
// referral engine and are rejected here.
func (s *RewardsService) Claim(ctx context.Context, userID string, event domain.EventType) (domain.ClaimResult, error) {
	switch event {
	case domain.EventDaily:
		return s.ClaimDaily(ctx, userID)
	case domain.EventShareStack:
		return s.ClaimShare(ctx, userID)
	}
	return domain.ClaimResult{}, &domain.ValidationError{Field: "event_type", Message: "cannot be claimed directly"}
}

func (s *RewardsService) earn(ctx context.Context, userID string, event domain.EventType, key string, meta map[string]any) (domain.ClaimResult, error) {
	ctx, cancel := detach(ctx)
	defer cancel()

	status, claim, err := s.claims.TryClaim(ctx, userID, event, key, meta)
	if err != nil {
		return domain.ClaimResult{}, err
	}

	if status == domain.ClaimAlreadyClaimed {
		bal, err := s.balances.Read(ctx, userID)
		if err != nil {
			return domain.ClaimResult{}, err
		}
		return domain.ClaimResult{Status: status, Balance: bal}, nil
	}

	amount := s.config.Get(ctx).Amount(event)
	var bal domain.BalanceRecord
	if amount > 0 {
		bal, err = s.balances.ApplyDelta(ctx, userID, amount)
		if err != nil {
			if relErr := s.claims.Release(ctx, claim); relErr != nil {
				s.log.Error("failed to release claim after credit failure", "user_id", userID, "event", event, "key", key, "error", relErr)
			}
			return domain.ClaimResult{}, err
		}
	} else {
		bal, err = s.balances.Read(ctx, userID)
		if err != nil {
			return domain.ClaimResult{}, err
		}
	}

	s.janitor.Tidy(ctx, userID, domain.TableClaims)

	s.log.Info("points awarded", "user_id", userID, "event", event, "key", key, "amount", amount, "balance", bal.Balance)
	return domain.ClaimResult{Status: domain.ClaimGranted, Awarded: amount, Balance: bal}, nil
}

// Streak builds the check-in widget from the last StreakHistoryDays of claims
func (s *RewardsService) Streak(ctx context.Context, userID string) (StreakView, error) {
	today := s.now().UTC()
	since := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -StreakHistoryDays)

	history, err := s.claims.History(ctx, userID, domain.EventDaily, since)
	if err != nil {
		return StreakView{}, fmt.Errorf("load daily claims: %w", err)
	}
	dates := ClaimDates(history)
	week := WeekView(dates, today)

	return StreakView{
		Streak:        CurrentStreak(dates, today),
		CarriedStreak: CarriedStreak(dates, today),
		CanClaim:      !week[len(week)-1].Claimed,
		Today:         domain.DateKey(today),
		Week:          week,
	}, nil
}

// Catalog lists redeemable items on a tab, with statuses for the user's balance
func (s *RewardsService) Catalog(ctx context.Context, userID, tab string) ([]CatalogEntry, domain.BalanceRecord, error) {
	bal, err := s.balances.Read(ctx, userID)
	if err != nil {
		return nil, bal, err
	}
	items, err := s.catalog.List(tab, bal.Balance)
	return items, bal, err
}

// Redeem spends points on a catalog item. The balance is checked before
// any write and the debit itself is guarded atomically by the store.
func (s *RewardsService) Redeem(ctx context.Context, userID, itemName string) (domain.RedeemResult, error) {
	item, ok := s.catalog.Find(itemName)
	if !ok {
		RedemptionsTotal.WithLabelValues("unknown_item").Inc()
		return domain.RedeemResult{}, domain.ErrUnknownItem
	}
	if item.StatusFor(0) == domain.ItemComingSoon {
		RedemptionsTotal.WithLabelValues("coming_soon").Inc()
		return domain.RedeemResult{}, &domain.ValidationError{Field: "item", Message: "this reward is coming soon"}
	}

	ctx, cancel := detach(ctx)
	defer cancel()

	current, err := s.balances.Read(ctx, userID)
	if err != nil {
		return domain.RedeemResult{}, err
	}
	if current.Balance < item.Points {
		RedemptionsTotal.WithLabelValues("insufficient").Inc()
		return domain.RedeemResult{}, &domain.InsufficientBalanceError{UserID: userID, Available: current.Balance, Requested: item.Points}
	}

	bal, err := s.balances.ApplyDelta(ctx, userID, -item.Points)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientBalance) {
			RedemptionsTotal.WithLabelValues("insufficient").Inc()
		}
		return domain.RedeemResult{}, err
	}

	rec := &domain.RedemptionRecord{UserID: userID, ItemName: item.Name, PointsSpent: item.Points}
	if err := s.redemptions.Insert(ctx, rec); err != nil {
		// undo the debit, it has no redemption row
		if _, refundErr := s.balances.ApplyDelta(ctx, userID, item.Points); refundErr != nil {
			s.log.Error("failed to refund redemption", "user_id", userID, "item", item.Name, "error", refundErr)
		}
		RedemptionsTotal.WithLabelValues("error").Inc()
		return domain.RedeemResult{}, fmt.Errorf("record redemption: %w", err)
	}

	RedemptionsTotal.WithLabelValues("ok").Inc()
	s.log.Info("reward redeemed", "user_id", userID, "item", item.Name, "points", item.Points, "balance", bal.Balance)
	return domain.RedeemResult{Redemption: *rec, Balance: bal}, nil
}

func (s *RewardsService) Redemptions(ctx context.Context, userID string, limit int) ([]domain.RedemptionRecord, error) {
	return s.redemptions.ListByUser(ctx, userID, limit)
}
