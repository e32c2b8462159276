package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/CaptainYami1/Flowvahub-Test/internal/domain"
	"github.com/CaptainYami1/Flowvahub-Test/internal/logger"

	"github.com/google/uuid"
)

// Code lengths tried in order; the full 32 hex chars cannot collide
var codeLengths = []int{8, 12, 32}

// ReferralService attributes referral credit exactly once per referred user
type ReferralService struct {
	repo     ReferralRepository
	claims   *ClaimService
	balances *BalanceService
	config   *RewardConfigProvider
	baseURL  string
	log      *slog.Logger
}

func NewReferralService(repo ReferralRepository, claims *ClaimService, balances *BalanceService, config *RewardConfigProvider, baseURL string) *ReferralService {
	return &ReferralService{
		repo:     repo,
		claims:   claims,
		balances: balances,
		config:   config,
		baseURL:  strings.TrimRight(baseURL, "/"),
		log:      logger.Component("referral"),
	}
}

// CodeCandidates derives the referral codes a user may get, shortest first
func CodeCandidates(userID string) ([]string, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, &domain.ValidationError{Field: "user_id", Message: "must be a UUID"}
	}
	hex := strings.ReplaceAll(id.String(), "-", "")

	out := make([]string, 0, len(codeLengths))
	for _, n := range codeLengths {
		out = append(out, hex[:n])
	}
	return out, nil
}

// EnsureCode returns the user's code, creating it on first use
func (s *ReferralService) EnsureCode(ctx context.Context, userID string) (string, error) {
	code, err := s.repo.CodeByUser(ctx, userID)
	if err == nil {
		return code, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return "", fmt.Errorf("get referral code: %w", err)
	}

	candidates, err := CodeCandidates(userID)
	if err != nil {
		return "", err
	}
	for _, c := range candidates {
		err := s.repo.InsertCode(ctx, userID, c)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, domain.ErrDuplicate) {
			return "", fmt.Errorf("store referral code: %w", err)
		}
		// a concurrent request may have stored our code already
		if existing, err := s.repo.CodeByUser(ctx, userID); err == nil {
			return existing, nil
		}
		s.log.Debug("referral code collision", "user_id", userID, "code", c)
	}
	return "", domain.ErrConflict
}

// Link builds the shareable referral URL for a code
func (s *ReferralService) Link(code string) string {
	return s.baseURL + "/?ref=" + code
}

// Referrals lists the users a referrer brought, newest first
func (s *ReferralService) Referrals(ctx context.Context, referrerID string) ([]domain.ReferralRecord, error) {
	refs, err := s.repo.ListByReferrer(ctx, referrerID)
	if err != nil {
		return nil, fmt.Errorf("list referrals: %w", err)
	}
	return refs, nil
}

// Stats returns how many users a referrer brought and the points that earned
func (s *ReferralService) Stats(ctx context.Context, referrerID string) (domain.ReferralStats, error) {
	n, err := s.repo.CountByReferrer(ctx, referrerID)
	if err != nil {
		return domain.ReferralStats{}, fmt.Errorf("count referrals: %w", err)
	}
	reward := s.config.Get(ctx).ReferralReward
	return domain.ReferralStats{Referrals: n, PointsEarned: int64(n) * reward}, nil
}

// Attribute credits the owner of code for bringing referredID.
// The referred user can be attributed at most once, whatever the code.
func (s *ReferralService) Attribute(ctx context.Context, referredID, code string) (domain.AttributionResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.AttributionResult{}, &domain.ValidationError{Field: "code", Message: "referral code is required"}
	}

	referrerID, err := s.repo.UserByCode(ctx, code)
	if errors.Is(err, domain.ErrNotFound) {
		ReferralAttributions.WithLabelValues("unknown_code").Inc()
		return domain.AttributionResult{}, domain.ErrUnknownReferralCode
	}
	if err != nil {
		return domain.AttributionResult{}, fmt.Errorf("resolve referral code: %w", err)
	}
	if referrerID == referredID {
		ReferralAttributions.WithLabelValues("self").Inc()
		return domain.AttributionResult{}, domain.ErrSelfReferral
	}

	already := domain.AttributionResult{Status: domain.AttributionAlreadyAttributed}

	ctx, cancel := detach(ctx)
	defer cancel()

	ref := &domain.ReferralRecord{ReferrerID: referrerID, ReferredUserID: referredID, CodeUsed: code}
	if err := s.repo.InsertReferral(ctx, ref); err != nil {
		if !errors.Is(err, domain.ErrDuplicate) {
			return domain.AttributionResult{}, fmt.Errorf("insert referral: %w", err)
		}
		// Already referred. Only the same referrer may go on to the claim,
		// which lets a credit that failed earlier be retried.
		existing, err := s.repo.ReferralOf(ctx, referredID)
		if err != nil {
			return domain.AttributionResult{}, fmt.Errorf("load referral: %w", err)
		}
		if existing.ReferrerID != referrerID {
			ReferralAttributions.WithLabelValues(string(domain.AttributionAlreadyAttributed)).Inc()
			return already, nil
		}
	}

	status, claim, err := s.claims.TryClaim(ctx, referrerID, domain.EventReferral, referredID, map[string]any{"code": code})
	if err != nil {
		return domain.AttributionResult{}, err
	}
	if status == domain.ClaimAlreadyClaimed {
		ReferralAttributions.WithLabelValues(string(domain.AttributionAlreadyAttributed)).Inc()
		return already, nil
	}

	reward := s.config.Get(ctx).ReferralReward
	if reward > 0 {
		if _, err := s.balances.ApplyDelta(ctx, referrerID, reward); err != nil {
			if relErr := s.claims.Release(ctx, claim); relErr != nil {
				s.log.Error("failed to release referral claim", "referrer_id", referrerID, "referred_id", referredID, "error", relErr)
			}
			return domain.AttributionResult{}, fmt.Errorf("credit referrer: %w", err)
		}
	}

	ReferralAttributions.WithLabelValues(string(domain.AttributionCredited)).Inc()
	s.log.Info("referral credited", "referrer_id", referrerID, "referred_id", referredID, "reward", reward)
	return domain.AttributionResult{
		Status:     domain.AttributionCredited,
		ReferrerID: referrerID,
		Awarded:    reward,
	}, nil
}
