package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/CaptainYami1/Flowvahub-Test/internal/domain"
	"github.com/CaptainYami1/Flowvahub-Test/internal/logger"
)

// Row lookups retried when the authoritative row disappears under us
const maxRowAttempts = 2

// BalanceService owns the per-user point total
type BalanceService struct {
	repo     BalanceRepository
	janitor  *Janitor
	notifier BalanceNotifier
	log      *slog.Logger
}

// NewBalanceService creates a new balance service. notifier may be nil.
func NewBalanceService(repo BalanceRepository, janitor *Janitor, notifier BalanceNotifier) *BalanceService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &BalanceService{
		repo:     repo,
		janitor:  janitor,
		notifier: notifier,
		log:      logger.Component("balance"),
	}
}

// Read returns the user's authoritative balance, creating it at zero on first use
func (s *BalanceService) Read(ctx context.Context, userID string) (domain.BalanceRecord, error) {
	rec, err := s.authoritative(ctx, userID)
	if err != nil {
		return domain.BalanceRecord{}, fmt.Errorf("read balance: %w", err)
	}
	return rec, nil
}

// ApplyDelta atomically adds delta to the authoritative row.
// Errors: domain.ErrInvalidAmount for a zero delta, an
// *domain.InsufficientBalanceError when the result would be negative and
// domain.ErrConflict when the row vanished on every attempt.
func (s *BalanceService) ApplyDelta(ctx context.Context, userID string, delta int64) (domain.BalanceRecord, error) {
	if delta == 0 {
		return domain.BalanceRecord{}, domain.ErrInvalidAmount
	}

	direction := "credit"
	if delta < 0 {
		direction = "debit"
	}

	for attempt := 0; attempt < maxRowAttempts; attempt++ {
		row, err := s.authoritative(ctx, userID)
		if err != nil {
			BalanceMutations.WithLabelValues(direction, "error").Inc()
			return domain.BalanceRecord{}, fmt.Errorf("apply delta: %w", err)
		}

		updated, err := s.repo.Increment(ctx, row.ID, delta)
		switch {
		case err == nil:
			BalanceMutations.WithLabelValues(direction, "ok").Inc()
			s.notifier.PublishBalance(ctx, updated)
			return updated, nil
		case errors.Is(err, domain.ErrNotFound):
			s.log.Warn("authoritative balance row vanished", "user_id", userID, "row_id", row.ID, "attempt", attempt+1)
			continue
		case errors.Is(err, domain.ErrInsufficientBalance):
			BalanceMutations.WithLabelValues(direction, "insufficient").Inc()
			return domain.BalanceRecord{}, err
		default:
			BalanceMutations.WithLabelValues(direction, "error").Inc()
			return domain.BalanceRecord{}, fmt.Errorf("apply delta: %w", err)
		}
	}

	BalanceMutations.WithLabelValues(direction, "conflict").Inc()
	return domain.BalanceRecord{}, domain.ErrConflict
}

// authoritative returns the lowest-id row of the user. Missing rows are
// created at zero; extra rows are handed to the janitor.
func (s *BalanceService) authoritative(ctx context.Context, userID string) (domain.BalanceRecord, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return domain.BalanceRecord{}, err
	}

	if len(rows) == 0 {
		if _, err := s.repo.Insert(ctx, userID, 0); err != nil {
			return domain.BalanceRecord{}, err
		}
		// another session may have inserted at the same time
		rows, err = s.repo.ListByUser(ctx, userID)
		if err != nil {
			return domain.BalanceRecord{}, err
		}
		if len(rows) == 0 {
			return domain.BalanceRecord{}, domain.ErrConflict
		}
	}

	if len(rows) > 1 {
		s.janitor.Tidy(ctx, userID, domain.TableBalances)
	}
	return rows[0], nil
}
