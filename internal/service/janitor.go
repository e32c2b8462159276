package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/CaptainYami1/Flowvahub-Test/internal/domain"
	"github.com/CaptainYami1/Flowvahub-Test/internal/logger"
)

// Janitor deletes duplicate rows left by racing writers, always keeping
// the lowest id of each group. Failures are logged and never surfaced to
// the user flow that triggered the cleanup.
type Janitor struct {
	balances BalanceRepository
	claims   ClaimRepository
	log      *slog.Logger
}

func NewJanitor(balances BalanceRepository, claims ClaimRepository) *Janitor {
	return &Janitor{
		balances: balances,
		claims:   claims,
		log:      logger.Component("janitor"),
	}
}

// Dedupe removes duplicates of one user's rows in table and returns how
// many rows were deleted.
func (j *Janitor) Dedupe(ctx context.Context, userID string, table domain.Table) (int, error) {
	var (
		ids []int64
		err error
	)

	switch table {
	case domain.TableBalances:
		var rows []domain.BalanceRecord
		rows, err = j.balances.ListByUser(ctx, userID)
		ids = duplicateBalanceIDs(rows)
	case domain.TableClaims:
		var rows []domain.ClaimRecord
		rows, err = j.claims.ListAllByUser(ctx, userID)
		ids = duplicateClaimIDs(rows)
	default:
		return 0, fmt.Errorf("%w: %q", domain.ErrUnknownTable, table)
	}
	if err != nil {
		return 0, fmt.Errorf("dedupe %s: %w", table, err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	var removed int64
	if table == domain.TableBalances {
		removed, err = j.balances.DeleteByIDs(ctx, ids)
	} else {
		removed, err = j.claims.DeleteByIDs(ctx, ids)
	}
	if err != nil {
		return 0, fmt.Errorf("dedupe %s: %w", table, err)
	}

	JanitorRemoved.WithLabelValues(string(table)).Add(float64(removed))
	j.log.Warn("removed duplicate rows", "table", table, "user_id", userID, "ids", ids, "removed", removed)
	return int(removed), nil
}

// Tidy runs Dedupe and only logs failures
func (j *Janitor) Tidy(ctx context.Context, userID string, table domain.Table) {
	if _, err := j.Dedupe(ctx, userID, table); err != nil {
		j.log.Warn("dedupe failed", "table", table, "user_id", userID, "error", err)
	}
}

// Sweep dedupes the balances of every user that currently owns more than one row
func (j *Janitor) Sweep(ctx context.Context) (int, error) {
	users, err := j.balances.UsersWithDuplicates(ctx, 500)
	if err != nil {
		return 0, fmt.Errorf("sweep: %w", err)
	}

	total := 0
	for _, u := range users {
		n, err := j.Dedupe(ctx, u, domain.TableBalances)
		if err != nil {
			j.log.Warn("sweep dedupe failed", "user_id", u, "error", err)
			continue
		}
		total += n
	}
	return total, nil
}

// Start runs Sweep every interval until ctx is cancelled
func (j *Janitor) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n, err := j.Sweep(ctx); err != nil {
					j.log.Error("janitor sweep failed", "error", err)
				} else if n > 0 {
					j.log.Info("janitor sweep finished", "removed", n)
				}
			}
		}
	}()
}

// rows must be ordered by id ascending
func duplicateBalanceIDs(rows []domain.BalanceRecord) []int64 {
	if len(rows) < 2 {
		return nil
	}
	ids := make([]int64, 0, len(rows)-1)
	for _, r := range rows[1:] {
		ids = append(ids, r.ID)
	}
	return ids
}

// Claims are grouped by (event_type, key); rows must be ordered by id ascending.
func duplicateClaimIDs(rows []domain.ClaimRecord) []int64 {
	type group struct {
		event domain.EventType
		key   string
	}
	seen := make(map[group]bool, len(rows))
	var ids []int64
	for _, r := range rows {
		g := group{r.EventType, r.Key}
		if seen[g] {
			ids = append(ids, r.ID)
			continue
		}
		seen[g] = true
	}
	return ids
}
