package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/CaptainYami1/Flowvahub-Test/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BalanceRepository struct {
	db *pgxpool.Pool
}

func NewBalanceRepository(db *pgxpool.Pool) *BalanceRepository {
	return &BalanceRepository{db: db}
}

// ListByUser returns every physical balance row of a user, lowest id first
func (r *BalanceRepository) ListByUser(ctx context.Context, userID string) ([]domain.BalanceRecord, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, balance, version, updated_at
		 FROM balances
		 WHERE user_id = $1
		 ORDER BY id ASC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.BalanceRecord
	for rows.Next() {
		var b domain.BalanceRecord
		if err := rows.Scan(&b.ID, &b.UserID, &b.Balance, &b.Version, &b.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

// Insert creates a balance row. There is no unique index on user_id, so
// two racing inserts both succeed.
func (r *BalanceRepository) Insert(ctx context.Context, userID string, balance int64) (domain.BalanceRecord, error) {
	b := domain.BalanceRecord{UserID: userID, Balance: balance}
	err := r.db.QueryRow(ctx,
		`INSERT INTO balances (user_id, balance)
		 VALUES ($1, $2)
		 RETURNING id, version, updated_at`,
		userID, balance,
	).Scan(&b.ID, &b.Version, &b.UpdatedAt)
	return b, err
}

// Increment atomically adds delta to one row and bumps its version.
// Returns domain.ErrNotFound if the row is gone and
// *domain.InsufficientBalanceError if the result would be negative.
func (r *BalanceRepository) Increment(ctx context.Context, id int64, delta int64) (domain.BalanceRecord, error) {
	var b domain.BalanceRecord
	err := r.db.QueryRow(ctx,
		`UPDATE balances
		 SET balance = balance + $1, version = version + 1, updated_at = NOW()
		 WHERE id = $2 AND balance + $1 >= 0
		 RETURNING id, user_id, balance, version, updated_at`,
		delta, id,
	).Scan(&b.ID, &b.UserID, &b.Balance, &b.Version, &b.UpdatedAt)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return b, err
	}

	// Could be not found or insufficient balance, check which
	var userID string
	var balance int64
	err = r.db.QueryRow(ctx, `SELECT user_id, balance FROM balances WHERE id = $1`, id).Scan(&userID, &balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return b, domain.ErrNotFound
	}
	if err != nil {
		return b, err
	}
	return b, &domain.InsufficientBalanceError{UserID: userID, Available: balance, Requested: -delta}
}

// DeleteByIDs removes balance rows and returns how many were deleted
func (r *BalanceRepository) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM balances WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, fmt.Errorf("delete balances: %w", err)
	}
	return tag.RowsAffected(), nil
}

// UsersWithDuplicates lists users that currently own more than one balance row
func (r *BalanceRepository) UsersWithDuplicates(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.Query(ctx,
		`SELECT user_id
		 FROM balances
		 GROUP BY user_id
		 HAVING COUNT(*) > 1
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
