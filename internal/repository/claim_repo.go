package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/CaptainYami1/Flowvahub-Test/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ClaimRepository struct {
	db *pgxpool.Pool
}

func NewClaimRepository(db *pgxpool.Pool) *ClaimRepository {
	return &ClaimRepository{db: db}
}

// Insert records a claim. A second insert of the same (user, event, key)
// returns domain.ErrDuplicate.
func (r *ClaimRepository) Insert(ctx context.Context, c *domain.ClaimRecord) error {
	metaJSON, err := json.Marshal(c.Meta)
	if err != nil || c.Meta == nil {
		metaJSON = []byte("{}")
	}

	err = r.db.QueryRow(ctx,
		`INSERT INTO claims (user_id, event_type, key, meta)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		c.UserID, string(c.EventType), c.Key, metaJSON,
	).Scan(&c.ID, &c.CreatedAt)
	if isUniqueViolation(err) {
		return domain.ErrDuplicate
	}
	return err
}

func (r *ClaimRepository) Exists(ctx context.Context, userID string, event domain.EventType, key string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM claims WHERE user_id = $1 AND event_type = $2 AND key = $3)`,
		userID, string(event), key,
	).Scan(&exists)
	return exists, err
}

// ListByUser returns a user's claims of one event type created at or after since
func (r *ClaimRepository) ListByUser(ctx context.Context, userID string, event domain.EventType, since time.Time) ([]domain.ClaimRecord, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, event_type, key, meta, created_at
		 FROM claims
		 WHERE user_id = $1 AND event_type = $2 AND created_at >= $3
		 ORDER BY id ASC`,
		userID, string(event), since,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanClaims(rows)
}

// ListAllByUser returns every claim row of a user, lowest id first
func (r *ClaimRepository) ListAllByUser(ctx context.Context, userID string) ([]domain.ClaimRecord, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, event_type, key, meta, created_at
		 FROM claims
		 WHERE user_id = $1
		 ORDER BY id ASC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanClaims(rows)
}

func (r *ClaimRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM claims WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ClaimRepository) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM claims WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, fmt.Errorf("delete claims: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanClaims(rows pgx.Rows) ([]domain.ClaimRecord, error) {
	var result []domain.ClaimRecord

	for rows.Next() {
		var (
			c         domain.ClaimRecord
			eventType string
			metaJSON  []byte
		)

		if err := rows.Scan(&c.ID, &c.UserID, &eventType, &c.Key, &metaJSON, &c.CreatedAt); err != nil {
			return nil, err
		}

		c.EventType = domain.EventType(eventType)
		if len(metaJSON) > 0 {
			_ = json.Unmarshal(metaJSON, &c.Meta)
		}

		result = append(result, c)
	}

	return result, rows.Err()
}
