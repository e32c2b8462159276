package repository

import (
	"context"

	"github.com/CaptainYami1/Flowvahub-Test/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type RedemptionRepository struct {
	db *pgxpool.Pool
}

func NewRedemptionRepository(db *pgxpool.Pool) *RedemptionRepository {
	return &RedemptionRepository{db: db}
}

func (r *RedemptionRepository) Insert(ctx context.Context, rec *domain.RedemptionRecord) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO redemptions (user_id, item_name, points_spent)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		rec.UserID, rec.ItemName, rec.PointsSpent,
	).Scan(&rec.ID, &rec.CreatedAt)
}

// ListByUser returns recent redemptions for a user
func (r *RedemptionRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.RedemptionRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, item_name, points_spent, created_at
		 FROM redemptions
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.RedemptionRecord
	for rows.Next() {
		var rec domain.RedemptionRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.ItemName, &rec.PointsSpent, &rec.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}
