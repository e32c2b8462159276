package repository

import (
	"context"
	"errors"

	"github.com/CaptainYami1/Flowvahub-Test/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RewardConfigRepository struct {
	db *pgxpool.Pool
}

func NewRewardConfigRepository(db *pgxpool.Pool) *RewardConfigRepository {
	return &RewardConfigRepository{db: db}
}

// Get returns the first reward_config row
func (r *RewardConfigRepository) Get(ctx context.Context) (domain.RewardConfig, error) {
	var c domain.RewardConfig
	err := r.db.QueryRow(ctx,
		`SELECT daily_reward, referral_reward, share_stack_reward, top_tool_reward
		 FROM reward_config
		 ORDER BY id
		 LIMIT 1`,
	).Scan(&c.DailyReward, &c.ReferralReward, &c.ShareStackReward, &c.TopToolReward)
	if errors.Is(err, pgx.ErrNoRows) {
		return c, domain.ErrNotFound
	}
	return c, err
}
