package service

import (
	"context"
	"time"

	"github.com/CaptainYami1/Flowvahub-Test/internal/domain"
)

// Storage contracts. Implemented by internal/repository (Postgres) and
// internal/repository/memory.

type BalanceRepository interface {
	ListByUser(ctx context.Context, userID string) ([]domain.BalanceRecord, error)
	Insert(ctx context.Context, userID string, balance int64) (domain.BalanceRecord, error)
	Increment(ctx context.Context, id int64, delta int64) (domain.BalanceRecord, error)
	DeleteByIDs(ctx context.Context, ids []int64) (int64, error)
	UsersWithDuplicates(ctx context.Context, limit int) ([]string, error)
}

type ClaimRepository interface {
	Insert(ctx context.Context, c *domain.ClaimRecord) error
	Exists(ctx context.Context, userID string, event domain.EventType, key string) (bool, error)
	ListByUser(ctx context.Context, userID string, event domain.EventType, since time.Time) ([]domain.ClaimRecord, error)
	ListAllByUser(ctx context.Context, userID string) ([]domain.ClaimRecord, error)
	Delete(ctx context.Context, id int64) error
	DeleteByIDs(ctx context.Context, ids []int64) (int64, error)
}

type ReferralRepository interface {
	InsertCode(ctx context.Context, userID, code string) error
	CodeByUser(ctx context.Context, userID string) (string, error)
	UserByCode(ctx context.Context, code string) (string, error)
	InsertReferral(ctx context.Context, ref *domain.ReferralRecord) error
	ReferralOf(ctx context.Context, referredID string) (domain.ReferralRecord, error)
	CountByReferrer(ctx context.Context, referrerID string) (int, error)
	ListByReferrer(ctx context.Context, referrerID string) ([]domain.ReferralRecord, error)
}

type RedemptionRepository interface {
	Insert(ctx context.Context, rec *domain.RedemptionRecord) error
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.RedemptionRecord, error)
}

type RewardConfigRepository interface {
	Get(ctx context.Context) (domain.RewardConfig, error)
}

// BalanceNotifier receives every successful balance mutation
type BalanceNotifier interface {
	PublishBalance(ctx context.Context, rec domain.BalanceRecord)
}

// NotifierFunc adapts a function to BalanceNotifier
type NotifierFunc func(ctx context.Context, rec domain.BalanceRecord)

func (f NotifierFunc) PublishBalance(ctx context.Context, rec domain.BalanceRecord) {
	f(ctx, rec)
}

type nopNotifier struct{}

func (nopNotifier) PublishBalance(context.Context, domain.BalanceRecord) {}

// Clock returns the current time; injectable for streak tests
type Clock func() time.Time
