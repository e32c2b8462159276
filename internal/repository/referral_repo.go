package repository

import (
	"context"
	"errors"

	"github.com/CaptainYami1/Flowvahub-Test/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReferralRepository struct {
	db *pgxpool.Pool
}

func NewReferralRepository(db *pgxpool.Pool) *ReferralRepository {
	return &ReferralRepository{db: db}
}

// InsertCode stores a user's referral code. Both user_id and code are
// unique, either collision returns domain.ErrDuplicate.
func (r *ReferralRepository) InsertCode(ctx context.Context, userID, code string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO referral_codes (user_id, code) VALUES ($1, $2)`,
		userID, code,
	)
	if isUniqueViolation(err) {
		return domain.ErrDuplicate
	}
	return err
}

// CodeByUser returns the user's referral code
func (r *ReferralRepository) CodeByUser(ctx context.Context, userID string) (string, error) {
	var code string
	err := r.db.QueryRow(ctx,
		`SELECT code FROM referral_codes WHERE user_id = $1`,
		userID,
	).Scan(&code)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", domain.ErrNotFound
	}
	return code, err
}

// UserByCode finds the owner of a referral code
func (r *ReferralRepository) UserByCode(ctx context.Context, code string) (string, error) {
	var userID string
	err := r.db.QueryRow(ctx,
		`SELECT user_id FROM referral_codes WHERE code = $1`,
		code,
	).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", domain.ErrNotFound
	}
	return userID, err
}

// InsertReferral records who referred whom. A referred user can appear
// only once; a second insert returns domain.ErrDuplicate.
func (r *ReferralRepository) InsertReferral(ctx context.Context, ref *domain.ReferralRecord) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO referrals (referrer_id, referred_user_id, code_used)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		ref.ReferrerID, ref.ReferredUserID, ref.CodeUsed,
	).Scan(&ref.ID, &ref.CreatedAt)
	if isUniqueViolation(err) {
		return domain.ErrDuplicate
	}
	return err
}

// ReferralOf returns the referral that attributed referredID
func (r *ReferralRepository) ReferralOf(ctx context.Context, referredID string) (domain.ReferralRecord, error) {
	var ref domain.ReferralRecord
	err := r.db.QueryRow(ctx,
		`SELECT id, referrer_id, referred_user_id, code_used, created_at
		 FROM referrals
		 WHERE referred_user_id = $1`,
		referredID,
	).Scan(&ref.ID, &ref.ReferrerID, &ref.ReferredUserID, &ref.CodeUsed, &ref.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ref, domain.ErrNotFound
	}
	return ref, err
}

func (r *ReferralRepository) CountByReferrer(ctx context.Context, referrerID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM referrals WHERE referrer_id = $1`,
		referrerID,
	).Scan(&count)
	return count, err
}

// ListByReferrer returns all referrals made by a user, newest first
func (r *ReferralRepository) ListByReferrer(ctx context.Context, referrerID string) ([]domain.ReferralRecord, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, referrer_id, referred_user_id, code_used, created_at
		 FROM referrals
		 WHERE referrer_id = $1
		 ORDER BY created_at DESC`,
		referrerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var referrals []domain.ReferralRecord
	for rows.Next() {
		var ref domain.ReferralRecord
		if err := rows.Scan(&ref.ID, &ref.ReferrerID, &ref.ReferredUserID, &ref.CodeUsed, &ref.CreatedAt); err != nil {
			return nil, err
		}
		referrals = append(referrals, ref)
	}
	return referrals, rows.Err()
}
