package domain

import "time"

// ReferralCode maps a user to their shareable code.
type ReferralCode struct {
	UserID string `db:"user_id" json:"user_id"`
	Code   string `db:"code" json:"code"`
}

// ReferralRecord is unique on ReferredUserID: a user can be referred once.
type ReferralRecord struct {
	ID             int64     `db:"id" json:"id"`
	ReferrerID     string    `db:"referrer_id" json:"referrer_id"`
	ReferredUserID string    `db:"referred_user_id" json:"referred_user_id"`
	CodeUsed       string    `db:"code_used" json:"code_used"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// ReferralStats summarises a referrer's activity.
type ReferralStats struct {
	Referrals    int   `json:"referrals"`
	PointsEarned int64 `json:"points_earned"`
}

// AttributionStatus is the state of a referred user after an attribution attempt.
type AttributionStatus string

const (
	AttributionCredited          AttributionStatus = "credited"
	AttributionAlreadyAttributed AttributionStatus = "already_attributed"
)

// AttributionResult is returned by the referral engine.
type AttributionResult struct {
	Status     AttributionStatus `json:"status"`
	ReferrerID string            `json:"referrer_id,omitempty"`
	Awarded    int64             `json:"awarded"`
}
