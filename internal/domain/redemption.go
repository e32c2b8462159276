package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RedemptionRecord is an append-only log entry of points spent.
type RedemptionRecord struct {
	ID          int64     `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	ItemName    string    `db:"item_name" json:"item_name"`
	PointsSpent int64     `db:"points_spent" json:"points_spent"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// ItemStatus describes whether a catalog item can be redeemed.
type ItemStatus string

const (
	ItemUnlocked   ItemStatus = "unlocked"
	ItemLocked     ItemStatus = "locked"
	ItemComingSoon ItemStatus = "coming_soon"
)

// CatalogItem is a redeemable reward. Items with zero Points are not yet available.
type CatalogItem struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Icon        string          `json:"icon"`
	Points      int64           `json:"points"`
	FaceValue   decimal.Decimal `json:"face_value"`
	Currency    string          `json:"currency,omitempty"`
}

// StatusFor returns the item status for a given balance.
func (i CatalogItem) StatusFor(balance int64) ItemStatus {
	switch {
	case i.Points <= 0:
		return ItemComingSoon
	case i.Points <= balance:
		return ItemUnlocked
	default:
		return ItemLocked
	}
}

// RedeemResult is returned after a successful redemption.
type RedeemResult struct {
	Redemption RedemptionRecord `json:"redemption"`
	Balance    BalanceRecord    `json:"balance"`
}
