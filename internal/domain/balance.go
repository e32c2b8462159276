package domain

import "time"

// BalanceRecord is one physical row of the balances table.
// Exactly one logical balance exists per user: when several rows exist the one
// with the lowest ID is authoritative and the rest are garbage.
type BalanceRecord struct {
	ID        int64     `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Balance   int64     `db:"balance" json:"balance"`
	Version   int64     `db:"version" json:"version"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Newer reports whether r should replace other as the confirmed balance.
// Ordering is by authoritative row (lower ID wins) and then by version, so
// snapshots arriving out of order never roll the balance back.
func (r BalanceRecord) Newer(other BalanceRecord) bool {
	if other.ID == 0 {
		return r.ID != 0
	}
	if r.ID == 0 {
		return false
	}
	if r.ID != other.ID {
		return r.ID < other.ID
	}
	return r.Version > other.Version
}
