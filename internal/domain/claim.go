package domain

import "time"

// EventType names an earning event kind.
type EventType string

const (
	EventDaily      EventType = "daily"
	EventReferral   EventType = "referral"
	EventShareStack EventType = "share_stack"
	EventTopTool    EventType = "top_tool"
)

// KeyOnce is the claim key for single-shot events.
const KeyOnce = "once"

// DateLayout is the calendar date format used for daily claim keys.
const DateLayout = "2006-01-02"

// Valid reports whether e is a known event type.
func (e EventType) Valid() bool {
	switch e {
	case EventDaily, EventReferral, EventShareStack, EventTopTool:
		return true
	}
	return false
}

// ClaimRecord records that a user performed an earning event for a key.
// (UserID, EventType, Key) is unique.
type ClaimRecord struct {
	ID        int64          `db:"id" json:"id"`
	UserID    string         `db:"user_id" json:"user_id"`
	EventType EventType      `db:"event_type" json:"event_type"`
	Key       string         `db:"key" json:"key"`
	Meta      map[string]any `db:"meta" json:"meta,omitempty"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}

// ClaimStatus is the outcome of an idempotent claim attempt.
type ClaimStatus string

const (
	ClaimGranted        ClaimStatus = "granted"
	ClaimAlreadyClaimed ClaimStatus = "already_claimed"
)

// ClaimResult is returned by earning actions.
type ClaimResult struct {
	Status  ClaimStatus   `json:"status"`
	Awarded int64         `json:"awarded"`
	Balance BalanceRecord `json:"balance"`
}

// DateKey returns the UTC calendar date key for t.
func DateKey(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// ParseDateKey parses a daily claim key.
func ParseDateKey(key string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, key, time.UTC)
}
