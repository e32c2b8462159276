package domain

// RewardConfig holds the point amounts for each earning event.
// It is supplied externally and never mutated by the ledger.
type RewardConfig struct {
	DailyReward      int64 `db:"daily_reward" json:"daily_reward"`
	ReferralReward   int64 `db:"referral_reward" json:"referral_reward"`
	ShareStackReward int64 `db:"share_stack_reward" json:"share_stack_reward"`
	TopToolReward    int64 `db:"top_tool_reward" json:"top_tool_reward"`
}

// Amount returns the configured reward for an event type.
func (c RewardConfig) Amount(event EventType) int64 {
	switch event {
	case EventDaily:
		return c.DailyReward
	case EventReferral:
		return c.ReferralReward
	case EventShareStack:
		return c.ShareStackReward
	case EventTopTool:
		return c.TopToolReward
	}
	return 0
}
