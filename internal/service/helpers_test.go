package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/CaptainYami1/Flowvahub-Test/internal/domain"
	"github.com/CaptainYami1/Flowvahub-Test/internal/repository/memory"
)

const (
	alice = "7b1e4c2a-1111-4000-8000-000000000001"
	bob   = "9c2f5d3b-2222-4000-8000-000000000002"
	carol = "1a2b3c4d-3333-4000-8000-000000000003"
)

var testRewards = domain.RewardConfig{
	DailyReward:      5,
	ReferralReward:   25,
	ShareStackReward: 10,
	TopToolReward:    25,
}

type recordingNotifier struct {
	mu   sync.Mutex
	seen []domain.BalanceRecord
}

func (n *recordingNotifier) PublishBalance(_ context.Context, rec domain.BalanceRecord) {
	n.mu.Lock()
	n.seen = append(n.seen, rec)
	n.mu.Unlock()
}

func (n *recordingNotifier) all() []domain.BalanceRecord {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.BalanceRecord(nil), n.seen...)
}

type fixture struct {
	store    *memory.Store
	ledger   *Ledger
	notifier *recordingNotifier
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:    memory.New(),
		notifier: &recordingNotifier{},
		now:      time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC),
	}
	f.store.RewardConfig.Set(testRewards)
	f.ledger = NewLedger(Stores{
		Balances:     f.store.Balances,
		Claims:       f.store.Claims,
		Referrals:    f.store.Referrals,
		Redemptions:  f.store.Redemptions,
		RewardConfig: f.store.RewardConfig,
	}, LedgerOptions{
		DefaultRewards:  testRewards,
		ReferralBaseURL: "https://app.example.com/",
		Notifier:        f.notifier,
	})
	f.ledger.Rewards.WithClock(func() time.Time { return f.now })
	return f
}

func day(s string) time.Time {
	d, err := domain.ParseDateKey(s)
	if err != nil {
		panic(err)
	}
	return d
}
