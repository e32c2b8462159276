package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/CaptainYami1/Flowvahub-Test/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ctxBalances fails like pgx does once ctx is done
type ctxBalances struct {
	BalanceRepository
	afterIncrement func()
}

func (r ctxBalances) Insert(ctx context.Context, userID string, balance int64) (domain.BalanceRecord, error) {
	if err := ctx.Err(); err != nil {
		return domain.BalanceRecord{}, err
	}
	return r.BalanceRepository.Insert(ctx, userID, balance)
}

func (r ctxBalances) Increment(ctx context.Context, id int64, delta int64) (domain.BalanceRecord, error) {
	if err := ctx.Err(); err != nil {
		return domain.BalanceRecord{}, err
	}
	rec, err := r.BalanceRepository.Increment(ctx, id, delta)
	if err == nil && r.afterIncrement != nil {
		r.afterIncrement()
	}
	return rec, err
}

type ctxClaims struct {
	ClaimRepository
	afterInsert func()
}

func (r ctxClaims) Insert(ctx context.Context, c *domain.ClaimRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := r.ClaimRepository.Insert(ctx, c)
	if err == nil && r.afterInsert != nil {
		r.afterInsert()
	}
	return err
}

func (r ctxClaims) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.ClaimRepository.Delete(ctx, id)
}

type ctxRedemptions struct {
	RedemptionRepository
}

func (r ctxRedemptions) Insert(ctx context.Context, rec *domain.RedemptionRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.RedemptionRepository.Insert(ctx, rec)
}

func newCancellingLedger(t *testing.T, claimsHook, balanceHook func()) (*fixture, *Ledger) {
	t.Helper()
	f := newFixture(t)
	ledger := NewLedger(Stores{
		Balances:     ctxBalances{BalanceRepository: f.store.Balances, afterIncrement: balanceHook},
		Claims:       ctxClaims{ClaimRepository: f.store.Claims, afterInsert: claimsHook},
		Referrals:    f.store.Referrals,
		Redemptions:  ctxRedemptions{RedemptionRepository: f.store.Redemptions},
		RewardConfig: f.store.RewardConfig,
	}, LedgerOptions{DefaultRewards: testRewards, ReferralBaseURL: "https://app.example.com"})
	ledger.Rewards.WithClock(func() time.Time { return f.now })
	return f, ledger
}

func TestClaim_CreditSurvivesCancelledRequest(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f, ledger := newCancellingLedger(t, cancel, nil)

	res, err := ledger.Rewards.ClaimDaily(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimGranted, res.Status)
	assert.Equal(t, int64(5), res.Balance.Balance)

	bal, err := ledger.Balances.Read(context.Background(), alice)
	require.NoError(t, err)
	assert.Equal(t, int64(5), bal.Balance)

	claimed, err := f.store.Claims.Exists(context.Background(), alice, domain.EventDaily, ledger.Rewards.TodayKey())
	require.NoError(t, err)
	assert.True(t, claimed)
}

func TestClaim_ReleaseSurvivesCancelledRequest(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f, ledger := newCancellingLedger(t, cancel, nil)
	f.store.Balances.FailNext("increment", errors.New("connection reset"))

	_, err := ledger.Rewards.ClaimShare(ctx, alice)
	require.Error(t, err)

	// the claim was released, so a retry is granted
	res, err := ledger.Rewards.ClaimShare(context.Background(), alice)
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimGranted, res.Status)
	assert.Equal(t, int64(10), res.Balance.Balance)
}

func TestRedeem_RecordedWhenRequestCancelledAfterDebit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f, ledger := newCancellingLedger(t, nil, cancel)

	_, err := f.ledger.Balances.ApplyDelta(context.Background(), alice, 6000)
	require.NoError(t, err)

	res, err := ledger.Rewards.Redeem(ctx, alice, "$5 PayPal International")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), res.Balance.Balance)

	list, err := ledger.Rewards.Redemptions(context.Background(), alice, 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestReferral_CreditSurvivesCancelledRequest(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_, ledger := newCancellingLedger(t, cancel, nil)

	code, err := ledger.Referrals.EnsureCode(context.Background(), bob)
	require.NoError(t, err)

	res, err := ledger.Referrals.Attribute(ctx, alice, code)
	require.NoError(t, err)
	assert.Equal(t, domain.AttributionCredited, res.Status)

	bal, err := ledger.Balances.Read(context.Background(), bob)
	require.NoError(t, err)
	assert.Equal(t, int64(25), bal.Balance)
}
