package service

import (
	"context"
	"errors"
	"testing"

	"github.com/CaptainYami1/Flowvahub-Test/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimDaily_TwiceGrantsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.ledger.Rewards.ClaimDaily(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimGranted, first.Status)
	assert.Equal(t, int64(5), first.Awarded)
	assert.Equal(t, int64(5), first.Balance.Balance)

	second, err := f.ledger.Rewards.ClaimDaily(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimAlreadyClaimed, second.Status)
	assert.Zero(t, second.Awarded)
	assert.Equal(t, int64(5), second.Balance.Balance)
}

func TestClaimDaily_DistinctDaysAccumulate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	start := f.now

	_, err := f.ledger.Balances.ApplyDelta(ctx, alice, 7)
	require.NoError(t, err)

	const n = 4
	for i := 0; i < n; i++ {
		f.now = start.AddDate(0, 0, i)
		_, err := f.ledger.Rewards.ClaimDaily(ctx, alice)
		require.NoError(t, err)

		// a failed attempt in between changes nothing
		f.store.Claims.FailNext("insert", errors.New("timeout"))
		_, err = f.ledger.Rewards.ClaimDaily(ctx, alice)
		require.Error(t, err)
	}

	b, err := f.ledger.Balances.Read(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(7+n*5), b.Balance)

	view, err := f.ledger.Rewards.Streak(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, n, view.Streak)
	assert.False(t, view.CanClaim)
}

func TestClaim_CreditFailureReleasesClaim(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.store.Balances.FailNext("increment", errors.New("connection reset"))
	_, err := f.ledger.Rewards.ClaimShare(ctx, alice)
	require.Error(t, err)

	ok, _ := f.ledger.Claims.HasClaimed(ctx, alice, domain.EventShareStack, domain.KeyOnce)
	assert.False(t, ok)

	res, err := f.ledger.Rewards.ClaimShare(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimGranted, res.Status)
	assert.Equal(t, int64(10), res.Balance.Balance)
}

func TestClaimTopTool(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.ledger.Rewards.ClaimTopTool(ctx, alice, domain.TopToolSubmission{Email: "nope"})
	assert.True(t, domain.IsValidation(err))
	ok, _ := f.ledger.Claims.HasClaimed(ctx, alice, domain.EventTopTool, domain.KeyOnce)
	assert.False(t, ok)

	sub := domain.TopToolSubmission{
		Email:          "ada@example.com",
		ScreenshotName: "profile.png",
		ScreenshotType: "image/png",
		ScreenshotSize: 2048,
	}
	res, err := f.ledger.Rewards.ClaimTopTool(ctx, alice, sub)
	require.NoError(t, err)
	assert.Equal(t, int64(25), res.Awarded)

	claims, err := f.store.Claims.ListAllByUser(ctx, alice)
	require.NoError(t, err)
	require.Len(t, claims, 1)
	assert.Equal(t, "pending", claims[0].Meta["status"])
}

func TestClaim_ReferralCannotBeClaimedDirectly(t *testing.T) {
	f := newFixture(t)
	_, err := f.ledger.Rewards.Claim(context.Background(), alice, domain.EventReferral)
	assert.True(t, domain.IsValidation(err))
}

func TestStreakView(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, k := range []string{"2024-05-07", "2024-05-08", "2024-05-09"} {
		_, _, err := f.ledger.Claims.TryClaim(ctx, alice, domain.EventDaily, k, nil)
		require.NoError(t, err)
	}

	view, err := f.ledger.Rewards.Streak(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 0, view.Streak)
	assert.Equal(t, 3, view.CarriedStreak)
	assert.True(t, view.CanClaim)
	assert.Equal(t, "2024-05-10", view.Today)
	require.Len(t, view.Week, 7)
}

func TestRedeem_OverCostRejectedBeforeWrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	before, err := f.ledger.Balances.ApplyDelta(ctx, alice, 4999)
	require.NoError(t, err)

	_, err = f.ledger.Rewards.Redeem(ctx, alice, "$5 Amazon Gift Card")
	var ib *domain.InsufficientBalanceError
	require.True(t, errors.As(err, &ib))
	assert.Equal(t, int64(5000), ib.Requested)

	after, _ := f.ledger.Balances.Read(ctx, alice)
	assert.Equal(t, before.Version, after.Version)
	list, _ := f.ledger.Rewards.Redemptions(ctx, alice, 10)
	assert.Empty(t, list)
}

func TestRedeem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.ledger.Balances.ApplyDelta(ctx, alice, 12000)
	require.NoError(t, err)

	res, err := f.ledger.Rewards.Redeem(ctx, alice, "$10 amazon gift card")
	require.NoError(t, err)
	assert.Equal(t, int64(2000), res.Balance.Balance)
	assert.Equal(t, "$10 Amazon Gift Card", res.Redemption.ItemName)

	_, err = f.ledger.Rewards.Redeem(ctx, alice, "Free Udemy Course")
	assert.True(t, domain.IsValidation(err))

	_, err = f.ledger.Rewards.Redeem(ctx, alice, "A yacht")
	assert.ErrorIs(t, err, domain.ErrUnknownItem)

	list, err := f.ledger.Rewards.Redemptions(ctx, alice, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(10000), list[0].PointsSpent)
}

func TestCatalogTabs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.ledger.Balances.ApplyDelta(ctx, alice, 6000)
	require.NoError(t, err)

	unlocked, _, err := f.ledger.Rewards.Catalog(ctx, alice, TabUnlocked)
	require.NoError(t, err)
	assert.Len(t, unlocked, 6)

	locked, _, err := f.ledger.Rewards.Catalog(ctx, alice, TabLocked)
	require.NoError(t, err)
	require.Len(t, locked, 1)
	assert.Equal(t, "$10 Amazon Gift Card", locked[0].Name)

	soon, _, err := f.ledger.Rewards.Catalog(ctx, alice, TabComingSoon)
	require.NoError(t, err)
	require.Len(t, soon, 1)
	assert.Equal(t, domain.ItemComingSoon, soon[0].Status)

	all, bal, err := f.ledger.Rewards.Catalog(ctx, alice, "")
	require.NoError(t, err)
	assert.Len(t, all, 8)
	assert.Equal(t, int64(6000), bal.Balance)

	_, _, err = f.ledger.Rewards.Catalog(ctx, alice, "favourites")
	assert.True(t, domain.IsValidation(err))
}
