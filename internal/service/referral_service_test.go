package service

import (
	"context"
	"errors"
	"testing"

	"github.com/CaptainYami1/Flowvahub-Test/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeCandidates(t *testing.T) {
	got, err := CodeCandidates(alice)
	require.NoError(t, err)
	assert.Equal(t, []string{"7b1e4c2a", "7b1e4c2a1111", "7b1e4c2a111140008000000000000001"}, got)

	_, err = CodeCandidates("not-a-uuid")
	assert.True(t, domain.IsValidation(err))
}

func TestEnsureCode_StableAndCollisionSafe(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	code, err := f.ledger.Referrals.EnsureCode(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "7b1e4c2a", code)

	again, err := f.ledger.Referrals.EnsureCode(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, code, again)

	// shares the first 8 hex chars with alice
	twin := "7b1e4c2a-9999-4000-8000-000000000009"
	twinCode, err := f.ledger.Referrals.EnsureCode(ctx, twin)
	require.NoError(t, err)
	assert.Equal(t, "7b1e4c2a9999", twinCode)

	assert.Equal(t, "https://app.example.com/?ref=7b1e4c2a", f.ledger.Referrals.Link(code))
}

func TestAttribute_CreditsReferrerOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	aliceCode, err := f.ledger.Referrals.EnsureCode(ctx, alice)
	require.NoError(t, err)
	carolCode, err := f.ledger.Referrals.EnsureCode(ctx, carol)
	require.NoError(t, err)

	res, err := f.ledger.Referrals.Attribute(ctx, bob, aliceCode)
	require.NoError(t, err)
	assert.Equal(t, domain.AttributionCredited, res.Status)
	assert.Equal(t, alice, res.ReferrerID)
	assert.Equal(t, int64(25), res.Awarded)

	// same link visited again
	res, err = f.ledger.Referrals.Attribute(ctx, bob, aliceCode)
	require.NoError(t, err)
	assert.Equal(t, domain.AttributionAlreadyAttributed, res.Status)

	// a different referrer's code
	res, err = f.ledger.Referrals.Attribute(ctx, bob, carolCode)
	require.NoError(t, err)
	assert.Equal(t, domain.AttributionAlreadyAttributed, res.Status)

	ab, _ := f.ledger.Balances.Read(ctx, alice)
	cb, _ := f.ledger.Balances.Read(ctx, carol)
	bb, _ := f.ledger.Balances.Read(ctx, bob)
	assert.Equal(t, int64(25), ab.Balance)
	assert.Zero(t, cb.Balance)
	assert.Zero(t, bb.Balance)

	stats, err := f.ledger.Referrals.Stats(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, domain.ReferralStats{Referrals: 1, PointsEarned: 25}, stats)
}

func TestAttribute_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	code, err := f.ledger.Referrals.EnsureCode(ctx, alice)
	require.NoError(t, err)

	_, err = f.ledger.Referrals.Attribute(ctx, alice, code)
	assert.ErrorIs(t, err, domain.ErrSelfReferral)

	_, err = f.ledger.Referrals.Attribute(ctx, bob, "deadbeef")
	assert.ErrorIs(t, err, domain.ErrUnknownReferralCode)

	_, err = f.ledger.Referrals.Attribute(ctx, bob, "")
	assert.True(t, domain.IsValidation(err))
}

func TestAttribute_FailedCreditCanBeRetried(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	code, err := f.ledger.Referrals.EnsureCode(ctx, alice)
	require.NoError(t, err)

	f.store.Balances.FailNext("list", errors.New("network down"))
	_, err = f.ledger.Referrals.Attribute(ctx, bob, code)
	require.Error(t, err)

	ok, _ := f.ledger.Claims.HasClaimed(ctx, alice, domain.EventReferral, bob)
	assert.False(t, ok)

	res, err := f.ledger.Referrals.Attribute(ctx, bob, code)
	require.NoError(t, err)
	assert.Equal(t, domain.AttributionCredited, res.Status)

	ab, _ := f.ledger.Balances.Read(ctx, alice)
	assert.Equal(t, int64(25), ab.Balance)
}

func TestReferrals_NewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	code, err := f.ledger.Referrals.EnsureCode(ctx, alice)
	require.NoError(t, err)
	for _, u := range []string{bob, carol} {
		_, err := f.ledger.Referrals.Attribute(ctx, u, code)
		require.NoError(t, err)
	}

	refs, err := f.ledger.Referrals.Referrals(ctx, alice)
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, carol, refs[0].ReferredUserID)
	assert.Equal(t, bob, refs[1].ReferredUserID)

	none, err := f.ledger.Referrals.Referrals(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, none)
}
