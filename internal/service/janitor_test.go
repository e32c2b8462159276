package service

import (
	"context"
	"testing"

	"github.com/CaptainYami1/Flowvahub-Test/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDedupe_BalancesKeepsLowestID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.Balances.SeedRow(domain.BalanceRecord{ID: 5, UserID: alice, Balance: 10})
	f.store.Balances.SeedRow(domain.BalanceRecord{ID: 7, UserID: alice, Balance: 10})
	f.store.Balances.SeedRow(domain.BalanceRecord{ID: 9, UserID: alice, Balance: 10})
	f.store.Balances.SeedRow(domain.BalanceRecord{ID: 11, UserID: bob, Balance: 3})

	removed, err := f.ledger.Janitor.Dedupe(ctx, alice, domain.TableBalances)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	rows, err := f.store.Balances.ListByUser(ctx, alice)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(5), rows[0].ID)

	bobRows, _ := f.store.Balances.ListByUser(ctx, bob)
	assert.Len(t, bobRows, 1)

	removed, err = f.ledger.Janitor.Dedupe(ctx, alice, domain.TableBalances)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestDedupe_ClaimsGroupedByEventAndKey(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.Claims.SeedRow(domain.ClaimRecord{ID: 1, UserID: alice, EventType: domain.EventDaily, Key: "2024-05-09"})
	f.store.Claims.SeedRow(domain.ClaimRecord{ID: 2, UserID: alice, EventType: domain.EventDaily, Key: "2024-05-10"})
	f.store.Claims.SeedRow(domain.ClaimRecord{ID: 3, UserID: alice, EventType: domain.EventDaily, Key: "2024-05-10"})
	f.store.Claims.SeedRow(domain.ClaimRecord{ID: 4, UserID: alice, EventType: domain.EventShareStack, Key: domain.KeyOnce})

	removed, err := f.ledger.Janitor.Dedupe(ctx, alice, domain.TableClaims)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	rows, _ := f.store.Claims.ListAllByUser(ctx, alice)
	ids := make([]int64, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []int64{1, 2, 4}, ids)
}

func TestDedupe_UnknownTable(t *testing.T) {
	f := newFixture(t)
	_, err := f.ledger.Janitor.Dedupe(context.Background(), alice, domain.Table("users"))
	assert.ErrorIs(t, err, domain.ErrUnknownTable)
}

func TestSweep(t *testing.T) {
	f := newFixture(t)
	f.store.Balances.SeedRow(domain.BalanceRecord{ID: 1, UserID: alice})
	f.store.Balances.SeedRow(domain.BalanceRecord{ID: 2, UserID: alice})
	f.store.Balances.SeedRow(domain.BalanceRecord{ID: 3, UserID: bob})
	f.store.Balances.SeedRow(domain.BalanceRecord{ID: 4, UserID: bob})
	f.store.Balances.SeedRow(domain.BalanceRecord{ID: 5, UserID: bob})

	removed, err := f.ledger.Janitor.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	users, _ := f.store.Balances.UsersWithDuplicates(context.Background(), 10)
	assert.Empty(t, users)
}
