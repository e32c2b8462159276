package eventbus

import (
	"context"
	"testing"
	"time"

	"github.com/CaptainYami1/Flowvahub-Test/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_FiltersByUser(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := New()
	all := b.Subscribe(ctx, 4)
	alice := b.SubscribeUser(ctx, "alice", 4)

	b.PublishBalance(ctx, domain.BalanceRecord{UserID: "alice", Balance: 1})
	b.PublishBalance(ctx, domain.BalanceRecord{UserID: "bob", Balance: 2})

	assert.Len(t, all, 2)
	require.Len(t, alice, 1)
	assert.Equal(t, int64(1), (<-alice).Balance)
}

func TestBus_ClosesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	b := New()
	ch := b.Subscribe(ctx, 1)
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("subscription not closed")
	}

	var nilBus *Bus
	nilBus.PublishBalance(context.Background(), domain.BalanceRecord{})
}
