// Package eventbus fans balance mutations out to in-process consumers
// (websocket hub, cross-instance bridge, local sessions).
package eventbus

import (
	"context"
	"sync"

	"github.com/CaptainYami1/Flowvahub-Test/internal/domain"
)

type subscriber struct {
	userID string // empty: every user
	ch     chan domain.BalanceRecord
}

type Bus struct {
	mu   sync.RWMutex
	subs map[*subscriber]struct{}
}

func New() *Bus {
	return &Bus{subs: make(map[*subscriber]struct{})}
}

// PublishBalance never blocks; slow consumers drop snapshots and converge
// on their next poll.
func (b *Bus) PublishBalance(_ context.Context, rec domain.BalanceRecord) {
	if b == nil {
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for s := range b.subs {
		if s.userID != "" && s.userID != rec.UserID {
			continue
		}
		select {
		case s.ch <- rec:
		default:
		}
	}
}

// Subscribe receives every snapshot until ctx is done
func (b *Bus) Subscribe(ctx context.Context, buffer int) <-chan domain.BalanceRecord {
	return b.subscribe(ctx, "", buffer)
}

// SubscribeUser receives the snapshots of one user until ctx is done
func (b *Bus) SubscribeUser(ctx context.Context, userID string, buffer int) <-chan domain.BalanceRecord {
	return b.subscribe(ctx, userID, buffer)
}

func (b *Bus) subscribe(ctx context.Context, userID string, buffer int) <-chan domain.BalanceRecord {
	if buffer <= 0 {
		buffer = 16
	}
	s := &subscriber{userID: userID, ch: make(chan domain.BalanceRecord, buffer)}

	b.mu.Lock()
	b.subs[s] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, s)
		b.mu.Unlock()
		close(s.ch)
	}()

	return s.ch
}
