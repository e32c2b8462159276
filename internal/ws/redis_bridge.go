package ws

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/CaptainYami1/Flowvahub-Test/internal/domain"
	"github.com/CaptainYami1/Flowvahub-Test/internal/logger"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// BalanceChannel is the pub/sub channel shared by all instances
const BalanceChannel = "ledger:balance"

type bridgeMessage struct {
	Origin  string               `json:"origin"`
	Balance domain.BalanceRecord `json:"balance"`
}

// RedisBridge carries balance snapshots between server instances so a
// socket on one instance sees mutations made on another.
type RedisBridge struct {
	client   *redis.Client
	hub      *Hub
	channel  string
	instance string
	log      *slog.Logger
}

func NewRedisBridge(client *redis.Client, hub *Hub) *RedisBridge {
	return &RedisBridge{
		client:   client,
		hub:      hub,
		channel:  BalanceChannel,
		instance: uuid.NewString(),
		log:      logger.Component("redis_bridge"),
	}
}

// Forward publishes every local snapshot from ch until it is closed
func (b *RedisBridge) Forward(ctx context.Context, ch <-chan domain.BalanceRecord) {
	go func() {
		for rec := range ch {
			if err := b.Publish(ctx, rec); err != nil {
				b.log.Warn("failed to publish balance", "user_id", rec.UserID, "error", err)
			}
		}
	}()
}

func (b *RedisBridge) Publish(ctx context.Context, rec domain.BalanceRecord) error {
	payload, err := json.Marshal(bridgeMessage{Origin: b.instance, Balance: rec})
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, b.channel, payload).Err()
}

// Run subscribes and delivers foreign snapshots to the local hub until ctx is done
func (b *RedisBridge) Run(ctx context.Context) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	// wait for the subscription to be confirmed
	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	b.log.Info("subscribed", "channel", b.channel, "instance", b.instance)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			b.handle(msg.Payload)
		}
	}
}

func (b *RedisBridge) handle(payload string) {
	var m bridgeMessage
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		b.log.Warn("bad bridge message", "error", err)
		return
	}
	if m.Origin == b.instance {
		return
	}
	b.hub.Deliver(m.Balance)
}
