package session

import (
	"context"

	"github.com/CaptainYami1/Flowvahub-Test/internal/domain"
	"github.com/CaptainYami1/Flowvahub-Test/internal/eventbus"
	"github.com/CaptainYami1/Flowvahub-Test/internal/service"
)

// LocalRemote serves a session straight from an in-process ledger.
// Used by tests and by tools that embed the ledger.
type LocalRemote struct {
	ledger *service.Ledger
	bus    *eventbus.Bus
	userID string
}

func NewLocalRemote(ledger *service.Ledger, bus *eventbus.Bus, userID string) *LocalRemote {
	return &LocalRemote{ledger: ledger, bus: bus, userID: userID}
}

// LocalConnector connects every login to the same in-process ledger
func LocalConnector(ledger *service.Ledger, bus *eventbus.Bus) Connector {
	return func(_ context.Context, ev AuthEvent) (Remote, error) {
		userID, err := domain.NormalizeUserID(ev.UserID)
		if err != nil {
			return nil, err
		}
		return NewLocalRemote(ledger, bus, userID), nil
	}
}

func (r *LocalRemote) RewardConfig(ctx context.Context) (domain.RewardConfig, error) {
	return r.ledger.Config.Get(ctx), nil
}

func (r *LocalRemote) Balance(ctx context.Context) (domain.BalanceRecord, error) {
	return r.ledger.Balances.Read(ctx, r.userID)
}

func (r *LocalRemote) HasClaimed(ctx context.Context, event domain.EventType, key string) (bool, error) {
	return r.ledger.Claims.HasClaimed(ctx, r.userID, event, key)
}

func (r *LocalRemote) Claim(ctx context.Context, event domain.EventType, sub *domain.TopToolSubmission) (domain.ClaimResult, error) {
	if event == domain.EventTopTool {
		if sub == nil {
			return domain.ClaimResult{}, &domain.ValidationError{Field: "submission", Message: "is required"}
		}
		return r.ledger.Rewards.ClaimTopTool(ctx, r.userID, *sub)
	}
	return r.ledger.Rewards.Claim(ctx, r.userID, event)
}

func (r *LocalRemote) Redeem(ctx context.Context, item string) (domain.RedeemResult, error) {
	return r.ledger.Rewards.Redeem(ctx, r.userID, item)
}

func (r *LocalRemote) Subscribe(ctx context.Context) (<-chan domain.BalanceRecord, error) {
	return r.bus.SubscribeUser(ctx, r.userID, 16), nil
}
