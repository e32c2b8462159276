package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/CaptainYami1/Flowvahub-Test/internal/domain"
	"github.com/CaptainYami1/Flowvahub-Test/internal/logger"
)

// RewardConfigProvider fetches the reward amounts once and caches them for
// the process lifetime. The fallback is used when the source is empty or
// unreachable, and the fetch is retried on the next call in the latter case.
type RewardConfigProvider struct {
	source   RewardConfigRepository
	fallback domain.RewardConfig
	log      *slog.Logger

	mu     sync.Mutex
	cached *domain.RewardConfig
}

func NewRewardConfigProvider(source RewardConfigRepository, fallback domain.RewardConfig) *RewardConfigProvider {
	return &RewardConfigProvider{
		source:   source,
		fallback: fallback,
		log:      logger.Component("reward_config"),
	}
}

func (p *RewardConfigProvider) Get(ctx context.Context) domain.RewardConfig {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cached != nil {
		return *p.cached
	}
	if p.source == nil {
		p.cached = &p.fallback
		return p.fallback
	}

	cfg, err := p.source.Get(ctx)
	switch {
	case err == nil:
		p.cached = &cfg
		return cfg
	case errors.Is(err, domain.ErrNotFound):
		p.log.Info("reward_config is empty, using defaults")
		p.cached = &p.fallback
		return p.fallback
	default:
		p.log.Warn("failed to load reward_config, using defaults", "error", err)
		return p.fallback
	}
}
