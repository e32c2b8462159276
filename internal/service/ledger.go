package service

import (
	"github.com/CaptainYami1/Flowvahub-Test/internal/domain"
)

// Stores groups the repositories the ledger runs on
type Stores struct {
	Balances     BalanceRepository
	Claims       ClaimRepository
	Referrals    ReferralRepository
	Redemptions  RedemptionRepository
	RewardConfig RewardConfigRepository
}

// Ledger wires every ledger component over one set of stores
type Ledger struct {
	Balances  *BalanceService
	Claims    *ClaimService
	Janitor   *Janitor
	Config    *RewardConfigProvider
	Referrals *ReferralService
	Rewards   *RewardsService
}

type LedgerOptions struct {
	DefaultRewards  domain.RewardConfig
	ReferralBaseURL string
	Notifier        BalanceNotifier
	Catalog         *Catalog
}

func NewLedger(st Stores, opts LedgerOptions) *Ledger {
	if opts.Catalog == nil {
		opts.Catalog = DefaultCatalog()
	}

	janitor := NewJanitor(st.Balances, st.Claims)
	balances := NewBalanceService(st.Balances, janitor, opts.Notifier)
	claims := NewClaimService(st.Claims)
	config := NewRewardConfigProvider(st.RewardConfig, opts.DefaultRewards)

	return &Ledger{
		Balances:  balances,
		Claims:    claims,
		Janitor:   janitor,
		Config:    config,
		Referrals: NewReferralService(st.Referrals, claims, balances, config, opts.ReferralBaseURL),
		Rewards:   NewRewardsService(claims, balances, janitor, config, opts.Catalog, st.Redemptions),
	}
}
