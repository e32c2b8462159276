package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ClaimsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_claims_total",
			Help: "Claim attempts by event type and outcome",
		},
		[]string{"event", "outcome"},
	)
	BalanceMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_balance_mutations_total",
			Help: "Balance mutations by direction and outcome",
		},
		[]string{"direction", "outcome"},
	)
	JanitorRemoved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_janitor_removed_rows_total",
			Help: "Duplicate rows deleted by the reconciliation janitor",
		},
		[]string{"table"},
	)
	ReferralAttributions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_referral_attributions_total",
			Help: "Referral attribution attempts by outcome",
		},
		[]string{"outcome"},
	)
	RedemptionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_redemptions_total",
			Help: "Redemption attempts by outcome",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(ClaimsTotal)
	prometheus.MustRegister(BalanceMutations)
	prometheus.MustRegister(JanitorRemoved)
	prometheus.MustRegister(ReferralAttributions)
	prometheus.MustRegister(RedemptionsTotal)
}
