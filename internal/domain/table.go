package domain

// Table names a ledger table the janitor can reconcile.
type Table string

const (
	TableBalances Table = "balances"
	TableClaims   Table = "claims"
)
