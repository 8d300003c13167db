package domain

import "github.com/shopspring/decimal"

type PostingResult struct {
	TransactionID int64
	NewBalance    decimal.Decimal
	Transaction   Transaction
}

type TransferResult struct {
	DebitTransactionID  int64
	CreditTransactionID int64
	FromBalance         decimal.Decimal
	ToBalance           decimal.Decimal
}

// ReconcileReport compares an account's cached balance with the signed sum
// of its transaction log.
type ReconcileReport struct {
	AccountID        int64
	Balance          decimal.Decimal
	LedgerSum        decimal.Decimal
	TransactionCount int
	Consistent       bool
	Repaired         bool
}
