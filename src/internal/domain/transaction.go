package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionKind string

const (
	TransactionCredit TransactionKind = "CREDIT"
	TransactionDebit  TransactionKind = "DEBIT"
)

func (k TransactionKind) Valid() bool {
	return k == TransactionCredit || k == TransactionDebit
}

// Signed returns amount as it contributes to the account balance.
func (k TransactionKind) Signed(amount decimal.Decimal) decimal.Decimal {
	if k == TransactionDebit {
		return amount.Neg()
	}
	return amount
}

// Transaction is an immutable audit row. ID is assigned by the store on insert.
type Transaction struct {
	ID          int64
	AccountID   int64
	Kind        TransactionKind
	Amount      decimal.Decimal
	Timestamp   time.Time
	Description string
}

// SignedSum re-derives a balance from a transaction log.
func SignedSum(transactions []Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range transactions {
		total = total.Add(tx.Kind.Signed(tx.Amount))
	}
	return total
}
