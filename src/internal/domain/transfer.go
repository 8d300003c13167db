package domain

import "github.com/shopspring/decimal"

// TransferRequest is never persisted; a successful transfer materializes as a
// debit row on FromAccountID and a credit row on ToAccountID.
type TransferRequest struct {
	FromAccountID int64
	ToAccountID   int64
	Amount        decimal.Decimal
}

// LockOrder returns the two account ids in the order their locks must be taken.
func (r TransferRequest) LockOrder() (int64, int64) {
	if r.FromAccountID < r.ToAccountID {
		return r.FromAccountID, r.ToAccountID
	}
	return r.ToAccountID, r.FromAccountID
}
