package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type TxOptions struct {
	// LockTimeout bounds every LockAccount call made through the unit of work.
	// Zero means the backend default.
	LockTimeout time.Duration
}

// LedgerStore is the storage contract the ledger engine runs on. Writes only
// happen through a LedgerTx; reads outside a LedgerTx see committed state only.
type LedgerStore interface {
	Begin(ctx context.Context, opts TxOptions) (LedgerTx, error)
	GetAccount(ctx context.Context, id int64) (Account, error)
	// ListTransactions returns the account's rows with from <= Timestamp <= to,
	// ordered by Timestamp then ID. A zero to means no upper bound.
	ListTransactions(ctx context.Context, accountID int64, from, to time.Time) ([]Transaction, error)
	OpenAccount(ctx context.Context, account Account) (Account, error)
	UpdateAccountStatus(ctx context.Context, id int64, status AccountStatus) error
	Close() error
}

// LedgerTx is an all-or-nothing unit of work. Locks taken by LockAccount are
// held until Commit or Rollback. Commit applies every staged write or none;
// Rollback after Commit is a no-op.
type LedgerTx interface {
	// LockAccount takes the exclusive lock on the account row and returns its
	// current state. It fails with ErrAccountNotFound or ErrBusy.
	LockAccount(ctx context.Context, id int64) (Account, error)
	WriteBalance(ctx context.Context, id int64, balance decimal.Decimal) error
	InsertTransaction(ctx context.Context, tx Transaction) (Transaction, error)
	// Transactions returns the full log of an account locked in this unit of work.
	Transactions(ctx context.Context, accountID int64) ([]Transaction, error)
	Commit() error
	Rollback() error
}
