package services

import (
	"context"
	"errors"
	"time"

	"github.com/api-sage/bank-ledger/src/internal/domain"
	"github.com/shopspring/decimal"
)

// ledgerUnit is one open unit of work plus the collaborators every posting
// inside it needs. Both the posting engine and the transfer coordinator write
// through it so the record-then-balance sequence lives in one place.
type ledgerUnit struct {
	tx       domain.LedgerTx
	enforcer BalanceEnforcer
	clock    *Clock
}

func beginUnit(ctx context.Context, store domain.LedgerStore, clock *Clock, lockTimeout time.Duration, accountID int64, amount decimal.Decimal) (*ledgerUnit, error) {
	tx, err := store.Begin(ctx, domain.TxOptions{LockTimeout: lockTimeout})
	if err != nil {
		return nil, storeError(err, accountID, amount, "begin unit of work")
	}
	return &ledgerUnit{tx: tx, clock: clock}, nil
}

func (u *ledgerUnit) lock(ctx context.Context, accountID int64, amount decimal.Decimal) (domain.Account, error) {
	account, err := u.tx.LockAccount(ctx, accountID)
	if err != nil {
		return domain.Account{}, storeError(err, accountID, amount, "lock account")
	}
	return account, nil
}

// post records one admitted transaction and the matching balance write. The
// account must already be locked in this unit and admitted by the enforcer.
func (u *ledgerUnit) post(ctx context.Context, account domain.Account, kind domain.TransactionKind, amount decimal.Decimal, description string) (domain.Transaction, decimal.Decimal, error) {
	created, err := u.tx.InsertTransaction(ctx, domain.Transaction{
		AccountID:   account.ID,
		Kind:        kind,
		Amount:      amount,
		Timestamp:   u.clock.Now(),
		Description: description,
	})
	if err != nil {
		return domain.Transaction{}, decimal.Decimal{}, storeError(err, account.ID, amount, "insert transaction")
	}

	newBalance := u.enforcer.Apply(account.Balance, kind, amount)
	if err := u.tx.WriteBalance(ctx, account.ID, newBalance); err != nil {
		return domain.Transaction{}, decimal.Decimal{}, storeError(err, account.ID, amount, "write balance")
	}

	return created, newBalance, nil
}

func (u *ledgerUnit) commit(accountID int64, amount decimal.Decimal) error {
	if err := u.tx.Commit(); err != nil {
		return storeError(err, accountID, amount, "commit unit of work")
	}
	return nil
}

func (u *ledgerUnit) rollback() {
	_ = u.tx.Rollback()
}

// storeError turns a store error into a LedgerError. Errors that already are
// LedgerErrors pass through unchanged.
func storeError(err error, accountID int64, amount decimal.Decimal, reason string) error {
	var le *domain.LedgerError
	if errors.As(err, &le) {
		return err
	}

	code := domain.CodeStorageFailure
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		code = domain.CodeAccountNotFound
		reason = "account does not exist"
	case errors.Is(err, domain.ErrBusy):
		code = domain.CodeBusy
		reason = "account lock not acquired within timeout"
	}

	return &domain.LedgerError{
		Code:      code,
		AccountID: accountID,
		Amount:    amount,
		Reason:    reason,
		Err:       err,
	}
}

// withCounterparty stamps the other side of a transfer onto err.
func withCounterparty(err error, counterpartyID int64) error {
	var le *domain.LedgerError
	if errors.As(err, &le) && le.CounterpartyID == 0 && le.AccountID != counterpartyID {
		le.CounterpartyID = counterpartyID
	}
	return err
}
