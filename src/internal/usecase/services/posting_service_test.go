package services_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/api-sage/bank-ledger/src/internal/domain"
	"github.com/api-sage/bank-ledger/src/internal/usecase/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestPostingServicePostATMWithdrawalThenOverdraft(t *testing.T) {
	eachBackend(t, func(t *testing.T, l *ledger) {
		ctx := context.Background()
		account := l.openFunded(t, "50000.00")

		result, err := l.postings.Post(ctx, account.ID, domain.TransactionDebit, amount("5000.00"), "ATM")
		require.NoError(t, err)
		assert.Equal(t, "45000.00", result.NewBalance.StringFixed(2))
		assert.NotZero(t, result.TransactionID)
		assert.Equal(t, "ATM", result.Transaction.Description)
		assert.Equal(t, domain.TransactionDebit, result.Transaction.Kind)

		rows := l.rows(t, account.ID)
		require.Len(t, rows, 2)
		assert.Equal(t, result.TransactionID, rows[1].ID)
		assert.Equal(t, "5000.00", rows[1].Amount.StringFixed(2))

		_, err = l.postings.Post(ctx, account.ID, domain.TransactionDebit, amount("100000.00"), "ATM")
		require.ErrorIs(t, err, domain.ErrInsufficientFunds)

		var le *domain.LedgerError
		require.True(t, errors.As(err, &le))
		assert.Equal(t, account.ID, le.AccountID)
		assert.Equal(t, "100000.00", le.Amount.StringFixed(2))
		assert.Equal(t, "45000.00", le.Available.StringFixed(2))

		assert.Equal(t, "45000.00", l.balance(t, account.ID))
		assert.Len(t, l.rows(t, account.ID), 2)
	})
}

func TestPostingServicePostCreditAlwaysAdmitted(t *testing.T) {
	eachBackend(t, func(t *testing.T, l *ledger) {
		account := l.openFunded(t, "0")

		result, err := l.postings.Post(context.Background(), account.ID, "credit", amount("0.01"), "  interest  ")
		require.NoError(t, err)
		assert.Equal(t, "0.01", result.NewBalance.StringFixed(2))
		assert.Equal(t, domain.TransactionCredit, result.Transaction.Kind)
		assert.Equal(t, "interest", result.Transaction.Description)
	})
}

func TestPostingServicePostDebitEntireBalance(t *testing.T) {
	eachBackend(t, func(t *testing.T, l *ledger) {
		account := l.openFunded(t, "12.34")

		result, err := l.postings.Post(context.Background(), account.ID, domain.TransactionDebit, amount("12.34"), "close out")
		require.NoError(t, err)
		assert.True(t, result.NewBalance.IsZero())
	})
}

func TestPostingServicePostRejections(t *testing.T) {
	eachBackend(t, func(t *testing.T, l *ledger) {
		ctx := context.Background()
		active := l.openFunded(t, "100.00")
		frozen := l.openFunded(t, "100.00")
		require.NoError(t, l.accounts.UpdateStatus(ctx, frozen.ID, domain.AccountStatusFrozen))

		tests := []struct {
			name      string
			accountID int64
			kind      domain.TransactionKind
			amount    string
			want      error
		}{
			{name: "zero amount", accountID: active.ID, kind: domain.TransactionCredit, amount: "0", want: domain.ErrInvalidAmount},
			{name: "negative amount", accountID: active.ID, kind: domain.TransactionDebit, amount: "-1.00", want: domain.ErrInvalidAmount},
			{name: "three decimals", accountID: active.ID, kind: domain.TransactionCredit, amount: "1.005", want: domain.ErrInvalidAmount},
			{name: "unknown kind", accountID: active.ID, kind: "REVERSAL", amount: "1.00", want: domain.ErrValidation},
			{name: "unknown account", accountID: 9999, kind: domain.TransactionCredit, amount: "1.00", want: domain.ErrAccountNotFound},
			{name: "frozen account credit", accountID: frozen.ID, kind: domain.TransactionCredit, amount: "1.00", want: domain.ErrAccountInactive},
			{name: "frozen account debit", accountID: frozen.ID, kind: domain.TransactionDebit, amount: "1.00", want: domain.ErrAccountInactive},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := l.postings.Post(ctx, tt.accountID, tt.kind, amount(tt.amount), "")
				require.ErrorIs(t, err, tt.want)
				assert.Contains(t, err.Error(), "account=")
			})
		}

		assert.Equal(t, "100.00", l.balance(t, active.ID))
		assert.Len(t, l.rows(t, active.ID), 1)
		assert.Equal(t, "100.00", l.balance(t, frozen.ID))
		assert.Len(t, l.rows(t, frozen.ID), 1)
	})
}

func TestPostingServicePostInactiveCarriesStatus(t *testing.T) {
	eachBackend(t, func(t *testing.T, l *ledger) {
		ctx := context.Background()
		account := l.openFunded(t, "1.00")
		require.NoError(t, l.accounts.UpdateStatus(ctx, account.ID, domain.AccountStatusClosed))

		_, err := l.postings.Post(ctx, account.ID, domain.TransactionCredit, amount("1.00"), "")

		var le *domain.LedgerError
		require.True(t, errors.As(err, &le))
		assert.Equal(t, domain.CodeAccountInactive, le.Code)
		assert.Equal(t, domain.AccountStatusClosed, le.Status)
	})
}

func TestPostingServiceConcurrentDebitRace(t *testing.T) {
	eachBackend(t, func(t *testing.T, l *ledger) {
		account := l.openFunded(t, "150.00")

		var succeeded, rejected atomic.Int32
		var g errgroup.Group
		for i := 0; i < 2; i++ {
			g.Go(func() error {
				_, err := l.postings.Post(context.Background(), account.ID, domain.TransactionDebit, amount("100.00"), "race")
				switch {
				case err == nil:
					succeeded.Add(1)
				case errors.Is(err, domain.ErrInsufficientFunds):
					rejected.Add(1)
				default:
					return err
				}
				return nil
			})
		}
		require.NoError(t, g.Wait())

		assert.Equal(t, int32(1), succeeded.Load())
		assert.Equal(t, int32(1), rejected.Load())
		assert.Equal(t, "50.00", l.balance(t, account.ID))
		assert.Len(t, l.rows(t, account.ID), 2)
	})
}

func TestPostingServiceManyConcurrentPostingsKeepInvariant(t *testing.T) {
	eachBackend(t, func(t *testing.T, l *ledger) {
		account := l.openFunded(t, "1000.00")

		var g errgroup.Group
		for i := 0; i < 50; i++ {
			kind := domain.TransactionCredit
			if i%2 == 0 {
				kind = domain.TransactionDebit
			}
			g.Go(func() error {
				_, err := l.postings.Post(context.Background(), account.ID, kind, amount("7.25"), "load")
				return err
			})
		}
		require.NoError(t, g.Wait())

		assert.Equal(t, "1000.00", l.balance(t, account.ID))

		report, err := l.reconcile.Reconcile(context.Background(), account.ID)
		require.NoError(t, err)
		assert.True(t, report.Consistent)
		assert.Equal(t, 51, report.TransactionCount)
	})
}

func TestPostingServicePostBusyWhenLockHeld(t *testing.T) {
	eachBackend(t, func(t *testing.T, l *ledger) {
		ctx := context.Background()
		account := l.openFunded(t, "10.00")

		holder, err := l.store.Begin(ctx, domain.TxOptions{})
		require.NoError(t, err)
		_, err = holder.LockAccount(ctx, account.ID)
		require.NoError(t, err)
		defer holder.Rollback()

		postings := services.NewPostingService(l.store, nil, 20*time.Millisecond)
		_, err = postings.Post(ctx, account.ID, domain.TransactionDebit, amount("1.00"), "")
		require.ErrorIs(t, err, domain.ErrBusy)
		assert.Equal(t, domain.CodeBusy, domain.CodeOf(err))

		require.NoError(t, holder.Rollback())
		assert.Equal(t, "10.00", l.balance(t, account.ID))
		assert.Len(t, l.rows(t, account.ID), 1)
	})
}

func TestPostingServicePostStorageFailureOnCommit(t *testing.T) {
	backend := newLedger(t)
	account := backend.openFunded(t, "10.00")

	boom := errors.New("disk full")
	stub := &storeStub{
		LedgerStore: backend.store,
		wrapTx: func(tx domain.LedgerTx) domain.LedgerTx {
			return &txStub{LedgerTx: tx, commitFn: func() error { return boom }}
		},
	}
	l := newLedgerOn(backend.store, stub)

	_, err := l.postings.Post(context.Background(), account.ID, domain.TransactionCredit, amount("5.00"), "")
	require.ErrorIs(t, err, domain.ErrStorageFailure)
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, "10.00", backend.balance(t, account.ID))
	assert.Len(t, backend.rows(t, account.ID), 1)

	// locks were released by the rollback
	_, err = backend.postings.Post(context.Background(), account.ID, domain.TransactionCredit, amount("5.00"), "")
	require.NoError(t, err)
}

func TestPostingServicePostBeginFailure(t *testing.T) {
	stub := &storeStub{
		beginFn: func(context.Context, domain.TxOptions) (domain.LedgerTx, error) {
			return nil, errors.New("connection refused")
		},
	}
	postings := services.NewPostingService(stub, nil, time.Second)

	_, err := postings.Post(context.Background(), 1, domain.TransactionCredit, amount("1.00"), "")
	require.ErrorIs(t, err, domain.ErrStorageFailure)
	assert.Contains(t, err.Error(), "account=1")
}
