package services_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/api-sage/bank-ledger/src/internal/adapter/repository/memory"
	"github.com/api-sage/bank-ledger/src/internal/adapter/repository/sqlite"
	"github.com/api-sage/bank-ledger/src/internal/domain"
	"github.com/api-sage/bank-ledger/src/internal/usecase/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const testLockTimeout = 2 * time.Second

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type ledger struct {
	store     domain.LedgerStore
	accounts  *services.AccountService
	postings  *services.PostingService
	transfers *services.TransferService
	statement *services.StatementService
	reconcile *services.ReconciliationService
}

func newLedger(t *testing.T) *ledger {
	t.Helper()
	store := memory.NewLedgerStore()
	return newLedgerOn(store, store)
}

// newLedgerOn builds the services against store while keeping direct access
// to the underlying backend for assertions.
func newLedgerOn(backend, store domain.LedgerStore) *ledger {
	clock := services.NewClock()
	return &ledger{
		store:     backend,
		accounts:  services.NewAccountService(store, clock),
		postings:  services.NewPostingService(store, clock, testLockTimeout),
		transfers: services.NewTransferService(store, clock, testLockTimeout),
		statement: services.NewStatementService(store),
		reconcile: services.NewReconciliationService(store, testLockTimeout),
	}
}

type backend struct {
	name string
	open func(t *testing.T) domain.LedgerStore
}

var backends = []backend{
	{name: "memory", open: func(*testing.T) domain.LedgerStore { return memory.NewLedgerStore() }},
	{name: "sqlite", open: func(t *testing.T) domain.LedgerStore {
		store, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "ledger.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close() })
		return store
	}},
}

// eachBackend runs fn once per store implementation, each on a fresh store.
func eachBackend(t *testing.T, fn func(t *testing.T, l *ledger)) {
	t.Helper()
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			store := b.open(t)
			fn(t, newLedgerOn(store, store))
		})
	}
}

// openFunded opens an ACTIVE savings account and credits the opening balance.
func (l *ledger) openFunded(t *testing.T, balance string) domain.Account {
	t.Helper()
	ctx := context.Background()

	account, err := l.accounts.OpenAccount(ctx, domain.Account{
		CustomerID: 100,
		BranchID:   1,
		Type:       domain.AccountTypeSavings,
	})
	require.NoError(t, err)

	if opening := amount(balance); opening.IsPositive() {
		_, err := l.postings.Post(ctx, account.ID, domain.TransactionCredit, opening, "opening deposit")
		require.NoError(t, err)
	}

	account, err = l.store.GetAccount(ctx, account.ID)
	require.NoError(t, err)
	return account
}

func (l *ledger) balance(t *testing.T, id int64) string {
	t.Helper()
	account, err := l.store.GetAccount(context.Background(), id)
	require.NoError(t, err)
	return account.Balance.StringFixed(2)
}

func (l *ledger) rows(t *testing.T, id int64) []domain.Transaction {
	t.Helper()
	rows, err := l.store.ListTransactions(context.Background(), id, time.Time{}, time.Time{})
	require.NoError(t, err)
	return rows
}

// storeStub wraps a real store and lets a test intercept the unit of work.
type storeStub struct {
	domain.LedgerStore
	beginFn func(ctx context.Context, opts domain.TxOptions) (domain.LedgerTx, error)
	wrapTx  func(tx domain.LedgerTx) domain.LedgerTx
}

func (s *storeStub) Begin(ctx context.Context, opts domain.TxOptions) (domain.LedgerTx, error) {
	if s.beginFn != nil {
		return s.beginFn(ctx, opts)
	}
	tx, err := s.LedgerStore.Begin(ctx, opts)
	if err != nil || s.wrapTx == nil {
		return tx, err
	}
	return s.wrapTx(tx), nil
}

// txStub forwards to the wrapped unit of work unless a hook is set.
type txStub struct {
	domain.LedgerTx
	insertFn func(ctx context.Context, tx domain.Transaction) (domain.Transaction, error)
	commitFn func() error
}

func (t *txStub) InsertTransaction(ctx context.Context, tx domain.Transaction) (domain.Transaction, error) {
	if t.insertFn != nil {
		return t.insertFn(ctx, tx)
	}
	return t.LedgerTx.InsertTransaction(ctx, tx)
}

func (t *txStub) Commit() error {
	if t.commitFn != nil {
		return t.commitFn()
	}
	return t.LedgerTx.Commit()
}
