package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/api-sage/bank-ledger/src/internal/domain"
	"github.com/shopspring/decimal"
)

const defaultLockTimeout = 5 * time.Second

var _ domain.LedgerStore = (*LedgerStore)(nil)

type accountRow struct {
	account domain.Account
	// lock is a one-slot semaphore; holding the slot is holding the row lock.
	lock chan struct{}
}

// LedgerStore keeps accounts and transactions in process memory. Row locks
// are per account; a unit of work stages its writes and applies them in one
// critical section at Commit, so readers never observe half of a commit.
type LedgerStore struct {
	mu           sync.RWMutex
	accounts     map[int64]*accountRow
	transactions map[int64][]domain.Transaction

	nextAccountID     atomic.Int64
	nextTransactionID atomic.Int64
}

func NewLedgerStore() *LedgerStore {
	return &LedgerStore{
		accounts:     make(map[int64]*accountRow),
		transactions: make(map[int64][]domain.Transaction),
	}
}

func (s *LedgerStore) Begin(ctx context.Context, opts domain.TxOptions) (domain.LedgerTx, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("begin memory unit of work: %w", err)
	}

	timeout := opts.LockTimeout
	if timeout <= 0 {
		timeout = defaultLockTimeout
	}

	return &ledgerTx{
		store:    s,
		timeout:  timeout,
		locked:   make(map[int64]*accountRow),
		balances: make(map[int64]decimal.Decimal),
	}, nil
}

func (s *LedgerStore) GetAccount(_ context.Context, id int64) (domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.accounts[id]
	if !ok {
		return domain.Account{}, fmt.Errorf("get account %d: %w", id, domain.ErrAccountNotFound)
	}
	return row.account, nil
}

func (s *LedgerStore) ListTransactions(_ context.Context, accountID int64, from, to time.Time) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Transaction, 0, len(s.transactions[accountID]))
	for _, tx := range s.transactions[accountID] {
		if tx.Timestamp.Before(from) {
			continue
		}
		if !to.IsZero() && tx.Timestamp.After(to) {
			continue
		}
		out = append(out, tx)
	}

	sortTransactions(out)
	return out, nil
}

func (s *LedgerStore) OpenAccount(_ context.Context, account domain.Account) (domain.Account, error) {
	account.ID = s.nextAccountID.Add(1)
	account.Balance = decimal.Zero

	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts[account.ID] = &accountRow{account: account, lock: make(chan struct{}, 1)}
	return account, nil
}

func (s *LedgerStore) UpdateAccountStatus(_ context.Context, id int64, status domain.AccountStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.accounts[id]
	if !ok {
		return fmt.Errorf("update account %d status: %w", id, domain.ErrAccountNotFound)
	}
	row.account.Status = status
	return nil
}

func (s *LedgerStore) Close() error {
	return nil
}

func (s *LedgerStore) row(id int64) (*accountRow, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.accounts[id]
	return row, ok
}

type ledgerTx struct {
	store   *LedgerStore
	timeout time.Duration
	done    bool

	locked   map[int64]*accountRow
	balances map[int64]decimal.Decimal
	inserts  []domain.Transaction
}

func (t *ledgerTx) LockAccount(ctx context.Context, id int64) (domain.Account, error) {
	if t.done {
		return domain.Account{}, fmt.Errorf("lock account %d: unit of work already finished", id)
	}

	row, ok := t.store.row(id)
	if !ok {
		return domain.Account{}, fmt.Errorf("lock account %d: %w", id, domain.ErrAccountNotFound)
	}

	if _, held := t.locked[id]; !held {
		timer := time.NewTimer(t.timeout)
		defer timer.Stop()

		select {
		case row.lock <- struct{}{}:
		case <-timer.C:
			return domain.Account{}, fmt.Errorf("lock account %d after %s: %w", id, t.timeout, domain.ErrBusy)
		case <-ctx.Done():
			return domain.Account{}, fmt.Errorf("lock account %d: %w: %w", id, domain.ErrBusy, ctx.Err())
		}
		t.locked[id] = row
	}

	t.store.mu.RLock()
	account := row.account
	t.store.mu.RUnlock()

	if staged, ok := t.balances[id]; ok {
		account.Balance = staged
	}
	return account, nil
}

func (t *ledgerTx) WriteBalance(_ context.Context, id int64, balance decimal.Decimal) error {
	if err := t.requireLocked(id); err != nil {
		return fmt.Errorf("write balance: %w", err)
	}
	t.balances[id] = balance
	return nil
}

func (t *ledgerTx) InsertTransaction(_ context.Context, tx domain.Transaction) (domain.Transaction, error) {
	if err := t.requireLocked(tx.AccountID); err != nil {
		return domain.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	tx.ID = t.store.nextTransactionID.Add(1)
	t.inserts = append(t.inserts, tx)
	return tx, nil
}

func (t *ledgerTx) Transactions(_ context.Context, accountID int64) ([]domain.Transaction, error) {
	if err := t.requireLocked(accountID); err != nil {
		return nil, fmt.Errorf("read transactions: %w", err)
	}

	t.store.mu.RLock()
	out := append([]domain.Transaction(nil), t.store.transactions[accountID]...)
	t.store.mu.RUnlock()

	for _, tx := range t.inserts {
		if tx.AccountID == accountID {
			out = append(out, tx)
		}
	}
	sortTransactions(out)
	return out, nil
}

func (t *ledgerTx) Commit() error {
	if t.done {
		return fmt.Errorf("commit: unit of work already finished")
	}

	t.store.mu.Lock()
	for id, balance := range t.balances {
		t.locked[id].account.Balance = balance
	}
	for _, tx := range t.inserts {
		t.store.transactions[tx.AccountID] = append(t.store.transactions[tx.AccountID], tx)
	}
	t.store.mu.Unlock()

	t.release()
	return nil
}

func (t *ledgerTx) Rollback() error {
	if t.done {
		return nil
	}
	t.release()
	return nil
}

func (t *ledgerTx) release() {
	t.done = true
	for id, row := range t.locked {
		<-row.lock
		delete(t.locked, id)
	}
}

func (t *ledgerTx) requireLocked(id int64) error {
	if t.done {
		return fmt.Errorf("unit of work already finished")
	}
	if _, ok := t.locked[id]; !ok {
		return fmt.Errorf("account %d is not locked in this unit of work", id)
	}
	return nil
}

func sortTransactions(txs []domain.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		if txs[i].Timestamp.Equal(txs[j].Timestamp) {
			return txs[i].ID < txs[j].ID
		}
		return txs[i].Timestamp.Before(txs[j].Timestamp)
	})
}
