package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/api-sage/bank-ledger/src/internal/domain"
	"github.com/api-sage/bank-ledger/src/internal/logger"
	"github.com/shopspring/decimal"
)

var _ domain.LedgerStore = (*LedgerStore)(nil)

type LedgerStore struct {
	db *sql.DB
}

func NewLedgerStore(db *sql.DB) *LedgerStore {
	return &LedgerStore{db: db}
}

func (s *LedgerStore) Begin(ctx context.Context, opts domain.TxOptions) (domain.LedgerTx, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, classify(err, "begin ledger transaction")
	}

	if opts.LockTimeout > 0 {
		if _, err := tx.ExecContext(ctx, lockTimeoutStatement(opts.LockTimeout)); err != nil {
			_ = tx.Rollback()
			return nil, classify(err, "set lock timeout")
		}
	}

	return &ledgerTx{tx: tx}, nil
}

// lockTimeoutStatement renders the SET for timeout, never below 1ms: Postgres
// reads lock_timeout = 0 as wait forever. SET does not take bind parameters.
func lockTimeoutStatement(timeout time.Duration) string {
	ms := timeout.Milliseconds()
	if ms < 1 {
		ms = 1
	}
	return fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", ms)
}

func (s *LedgerStore) GetAccount(ctx context.Context, id int64) (domain.Account, error) {
	const query = `
SELECT id, customer_id, branch_id, type, balance, status, open_date
FROM accounts
WHERE id = $1`

	account, err := scanAccount(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return domain.Account{}, classify(err, fmt.Sprintf("get account %d", id))
	}
	return account, nil
}

func (s *LedgerStore) ListTransactions(ctx context.Context, accountID int64, from, to time.Time) ([]domain.Transaction, error) {
	const query = `
SELECT id, account_id, kind, amount, "timestamp", description
FROM transactions
WHERE account_id = $1
  AND "timestamp" >= $2
  AND ($3::timestamptz IS NULL OR "timestamp" <= $3)
ORDER BY "timestamp", id`

	var upper sql.NullTime
	if !to.IsZero() {
		upper = sql.NullTime{Time: to.UTC(), Valid: true}
	}

	rows, err := s.db.QueryContext(ctx, query, accountID, from.UTC(), upper)
	if err != nil {
		return nil, classify(err, fmt.Sprintf("list transactions for account %d", accountID))
	}
	defer rows.Close()

	return scanTransactions(rows, accountID)
}

func (s *LedgerStore) OpenAccount(ctx context.Context, account domain.Account) (domain.Account, error) {
	logger.Info("ledger store open account", logger.Fields{
		"customerId": account.CustomerID,
		"branchId":   account.BranchID,
		"type":       account.Type,
	})

	const query = `
INSERT INTO accounts (customer_id, branch_id, type, balance, status, open_date)
VALUES ($1, $2, $3, 0, $4, $5)
RETURNING id`

	if err := s.db.QueryRowContext(
		ctx,
		query,
		account.CustomerID,
		account.BranchID,
		string(account.Type),
		string(account.Status),
		account.OpenDate.UTC(),
	).Scan(&account.ID); err != nil {
		logger.Error("ledger store open account failed", err, logger.Fields{
			"customerId": account.CustomerID,
		})
		return domain.Account{}, fmt.Errorf("open account: %w", err)
	}

	account.Balance = decimal.Zero
	return account, nil
}

func (s *LedgerStore) UpdateAccountStatus(ctx context.Context, id int64, status domain.AccountStatus) error {
	const query = `UPDATE accounts SET status = $2 WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, id, string(status))
	if err != nil {
		return classify(err, fmt.Sprintf("update account %d status", id))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("update account %d status: %w", id, domain.ErrAccountNotFound)
	}
	return nil
}

func (s *LedgerStore) Close() error {
	return s.db.Close()
}

type ledgerTx struct {
	tx   *sql.Tx
	done bool
}

func (t *ledgerTx) LockAccount(ctx context.Context, id int64) (domain.Account, error) {
	const query = `
SELECT id, customer_id, branch_id, type, balance, status, open_date
FROM accounts
WHERE id = $1
FOR UPDATE`

	account, err := scanAccount(t.tx.QueryRowContext(ctx, query, id))
	if err != nil {
		return domain.Account{}, classify(err, fmt.Sprintf("lock account %d", id))
	}
	return account, nil
}

func (t *ledgerTx) WriteBalance(ctx context.Context, id int64, balance decimal.Decimal) error {
	const query = `UPDATE accounts SET balance = $2 WHERE id = $1`

	result, err := t.tx.ExecContext(ctx, query, id, balance.StringFixed(2))
	if err != nil {
		return classify(err, fmt.Sprintf("write balance for account %d", id))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("write balance for account %d: %w", id, domain.ErrAccountNotFound)
	}
	return nil
}

func (t *ledgerTx) InsertTransaction(ctx context.Context, tx domain.Transaction) (domain.Transaction, error) {
	const query = `
INSERT INTO transactions (account_id, kind, amount, "timestamp", description)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`

	if err := t.tx.QueryRowContext(
		ctx,
		query,
		tx.AccountID,
		string(tx.Kind),
		tx.Amount.StringFixed(2),
		tx.Timestamp.UTC(),
		tx.Description,
	).Scan(&tx.ID); err != nil {
		return domain.Transaction{}, classify(err, fmt.Sprintf("insert transaction for account %d", tx.AccountID))
	}
	return tx, nil
}

func (t *ledgerTx) Transactions(ctx context.Context, accountID int64) ([]domain.Transaction, error) {
	const query = `
SELECT id, account_id, kind, amount, "timestamp", description
FROM transactions
WHERE account_id = $1
ORDER BY "timestamp", id`

	rows, err := t.tx.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, classify(err, fmt.Sprintf("read transactions for account %d", accountID))
	}
	defer rows.Close()

	return scanTransactions(rows, accountID)
}

func (t *ledgerTx) Commit() error {
	if t.done {
		return fmt.Errorf("commit ledger transaction: already finished")
	}
	t.done = true
	if err := t.tx.Commit(); err != nil {
		return classify(err, "commit ledger transaction")
	}
	return nil
}

func (t *ledgerTx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	if err := t.tx.Rollback(); err != nil && err != sql.ErrTxDone {
		return fmt.Errorf("rollback ledger transaction: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (domain.Account, error) {
	var (
		account    domain.Account
		accountTyp string
		status     string
	)

	if err := row.Scan(
		&account.ID,
		&account.CustomerID,
		&account.BranchID,
		&accountTyp,
		&account.Balance,
		&status,
		&account.OpenDate,
	); err != nil {
		return domain.Account{}, err
	}

	account.Type = domain.AccountType(accountTyp)
	account.Status = domain.AccountStatus(status)
	account.OpenDate = account.OpenDate.UTC()
	return account, nil
}

func scanTransactions(rows *sql.Rows, accountID int64) ([]domain.Transaction, error) {
	out := make([]domain.Transaction, 0)
	for rows.Next() {
		var (
			tx   domain.Transaction
			kind string
		)
		if err := rows.Scan(&tx.ID, &tx.AccountID, &kind, &tx.Amount, &tx.Timestamp, &tx.Description); err != nil {
			return nil, fmt.Errorf("scan transaction for account %d: %w", accountID, err)
		}
		tx.Kind = domain.TransactionKind(kind)
		tx.Timestamp = tx.Timestamp.UTC()
		out = append(out, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, classify(err, fmt.Sprintf("iterate transactions for account %d", accountID))
	}
	return out, nil
}
