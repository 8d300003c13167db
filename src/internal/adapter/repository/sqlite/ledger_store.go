package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/api-sage/bank-ledger/src/internal/domain"
	"github.com/api-sage/bank-ledger/src/internal/logger"
	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

var _ domain.LedgerStore = (*LedgerStore)(nil)

type LedgerStore struct {
	db *sql.DB
}

// Begin pins a connection, sets its busy timeout to the lock timeout and
// opens an IMMEDIATE transaction on it.
func (s *LedgerStore) Begin(ctx context.Context, opts domain.TxOptions) (domain.LedgerTx, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, classify(err, "acquire sqlite connection")
	}

	timeout := opts.LockTimeout
	if timeout <= 0 {
		timeout = defaultBusyTimeout
	}
	if err := setBusyTimeout(ctx, conn, timeout); err != nil {
		_ = conn.Close()
		return nil, classify(err, "set busy timeout")
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		_ = conn.Close()
		return nil, classify(err, "begin ledger transaction")
	}

	return &ledgerTx{conn: conn, tx: tx}, nil
}

func (s *LedgerStore) GetAccount(ctx context.Context, id int64) (domain.Account, error) {
	account, err := scanAccount(s.db.QueryRowContext(ctx, selectAccount, id))
	if err != nil {
		return domain.Account{}, classify(err, fmt.Sprintf("get account %d", id))
	}
	return account, nil
}

func (s *LedgerStore) ListTransactions(ctx context.Context, accountID int64, from, to time.Time) ([]domain.Transaction, error) {
	const query = `
SELECT id, account_id, kind, amount, "timestamp", description
FROM transactions
WHERE account_id = ? AND "timestamp" >= ? AND ("timestamp" <= ? OR ? = 1)
ORDER BY "timestamp", id`

	var upper int64
	if !to.IsZero() {
		upper = to.UnixMicro()
	}

	rows, err := s.db.QueryContext(ctx, query, accountID, lowerBound(from), upper, boolInt(to.IsZero()))
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
VALUES (?, ?, ?, '0.00', ?, ?)`

	result, err := s.db.ExecContext(
		ctx,
		query,
		account.CustomerID,
		account.BranchID,
		string(account.Type),
		string(account.Status),
		account.OpenDate.UnixMicro(),
	)
	if err != nil {
		logger.Error("ledger store open account failed", err, logger.Fields{
			"customerId": account.CustomerID,
		})
		return domain.Account{}, classify(err, "open account")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return domain.Account{}, fmt.Errorf("read account id: %w", err)
	}

	account.ID = id
	account.Balance = decimal.Zero
	account.OpenDate = time.UnixMicro(account.OpenDate.UnixMicro()).UTC()
	return account, nil
}

func (s *LedgerStore) UpdateAccountStatus(ctx context.Context, id int64, status domain.AccountStatus) error {
	result, err := s.db.ExecContext(ctx, `UPDATE accounts SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return classify(err, fmt.Sprintf("update account %d status", id))
	}
	return requireRow(result, fmt.Sprintf("update account %d status", id))
}

func (s *LedgerStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

type ledgerTx struct {
	conn *sql.Conn
	tx   *sql.Tx
	done bool
}

// LockAccount reads the row inside the IMMEDIATE transaction. The write lock
// was already taken at Begin, so the read is exclusive.
func (t *ledgerTx) LockAccount(ctx context.Context, id int64) (domain.Account, error) {
	account, err := scanAccount(t.tx.QueryRowContext(ctx, selectAccount, id))
	if err != nil {
		return domain.Account{}, classify(err, fmt.Sprintf("lock account %d", id))
	}
	return account, nil
}

func (t *ledgerTx) WriteBalance(ctx context.Context, id int64, balance decimal.Decimal) error {
	result, err := t.tx.ExecContext(ctx, `UPDATE accounts SET balance = ? WHERE id = ?`, balance.StringFixed(2), id)
	if err != nil {
		return classify(err, fmt.Sprintf("write balance for account %d", id))
	}
	return requireRow(result, fmt.Sprintf("write balance for account %d", id))
}

func (t *ledgerTx) InsertTransaction(ctx context.Context, tx domain.Transaction) (domain.Transaction, error) {
	const query = `
INSERT INTO transactions (account_id, kind, amount, "timestamp", description)
VALUES (?, ?, ?, ?, ?)`

	result, err := t.tx.ExecContext(
		ctx,
		query,
		tx.AccountID,
		string(tx.Kind),
		tx.Amount.StringFixed(2),
		tx.Timestamp.UnixMicro(),
		tx.Description,
	)
	if err != nil {
		return domain.Transaction{}, classify(err, fmt.Sprintf("insert transaction for account %d", tx.AccountID))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("read transaction id: %w", err)
	}

	tx.ID = id
	tx.Timestamp = time.UnixMicro(tx.Timestamp.UnixMicro()).UTC()
	return tx, nil
}

func (t *ledgerTx) Transactions(ctx context.Context, accountID int64) ([]domain.Transaction, error) {
	const query = `
SELECT id, account_id, kind, amount, "timestamp", description
FROM transactions
WHERE account_id = ?
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
	defer t.release()

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
	defer t.release()

	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rollback ledger transaction: %w", err)
	}
	return nil
}

const selectAccount = `
SELECT id, customer_id, branch_id, type, balance, status, open_date
FROM accounts
WHERE id = ?`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (domain.Account, error) {
	var (
		account    domain.Account
		accountTyp string
		status     string
		openDate   int64
	)

	if err := row.Scan(
		&account.ID,
		&account.CustomerID,
		&account.BranchID,
		&accountTyp,
		&account.Balance,
		&status,
		&openDate,
	); err != nil {
		return domain.Account{}, err
	}

	account.Type = domain.AccountType(accountTyp)
	account.Status = domain.AccountStatus(status)
	account.OpenDate = time.UnixMicro(openDate).UTC()
	return account, nil
}

func scanTransactions(rows *sql.Rows, accountID int64) ([]domain.Transaction, error) {
	out := make([]domain.Transaction, 0)
	for rows.Next() {
		var (
			tx    domain.Transaction
			kind  string
			stamp int64
		)
		if err := rows.Scan(&tx.ID, &tx.AccountID, &kind, &tx.Amount, &stamp, &tx.Description); err != nil {
			return nil, fmt.Errorf("scan transaction for account %d: %w", accountID, err)
		}
		tx.Kind = domain.TransactionKind(kind)
		tx.Timestamp = time.UnixMicro(stamp).UTC()
		out = append(out, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, classify(err, fmt.Sprintf("iterate transactions for account %d", accountID))
	}
	return out, nil
}

func requireRow(result sql.Result, action string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", action, domain.ErrAccountNotFound)
	}
	return nil
}

// classify wraps err with domain.ErrBusy when SQLite reports the database
// locked past the busy timeout.
func classify(err error, action string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", action, domain.ErrAccountNotFound)
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code {
		case sqlite3.ErrBusy, sqlite3.ErrLocked:
			return fmt.Errorf("%s: %w: %w", action, domain.ErrBusy, err)
		}
	}

	return fmt.Errorf("%s: %w", action, err)
}

// release hands the pinned connection back to the pool with the default busy
// timeout, so writes outside a unit do not inherit a short one.
func (t *ledgerTx) release() {
	_ = setBusyTimeout(context.Background(), t.conn, defaultBusyTimeout)
	_ = t.conn.Close()
}

// setBusyTimeout rounds sub-millisecond timeouts up; busy_timeout = 0 would
// fail immediately instead of waiting.
func setBusyTimeout(ctx context.Context, conn *sql.Conn, timeout time.Duration) error {
	ms := timeout.Milliseconds()
	if ms < 1 {
		ms = 1
	}
	_, err := conn.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout = %d", ms))
	return err
}

func lowerBound(from time.Time) int64 {
	if from.IsZero() {
		return 0
	}
	return from.UnixMicro()
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
