package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/api-sage/bank-ledger/src/internal/domain"
	"github.com/api-sage/bank-ledger/src/internal/logger"
	"github.com/api-sage/bank-ledger/src/internal/usecase/service_interfaces"
	"github.com/shopspring/decimal"
)

var _ service_interfaces.PostingService = (*PostingService)(nil)

// PostingService applies single credit/debit postings.
type PostingService struct {
	store       domain.LedgerStore
	enforcer    BalanceEnforcer
	clock       *Clock
	lockTimeout time.Duration
}

func NewPostingService(store domain.LedgerStore, clock *Clock, lockTimeout time.Duration) *PostingService {
	if clock == nil {
		clock = NewClock()
	}
	return &PostingService{
		store:       store,
		clock:       clock,
		lockTimeout: lockTimeout,
	}
}

// Post applies exactly one transaction to one account: the transaction row
// and the balance update commit together or not at all.
func (s *PostingService) Post(ctx context.Context, accountID int64, kind domain.TransactionKind, amount decimal.Decimal, description string) (domain.PostingResult, error) {
	kind = domain.TransactionKind(strings.ToUpper(strings.TrimSpace(string(kind))))
	fields := logger.Fields{
		"accountId": accountID,
		"kind":      string(kind),
		"amount":    amount.StringFixed(2),
	}
	logger.Info("posting service post", fields)

	if err := ValidateAmount(amount); err != nil {
		return domain.PostingResult{}, s.fail(withAccount(err, accountID), fields)
	}
	if err := validateKind(accountID, kind); err != nil {
		return domain.PostingResult{}, s.fail(err, fields)
	}

	unit, err := beginUnit(ctx, s.store, s.clock, s.lockTimeout, accountID, amount)
	if err != nil {
		return domain.PostingResult{}, s.fail(err, fields)
	}
	defer unit.rollback()

	account, err := unit.lock(ctx, accountID, amount)
	if err != nil {
		return domain.PostingResult{}, s.fail(err, fields)
	}

	if err := s.enforcer.Admit(account, kind, amount); err != nil {
		return domain.PostingResult{}, s.fail(err, fields)
	}

	created, newBalance, err := unit.post(ctx, account, kind, amount, strings.TrimSpace(description))
	if err != nil {
		return domain.PostingResult{}, s.fail(err, fields)
	}

	if err := unit.commit(accountID, amount); err != nil {
		return domain.PostingResult{}, s.fail(err, fields)
	}

	logger.Info("posting service post success", logger.Fields{
		"accountId":     accountID,
		"transactionId": created.ID,
		"kind":          string(kind),
		"amount":        amount.StringFixed(2),
		"balance":       newBalance.StringFixed(2),
	})

	return domain.PostingResult{
		TransactionID: created.ID,
		NewBalance:    newBalance,
		Transaction:   created,
	}, nil
}

func (s *PostingService) fail(err error, fields logger.Fields) error {
	logFailure("posting service post failed", err, fields)
	return err
}

func withAccount(err error, accountID int64) error {
	if le, ok := err.(*domain.LedgerError); ok && le.AccountID == 0 {
		le.AccountID = accountID
	}
	return err
}

// logFailure logs caller errors at info and storage failures at error.
func logFailure(message string, err error, fields logger.Fields) {
	code := domain.CodeOf(err)
	merged := logger.Fields{"code": string(code)}
	for k, v := range fields {
		merged[k] = v
	}

	if code == "" && errors.Is(err, domain.ErrValidation) {
		merged["error"] = err.Error()
		logger.Info(message, merged)
		return
	}

	switch code {
	case domain.CodeStorageFailure, "":
		logger.Error(message, err, merged)
	case domain.CodeBusy:
		merged["error"] = err.Error()
		logger.Warn(message, merged)
	default:
		merged["error"] = err.Error()
		logger.Info(message, merged)
	}
}
