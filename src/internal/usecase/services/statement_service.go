package services

import (
	"context"
	"time"

	"github.com/api-sage/bank-ledger/src/internal/domain"
	"github.com/api-sage/bank-ledger/src/internal/logger"
	"github.com/api-sage/bank-ledger/src/internal/usecase/service_interfaces"
	"github.com/shopspring/decimal"
)

var _ service_interfaces.StatementService = (*StatementService)(nil)

type StatementService struct {
	store domain.LedgerStore
}

func NewStatementService(store domain.LedgerStore) *StatementService {
	return &StatementService{store: store}
}

// Statement returns the account's transactions with from <= Timestamp <= to in
// ascending timestamp order. A zero to leaves the range open-ended; a range
// with to before from is empty. No locks are taken.
func (s *StatementService) Statement(ctx context.Context, accountID int64, from, to time.Time) ([]domain.Transaction, error) {
	fields := logger.Fields{
		"accountId": accountID,
		"from":      from.UTC().Format(time.RFC3339Nano),
		"to":        to.UTC().Format(time.RFC3339Nano),
	}
	logger.Info("statement service statement", fields)

	if _, err := s.store.GetAccount(ctx, accountID); err != nil {
		err = storeError(err, accountID, decimal.Zero, "get account")
		logFailure("statement service statement failed", err, fields)
		return nil, err
	}

	if !to.IsZero() && to.Before(from) {
		return []domain.Transaction{}, nil
	}

	transactions, err := s.store.ListTransactions(ctx, accountID, from, to)
	if err != nil {
		err = storeError(err, accountID, decimal.Zero, "list transactions")
		logFailure("statement service statement failed", err, fields)
		return nil, err
	}

	logger.Info("statement service statement success", logger.Fields{
		"accountId": accountID,
		"count":     len(transactions),
	})
	return transactions, nil
}
