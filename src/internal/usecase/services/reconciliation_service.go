package services

import (
	"context"
	"time"

	"github.com/api-sage/bank-ledger/src/internal/domain"
	"github.com/api-sage/bank-ledger/src/internal/logger"
	"github.com/api-sage/bank-ledger/src/internal/usecase/service_interfaces"
	"github.com/shopspring/decimal"
)

var _ service_interfaces.ReconciliationService = (*ReconciliationService)(nil)

// ReconciliationService re-derives balances from the transaction log. Both
// operations hold the account lock so the log and the balance are read at
// the same point.
type ReconciliationService struct {
	store       domain.LedgerStore
	lockTimeout time.Duration
}

func NewReconciliationService(store domain.LedgerStore, lockTimeout time.Duration) *ReconciliationService {
	return &ReconciliationService{store: store, lockTimeout: lockTimeout}
}

func (s *ReconciliationService) Reconcile(ctx context.Context, accountID int64) (domain.ReconcileReport, error) {
	return s.run(ctx, accountID, false)
}

// RebuildBalance overwrites the cached balance with the signed sum of the log
// when the two disagree.
func (s *ReconciliationService) RebuildBalance(ctx context.Context, accountID int64) (domain.ReconcileReport, error) {
	return s.run(ctx, accountID, true)
}

func (s *ReconciliationService) run(ctx context.Context, accountID int64, repair bool) (domain.ReconcileReport, error) {
	fields := logger.Fields{"accountId": accountID, "repair": repair}
	logger.Info("reconciliation service run", fields)

	unit, err := beginUnit(ctx, s.store, nil, s.lockTimeout, accountID, decimal.Zero)
	if err != nil {
		logFailure("reconciliation service run failed", err, fields)
		return domain.ReconcileReport{}, err
	}
	defer unit.rollback()

	account, err := unit.lock(ctx, accountID, decimal.Zero)
	if err != nil {
		logFailure("reconciliation service run failed", err, fields)
		return domain.ReconcileReport{}, err
	}

	transactions, err := unit.tx.Transactions(ctx, accountID)
	if err != nil {
		err = storeError(err, accountID, decimal.Zero, "read transaction log")
		logFailure("reconciliation service run failed", err, fields)
		return domain.ReconcileReport{}, err
	}

	sum := domain.SignedSum(transactions)
	report := domain.ReconcileReport{
		AccountID:        accountID,
		Balance:          account.Balance,
		LedgerSum:        sum,
		TransactionCount: len(transactions),
		Consistent:       account.Balance.Equal(sum),
	}

	if !report.Consistent {
		logger.Warn("reconciliation service balance drift", logger.Fields{
			"accountId": accountID,
			"balance":   account.Balance.StringFixed(2),
			"ledgerSum": sum.StringFixed(2),
		})
	}

	if repair && !report.Consistent {
		if err := unit.tx.WriteBalance(ctx, accountID, sum); err != nil {
			err = storeError(err, accountID, decimal.Zero, "write balance")
			logFailure("reconciliation service run failed", err, fields)
			return domain.ReconcileReport{}, err
		}
		if err := unit.commit(accountID, decimal.Zero); err != nil {
			logFailure("reconciliation service run failed", err, fields)
			return domain.ReconcileReport{}, err
		}
		report.Balance = sum
		report.Repaired = true
	}

	logger.Info("reconciliation service run success", logger.Fields{
		"accountId":        accountID,
		"consistent":       report.Consistent,
		"repaired":         report.Repaired,
		"transactionCount": report.TransactionCount,
	})
	return report, nil
}
