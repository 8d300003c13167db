package services

import (
	"context"
	"fmt"
	"time"

	"github.com/api-sage/bank-ledger/src/internal/domain"
	"github.com/api-sage/bank-ledger/src/internal/logger"
	"github.com/api-sage/bank-ledger/src/internal/usecase/service_interfaces"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var _ service_interfaces.TransferService = (*TransferService)(nil)

// TransferService moves funds between two accounts as a single unit of work
// holding both account locks.
type TransferService struct {
	store       domain.LedgerStore
	enforcer    BalanceEnforcer
	clock       *Clock
	lockTimeout time.Duration
}

func NewTransferService(store domain.LedgerStore, clock *Clock, lockTimeout time.Duration) *TransferService {
	if clock == nil {
		clock = NewClock()
	}
	return &TransferService{
		store:       store,
		clock:       clock,
		lockTimeout: lockTimeout,
	}
}

// Transfer debits fromAccountID and credits toAccountID by amount. Locks are
// always taken in ascending account id order, so opposite-direction
// transfers between the same pair cannot deadlock.
func (s *TransferService) Transfer(ctx context.Context, fromAccountID, toAccountID int64, amount decimal.Decimal) (domain.TransferResult, error) {
	req := domain.TransferRequest{FromAccountID: fromAccountID, ToAccountID: toAccountID, Amount: amount}
	fields := logger.Fields{
		"transferRef":   uuid.NewString(),
		"fromAccountId": fromAccountID,
		"toAccountId":   toAccountID,
		"amount":        amount.StringFixed(2),
	}
	logger.Info("transfer service transfer", fields)

	if fromAccountID == toAccountID {
		return domain.TransferResult{}, s.fail(&domain.LedgerError{
			Code:      domain.CodeSameAccount,
			AccountID: fromAccountID,
			Amount:    amount,
			Reason:    "cannot transfer to the same account",
		}, fields)
	}
	if err := ValidateAmount(amount); err != nil {
		return domain.TransferResult{}, s.fail(withCounterparty(withAccount(err, fromAccountID), toAccountID), fields)
	}

	unit, err := beginUnit(ctx, s.store, s.clock, s.lockTimeout, fromAccountID, amount)
	if err != nil {
		return domain.TransferResult{}, s.fail(withCounterparty(err, toAccountID), fields)
	}
	defer unit.rollback()

	first, second := req.LockOrder()
	locked := make(map[int64]domain.Account, 2)
	for _, id := range [2]int64{first, second} {
		account, err := unit.lock(ctx, id, amount)
		if err != nil {
			return domain.TransferResult{}, s.fail(withCounterparty(err, counterpartyOf(req, id)), fields)
		}
		locked[id] = account
	}

	source := locked[fromAccountID]
	destination := locked[toAccountID]

	if err := s.enforcer.Admit(source, domain.TransactionDebit, amount); err != nil {
		return domain.TransferResult{}, s.fail(withCounterparty(err, toAccountID), fields)
	}
	if err := s.enforcer.Admit(destination, domain.TransactionCredit, amount); err != nil {
		return domain.TransferResult{}, s.fail(withCounterparty(err, fromAccountID), fields)
	}

	debit, fromBalance, err := unit.post(ctx, source, domain.TransactionDebit, amount, fmt.Sprintf("transfer to account %d", toAccountID))
	if err != nil {
		return domain.TransferResult{}, s.fail(withCounterparty(err, toAccountID), fields)
	}
	credit, toBalance, err := unit.post(ctx, destination, domain.TransactionCredit, amount, fmt.Sprintf("transfer from account %d", fromAccountID))
	if err != nil {
		return domain.TransferResult{}, s.fail(withCounterparty(err, fromAccountID), fields)
	}

	if err := unit.commit(fromAccountID, amount); err != nil {
		return domain.TransferResult{}, s.fail(withCounterparty(err, toAccountID), fields)
	}

	logger.Info("transfer service transfer success", logger.Fields{
		"transferRef":         fields["transferRef"],
		"fromAccountId":       fromAccountID,
		"toAccountId":         toAccountID,
		"amount":              amount.StringFixed(2),
		"debitTransactionId":  debit.ID,
		"creditTransactionId": credit.ID,
	})

	return domain.TransferResult{
		DebitTransactionID:  debit.ID,
		CreditTransactionID: credit.ID,
		FromBalance:         fromBalance,
		ToBalance:           toBalance,
	}, nil
}

func (s *TransferService) fail(err error, fields logger.Fields) error {
	logFailure("transfer service transfer failed", err, fields)
	return err
}

func counterpartyOf(req domain.TransferRequest, id int64) int64 {
	if id == req.FromAccountID {
		return req.ToAccountID
	}
	return req.FromAccountID
}
