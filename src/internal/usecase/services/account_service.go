package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/api-sage/bank-ledger/src/internal/domain"
	"github.com/api-sage/bank-ledger/src/internal/logger"
	"github.com/api-sage/bank-ledger/src/internal/usecase/service_interfaces"
	"github.com/shopspring/decimal"
)

var _ service_interfaces.AccountService = (*AccountService)(nil)

// AccountService is the account-opening and status-policy hook. It never
// touches balances: accounts open at zero and opening deposits are postings.
type AccountService struct {
	store domain.LedgerStore
	clock *Clock
}

func NewAccountService(store domain.LedgerStore, clock *Clock) *AccountService {
	if clock == nil {
		clock = NewClock()
	}
	return &AccountService{store: store, clock: clock}
}

func (s *AccountService) OpenAccount(ctx context.Context, req domain.Account) (domain.Account, error) {
	logger.Info("account service open account", logger.Fields{
		"customerId": req.CustomerID,
		"branchId":   req.BranchID,
		"type":       string(req.Type),
	})

	req.Type = domain.AccountType(strings.ToUpper(strings.TrimSpace(string(req.Type))))
	var errs []string
	if req.CustomerID <= 0 {
		errs = append(errs, "customerId must be greater than zero")
	}
	if req.BranchID <= 0 {
		errs = append(errs, "branchId must be greater than zero")
	}
	if !req.Type.Valid() {
		errs = append(errs, "type must be SAVINGS or CURRENT")
	}
	if len(errs) > 0 {
		return domain.Account{}, fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(errs, "; "))
	}

	req.ID = 0
	req.Balance = decimal.Zero
	req.Status = domain.AccountStatusActive
	if req.OpenDate.IsZero() {
		req.OpenDate = s.clock.Now()
	}

	account, err := s.store.OpenAccount(ctx, req)
	if err != nil {
		err = storeError(err, 0, decimal.Zero, "open account")
		logFailure("account service open account failed", err, nil)
		return domain.Account{}, err
	}

	logger.Info("account service open account success", logger.Fields{"accountId": account.ID})
	return account, nil
}

func (s *AccountService) GetAccount(ctx context.Context, id int64) (domain.Account, error) {
	account, err := s.store.GetAccount(ctx, id)
	if err != nil {
		err = storeError(err, id, decimal.Zero, "get account")
		logFailure("account service get account failed", err, logger.Fields{"accountId": id})
		return domain.Account{}, err
	}
	return account, nil
}

// UpdateStatus applies an external freeze/close/reactivate decision.
func (s *AccountService) UpdateStatus(ctx context.Context, id int64, status domain.AccountStatus) error {
	status = domain.AccountStatus(strings.ToUpper(strings.TrimSpace(string(status))))
	fields := logger.Fields{"accountId": id, "status": string(status)}
	logger.Info("account service update status", fields)

	if !status.Valid() {
		return fmt.Errorf("%w: unsupported account status %q", domain.ErrValidation, status)
	}

	if err := s.store.UpdateAccountStatus(ctx, id, status); err != nil {
		err = storeError(err, id, decimal.Zero, "update account status")
		logFailure("account service update status failed", err, fields)
		return err
	}

	logger.Info("account service update status success", fields)
	return nil
}
