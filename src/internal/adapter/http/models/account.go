package models

import (
	"errors"
	"strings"
	"time"

	"github.com/api-sage/bank-ledger/src/internal/domain"
)

const timeLayout = time.RFC3339Nano

type OpenAccountRequest struct {
	CustomerID int64  `json:"customerId"`
	BranchID   int64  `json:"branchId"`
	Type       string `json:"type"`
	OpenDate   string `json:"openDate,omitempty"`
}

func (r OpenAccountRequest) Validate() error {
	var errs []string

	if r.CustomerID <= 0 {
		errs = append(errs, "customerId must be greater than zero")
	}
	if r.BranchID <= 0 {
		errs = append(errs, "branchId must be greater than zero")
	}

	accountType := domain.AccountType(strings.ToUpper(strings.TrimSpace(r.Type)))
	if accountType == "" {
		errs = append(errs, "type is required")
	} else if !accountType.Valid() {
		errs = append(errs, "type must be one of SAVINGS, CURRENT")
	}

	if strings.TrimSpace(r.OpenDate) != "" {
		if _, err := time.Parse(time.RFC3339, strings.TrimSpace(r.OpenDate)); err != nil {
			errs = append(errs, "openDate must be an RFC3339 timestamp")
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// ToDomain assumes Validate passed.
func (r OpenAccountRequest) ToDomain() domain.Account {
	account := domain.Account{
		CustomerID: r.CustomerID,
		BranchID:   r.BranchID,
		Type:       domain.AccountType(strings.ToUpper(strings.TrimSpace(r.Type))),
	}
	if openDate, err := time.Parse(time.RFC3339, strings.TrimSpace(r.OpenDate)); err == nil {
		account.OpenDate = openDate.UTC()
	}
	return account
}

type AccountResponse struct {
	ID         int64  `json:"id"`
	CustomerID int64  `json:"customerId"`
	BranchID   int64  `json:"branchId"`
	Type       string `json:"type"`
	Balance    string `json:"balance"`
	Status     string `json:"status"`
	OpenDate   string `json:"openDate"`
}

func NewAccountResponse(account domain.Account) AccountResponse {
	return AccountResponse{
		ID:         account.ID,
		CustomerID: account.CustomerID,
		BranchID:   account.BranchID,
		Type:       string(account.Type),
		Balance:    account.Balance.StringFixed(2),
		Status:     string(account.Status),
		OpenDate:   account.OpenDate.UTC().Format(timeLayout),
	}
}

type UpdateAccountStatusRequest struct {
	Status string `json:"status"`
}

func (r UpdateAccountStatusRequest) Validate() error {
	status := domain.AccountStatus(strings.ToUpper(strings.TrimSpace(r.Status)))
	if status == "" {
		return errors.New("status is required")
	}
	if !status.Valid() {
		return errors.New("status must be one of ACTIVE, FROZEN, CLOSED")
	}
	return nil
}
