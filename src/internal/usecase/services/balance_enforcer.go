package services

import (
	"fmt"

	"github.com/api-sage/bank-ledger/src/internal/domain"
	"github.com/shopspring/decimal"
)

// BalanceEnforcer decides whether a posting may be admitted. It is pure: the
// caller must pass an account read under the lock it will write under.
type BalanceEnforcer struct{}

// ValidateAmount accepts strictly positive amounts with at most two
// fractional digits.
func ValidateAmount(amount decimal.Decimal) error {
	if le := checkAmount(0, amount); le != nil {
		return le
	}
	return nil
}

func checkAmount(accountID int64, amount decimal.Decimal) *domain.LedgerError {
	if !amount.IsPositive() {
		return &domain.LedgerError{Code: domain.CodeInvalidAmount, AccountID: accountID, Amount: amount, Reason: "amount must be greater than zero"}
	}
	if !amount.Equal(amount.Round(2)) {
		return &domain.LedgerError{Code: domain.CodeInvalidAmount, AccountID: accountID, Amount: amount, Reason: "amount must have at most two fractional digits"}
	}
	return nil
}

// validateKind rejects anything other than CREDIT or DEBIT as a malformed
// request; the amount may be perfectly valid.
func validateKind(accountID int64, kind domain.TransactionKind) error {
	if kind.Valid() {
		return nil
	}
	return fmt.Errorf("%w: unsupported transaction kind %q (account=%d)", domain.ErrValidation, string(kind), accountID)
}

func (BalanceEnforcer) Admit(account domain.Account, kind domain.TransactionKind, amount decimal.Decimal) error {
	if le := checkAmount(account.ID, amount); le != nil {
		return le
	}

	if err := validateKind(account.ID, kind); err != nil {
		return err
	}

	if account.Status != domain.AccountStatusActive {
		return &domain.LedgerError{
			Code:      domain.CodeAccountInactive,
			AccountID: account.ID,
			Amount:    amount,
			Status:    account.Status,
			Reason:    "account does not accept postings",
		}
	}

	if kind == domain.TransactionDebit && amount.GreaterThan(account.Balance) {
		return &domain.LedgerError{
			Code:      domain.CodeInsufficientFunds,
			AccountID: account.ID,
			Amount:    amount,
			Available: account.Balance,
			Reason:    "debit exceeds available balance",
		}
	}

	return nil
}

// Apply returns the balance after posting amount. It does not validate.
func (BalanceEnforcer) Apply(balance decimal.Decimal, kind domain.TransactionKind, amount decimal.Decimal) decimal.Decimal {
	return balance.Add(kind.Signed(amount))
}
