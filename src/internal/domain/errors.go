package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrAccountNotFound   = errors.New("account not found")
	ErrAccountInactive   = errors.New("account is not active")
	ErrSameAccount       = errors.New("source and destination accounts are the same")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrBusy              = errors.New("account lock not acquired within timeout")
	ErrStorageFailure    = errors.New("storage failure")

	// ErrValidation marks malformed account-service requests.
	ErrValidation = errors.New("validation failed")
)

// ErrorCode classifies a LedgerError. Busy is transient and safe to retry;
// StorageFailure means the backend rejected the atomic commit and nothing
// from the operation was applied.
type ErrorCode string

const (
	CodeInsufficientFunds ErrorCode = "INSUFFICIENT_FUNDS"
	CodeAccountNotFound   ErrorCode = "ACCOUNT_NOT_FOUND"
	CodeAccountInactive   ErrorCode = "ACCOUNT_INACTIVE"
	CodeSameAccount       ErrorCode = "SAME_ACCOUNT"
	CodeInvalidAmount     ErrorCode = "INVALID_AMOUNT"
	CodeBusy              ErrorCode = "BUSY"
	CodeStorageFailure    ErrorCode = "STORAGE_FAILURE"
)

var codeSentinels = map[ErrorCode]error{
	CodeInsufficientFunds: ErrInsufficientFunds,
	CodeAccountNotFound:   ErrAccountNotFound,
	CodeAccountInactive:   ErrAccountInactive,
	CodeSameAccount:       ErrSameAccount,
	CodeInvalidAmount:     ErrInvalidAmount,
	CodeBusy:              ErrBusy,
	CodeStorageFailure:    ErrStorageFailure,
}

// LedgerError is returned by every ledger operation. It matches its code's
// sentinel with errors.Is, so callers can write errors.Is(err, ErrInsufficientFunds)
// and still reach the structured fields with errors.As.
type LedgerError struct {
	Code           ErrorCode
	AccountID      int64
	CounterpartyID int64
	Amount         decimal.Decimal
	Available      decimal.Decimal
	Status         AccountStatus
	Reason         string
	Err            error
}

func (e *LedgerError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}

	details := make([]string, 0, 5)
	if e.AccountID != 0 {
		details = append(details, fmt.Sprintf("account=%d", e.AccountID))
	}
	if e.CounterpartyID != 0 {
		details = append(details, fmt.Sprintf("counterparty=%d", e.CounterpartyID))
	}
	if !e.Amount.IsZero() || e.Code == CodeInvalidAmount {
		details = append(details, "amount="+e.Amount.StringFixed(2))
	}
	if e.Code == CodeInsufficientFunds {
		details = append(details, "available="+e.Available.StringFixed(2))
	}
	if e.Status != "" {
		details = append(details, "status="+string(e.Status))
	}
	if len(details) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(details, ", "))
		b.WriteString(")")
	}

	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *LedgerError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if sentinel, ok := codeSentinels[e.Code]; ok {
		errs = append(errs, sentinel)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// CodeOf returns the code of the first LedgerError in err's chain, or "" if
// there is none.
func CodeOf(err error) ErrorCode {
	var le *LedgerError
	if errors.As(err, &le) {
		return le.Code
	}
	return ""
}
