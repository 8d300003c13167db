package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type AccountStatus string

const (
	AccountStatusActive AccountStatus = "ACTIVE"
	AccountStatusFrozen AccountStatus = "FROZEN"
	AccountStatusClosed AccountStatus = "CLOSED"
)

func (s AccountStatus) Valid() bool {
	switch s {
	case AccountStatusActive, AccountStatusFrozen, AccountStatusClosed:
		return true
	}
	return false
}

type AccountType string

const (
	AccountTypeSavings AccountType = "SAVINGS"
	AccountTypeCurrent AccountType = "CURRENT"
)

func (t AccountType) Valid() bool {
	return t == AccountTypeSavings || t == AccountTypeCurrent
}

// Account is the ledger's view of a bank account. Balance is the cached
// signed sum of the account's transactions and is only written under the
// account lock.
type Account struct {
	ID         int64
	CustomerID int64
	BranchID   int64
	Type       AccountType
	Balance    decimal.Decimal
	Status     AccountStatus
	OpenDate   time.Time
}
