package service_interfaces

import (
	"context"

	"github.com/api-sage/bank-ledger/src/internal/domain"
	"github.com/shopspring/decimal"
)

type TransferService interface {
	Transfer(ctx context.Context, fromAccountID, toAccountID int64, amount decimal.Decimal) (domain.TransferResult, error)
}
