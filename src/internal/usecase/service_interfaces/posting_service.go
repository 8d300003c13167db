package service_interfaces

import (
	"context"

	"github.com/api-sage/bank-ledger/src/internal/domain"
	"github.com/shopspring/decimal"
)

type PostingService interface {
	Post(ctx context.Context, accountID int64, kind domain.TransactionKind, amount decimal.Decimal, description string) (domain.PostingResult, error)
}
