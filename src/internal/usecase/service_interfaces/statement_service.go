package service_interfaces

import (
	"context"
	"time"

	"github.com/api-sage/bank-ledger/src/internal/domain"
)

type StatementService interface {
	Statement(ctx context.Context, accountID int64, from, to time.Time) ([]domain.Transaction, error)
}
