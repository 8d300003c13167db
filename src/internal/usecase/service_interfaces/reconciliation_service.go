package service_interfaces

import (
	"context"

	"github.com/api-sage/bank-ledger/src/internal/domain"
)

type ReconciliationService interface {
	Reconcile(ctx context.Context, accountID int64) (domain.ReconcileReport, error)
	RebuildBalance(ctx context.Context, accountID int64) (domain.ReconcileReport, error)
}
