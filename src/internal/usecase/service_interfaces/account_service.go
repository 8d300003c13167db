package service_interfaces

import (
	"context"

	"github.com/api-sage/bank-ledger/src/internal/domain"
)

type AccountService interface {
	OpenAccount(ctx context.Context, req domain.Account) (domain.Account, error)
	GetAccount(ctx context.Context, id int64) (domain.Account, error)
	UpdateStatus(ctx context.Context, id int64, status domain.AccountStatus) error
}
