package ports

import (
	"context"

	"github.com/99minutos/access-control/internal/core/domain"
)

// AccountService applies registry mutations. Every method assumes the caller
// already passed the admin gate.
type AccountService interface {
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	AddAccount(ctx context.Context, username, secret string, role domain.Role) ([]domain.Account, error)
	UpdateAccount(ctx context.Context, username string, patch domain.AccountPatch) (domain.Account, error)
	DeleteAccount(ctx context.Context, username string) ([]domain.Account, error)
}
