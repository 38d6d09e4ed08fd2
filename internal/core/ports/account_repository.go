package ports

import (
	"context"

	"github.com/99minutos/access-control/internal/core/domain"
)

// AccountRepository holds the account registry. Put replaces the whole
// collection; callers always read-modify-write.
type AccountRepository interface {
	Get(ctx context.Context) ([]domain.Account, error)
	Put(ctx context.Context, accounts []domain.Account) error
}
