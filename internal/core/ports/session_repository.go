package ports

import (
	"context"

	"github.com/99minutos/access-control/internal/core/domain"
)

// SessionRepository holds every live session keyed by token, with the same
// full-replace discipline as AccountRepository.
type SessionRepository interface {
	Get(ctx context.Context) (domain.Sessions, error)
	Put(ctx context.Context, sessions domain.Sessions) error
}
