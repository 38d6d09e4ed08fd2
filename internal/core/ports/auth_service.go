package ports

import (
	"context"

	"github.com/99minutos/access-control/internal/core/domain"
)

// AuthService issues, revokes and checks bearer sessions.
type AuthService interface {
	Login(ctx context.Context, username, secret string, role domain.Role) (domain.Session, error)
	Logout(ctx context.Context, token string) error
	AuthorizeAdmin(ctx context.Context, token string) (domain.Session, error)
}
