package service

import (
	"fmt"

	"github.com/99minutos/access-control/internal/core/domain"
	"github.com/99minutos/access-control/internal/core/ports"
)

// bootstrapCredentials are written to an empty account store, one per role.
// They are well known and must be changed after first login.
var bootstrapCredentials = []struct {
	username string
	secret   string
	role     domain.Role
}{
	{"operator1", "op123", domain.RoleOperator},
	{"tech1", "tech123", domain.RoleTechnician},
	{"admin1", "admin123", domain.RoleAdmin},
}

// BootstrapAccounts returns the seed accounts with their secrets hashed by h.
func BootstrapAccounts(h ports.SecretHasher) ([]domain.Account, error) {
	accounts := make([]domain.Account, 0, len(bootstrapCredentials))
	for _, c := range bootstrapCredentials {
		hash, err := h.Hash(c.secret)
		if err != nil {
			return nil, fmt.Errorf("hash bootstrap secret for %s: %w", c.username, err)
		}
		accounts = append(accounts, domain.Account{Username: c.username, SecretHash: hash, Role: c.role})
	}
	return accounts, nil
}
