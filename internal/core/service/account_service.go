package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/99minutos/access-control/internal/api/metrics"
	"github.com/99minutos/access-control/internal/core/domain"
	"github.com/99minutos/access-control/internal/core/ports"
)

// AccountService applies create, update and delete to the account registry
// while keeping usernames unique and protected accounts untouched.
type AccountService struct {
	repo      ports.AccountRepository
	hasher    ports.SecretHasher
	writer    ports.Writer
	protected map[string]struct{}
	log       zerolog.Logger
}

func NewAccountService(
	repo ports.AccountRepository,
	hasher ports.SecretHasher,
	writer ports.Writer,
	protected []string,
	log zerolog.Logger,
) *AccountService {
	set := make(map[string]struct{}, len(protected))
	for _, username := range protected {
		if username != "" {
			set[username] = struct{}{}
		}
	}
	return &AccountService{repo: repo, hasher: hasher, writer: writer, protected: set, log: log}
}

func (s *AccountService) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	accounts, err := s.repo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

// AddAccount appends a new account and returns the resulting registry.
func (s *AccountService) AddAccount(ctx context.Context, username, secret string, role domain.Role) ([]domain.Account, error) {
	if username == "" || secret == "" || role == "" {
		return nil, s.fail("add", domain.ErrMissingField)
	}
	if !role.Valid() {
		return nil, s.fail("add", domain.ErrInvalidRole)
	}

	hash, err := s.hasher.Hash(secret)
	if err != nil {
		return nil, s.fail("add", fmt.Errorf("hash secret: %w", err))
	}

	var out []domain.Account
	err = s.writer.Do(ctx, func(ctx context.Context) error {
		accounts, err := s.repo.Get(ctx)
		if err != nil {
			return err
		}
		if domain.FindAccount(accounts, username) >= 0 {
			return domain.ErrUserExists
		}
		accounts = append(accounts, domain.Account{Username: username, SecretHash: hash, Role: role})
		if err := s.repo.Put(ctx, accounts); err != nil {
			return err
		}
		out = accounts
		return nil
	})
	if err != nil {
		return nil, s.fail("add", err)
	}

	s.succeed(ctx, "add", username)
	return out, nil
}

// UpdateAccount applies the supplied fields of patch to username. Absent and
// empty fields are left unchanged.
func (s *AccountService) UpdateAccount(ctx context.Context, username string, patch domain.AccountPatch) (domain.Account, error) {
	if patch.Empty() {
		return domain.Account{}, s.fail("update", domain.ErrNothingToUpdate)
	}

	var role domain.Role
	if patch.Role != nil && *patch.Role != "" {
		role = *patch.Role
		if !role.Valid() {
			return domain.Account{}, s.fail("update", domain.ErrInvalidRole)
		}
	}

	var hash string
	if patch.Secret != nil && *patch.Secret != "" {
		h, err := s.hasher.Hash(*patch.Secret)
		if err != nil {
			return domain.Account{}, s.fail("update", fmt.Errorf("hash secret: %w", err))
		}
		hash = h
	}

	var updated domain.Account
	err := s.writer.Do(ctx, func(ctx context.Context) error {
		accounts, err := s.repo.Get(ctx)
		if err != nil {
			return err
		}
		i := domain.FindAccount(accounts, username)
		if i < 0 {
			return domain.ErrUserNotFound
		}
		if s.isProtected(username) {
			return domain.ErrProtectedAccount
		}
		if hash != "" {
			accounts[i].SecretHash = hash
		}
		if role != "" {
			accounts[i].Role = role
		}
		if err := s.repo.Put(ctx, accounts); err != nil {
			return err
		}
		updated = accounts[i]
		return nil
	})
	if err != nil {
		return domain.Account{}, s.fail("update", err)
	}

	s.succeed(ctx, "update", username)
	return updated, nil
}

// DeleteAccount removes username and returns the resulting registry. Deleting
// an absent account is an error, not a no-op.
func (s *AccountService) DeleteAccount(ctx context.Context, username string) ([]domain.Account, error) {
	var out []domain.Account
	err := s.writer.Do(ctx, func(ctx context.Context) error {
		accounts, err := s.repo.Get(ctx)
		if err != nil {
			return err
		}
		i := domain.FindAccount(accounts, username)
		if i < 0 {
			return domain.ErrUserNotFound
		}
		if s.isProtected(username) {
			return domain.ErrProtectedAccount
		}
		accounts = append(accounts[:i], accounts[i+1:]...)
		if err := s.repo.Put(ctx, accounts); err != nil {
			return err
		}
		out = accounts
		return nil
	})
	if err != nil {
		return nil, s.fail("delete", err)
	}

	s.succeed(ctx, "delete", username)
	return out, nil
}

func (s *AccountService) isProtected(username string) bool {
	_, ok := s.protected[username]
	return ok
}

func (s *AccountService) succeed(ctx context.Context, op, username string) {
	metrics.AccountMutationsTotal.WithLabelValues(op, "ok").Inc()
	s.log.Info().Str("op", op).Str("actor", actorFrom(ctx)).Str("username", username).Msg("account mutated")
}

func (s *AccountService) fail(op string, err error) error {
	metrics.AccountMutationsTotal.WithLabelValues(op, failureReason(err)).Inc()
	return fmt.Errorf("%s account: %w", op, err)
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrMissingField):
		return "missing_field"
	case errors.Is(err, domain.ErrInvalidRole):
		return "invalid_role"
	case errors.Is(err, domain.ErrUserExists):
		return "duplicate"
	case errors.Is(err, domain.ErrUserNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrNothingToUpdate):
		return "nothing_to_update"
	case errors.Is(err, domain.ErrProtectedAccount):
		return "protected"
	default:
		return "error"
	}
}
