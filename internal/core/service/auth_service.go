package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/99minutos/access-control/internal/api/metrics"
	"github.com/99minutos/access-control/internal/core/domain"
	"github.com/99minutos/access-control/internal/core/ports"
)

// AuthService implements login, logout and the admin gate.
type AuthService struct {
	accounts ports.AccountRepository
	sessions ports.SessionRepository
	hasher   ports.SecretHasher
	writer   ports.Writer
	newToken func() (string, error)
	// dummyHash is verified against when the username or role does not
	// match, so every rejected login costs one hash comparison.
	dummyHash string
	log       zerolog.Logger
}

func NewAuthService(
	accounts ports.AccountRepository,
	sessions ports.SessionRepository,
	hasher ports.SecretHasher,
	writer ports.Writer,
	log zerolog.Logger,
) *AuthService {
	dummyHash, err := hasher.Hash("no such account")
	if err != nil {
		log.Warn().Err(err).Msg("could not prepare dummy hash")
	}
	return &AuthService{
		accounts:  accounts,
		sessions:  sessions,
		hasher:    hasher,
		writer:    writer,
		newToken:  GenerateToken,
		dummyHash: dummyHash,
		log:       log,
	}
}

// Login checks the (username, secret, role) triple and returns the session
// bound to that username and role, minting one only if none is live.
func (s *AuthService) Login(ctx context.Context, username, secret string, role domain.Role) (domain.Session, error) {
	if username == "" || secret == "" || role == "" {
		metrics.LoginAttemptsTotal.WithLabelValues("missing_credentials").Inc()
		return domain.Session{}, domain.ErrMissingCredentials
	}

	accounts, err := s.accounts.Get(ctx)
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return domain.Session{}, fmt.Errorf("login: %w", err)
	}

	i := domain.FindAccount(accounts, username)
	hash := s.dummyHash
	if i >= 0 && accounts[i].Role == role {
		hash = accounts[i].SecretHash
	}
	verified := s.hasher.Verify(secret, hash)
	if i < 0 || accounts[i].Role != role || !verified {
		metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
		s.log.Info().Str("username", username).Str("role", role.String()).Msg("login rejected")
		return domain.Session{}, domain.ErrInvalidCredentials
	}

	var (
		session domain.Session
		reused  bool
	)
	err = s.writer.Do(ctx, func(ctx context.Context) error {
		sessions, err := s.sessions.Get(ctx)
		if err != nil {
			return err
		}
		if existing, ok := sessions.FindBound(username, role); ok {
			session, reused = existing, true
			return nil
		}

		token, err := s.newToken()
		if err != nil {
			return err
		}
		session = domain.Session{Token: token, Username: username, Role: role}
		sessions[token] = session
		if err := s.sessions.Put(ctx, sessions); err != nil {
			return err
		}
		metrics.ActiveSessions.Set(float64(len(sessions)))
		return nil
	})
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return domain.Session{}, fmt.Errorf("login: %w", err)
	}

	result := "issued"
	if reused {
		result = "reused"
	}
	metrics.LoginAttemptsTotal.WithLabelValues(result).Inc()
	s.log.Info().Str("username", username).Str("role", role.String()).Str("session", result).Msg("login successful")

	return session, nil
}

// Logout removes the session keyed by token. Unknown or empty tokens are not
// an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	return s.writer.Do(ctx, func(ctx context.Context) error {
		sessions, err := s.sessions.Get(ctx)
		if err != nil {
			return fmt.Errorf("logout: %w", err)
		}
		sess, ok := sessions[token]
		if !ok {
			return nil
		}
		delete(sessions, token)
		if err := s.sessions.Put(ctx, sessions); err != nil {
			return fmt.Errorf("logout: %w", err)
		}
		metrics.ActiveSessions.Set(float64(len(sessions)))
		s.log.Info().Str("username", sess.Username).Str("role", sess.Role.String()).Msg("logged out")
		return nil
	})
}

// AuthorizeAdmin resolves token to a session whose role is admin. Failures
// are *domain.UnauthorizedError values carrying the failed check.
func (s *AuthService) AuthorizeAdmin(ctx context.Context, token string) (domain.Session, error) {
	if token == "" {
		return domain.Session{}, s.deny(domain.CauseMissingToken)
	}

	sessions, err := s.sessions.Get(ctx)
	if err != nil {
		return domain.Session{}, fmt.Errorf("authorize: %w", err)
	}

	sess, ok := sessions.Lookup(token)
	if !ok {
		return domain.Session{}, s.deny(domain.CauseUnknownToken)
	}
	if sess.Role != domain.RoleAdmin {
		return domain.Session{}, s.deny(domain.CauseInsufficientRole)
	}
	return sess, nil
}

func (s *AuthService) deny(cause domain.UnauthorizedCause) error {
	metrics.AdminGateDenialsTotal.WithLabelValues(cause.String()).Inc()
	s.log.Debug().Str("cause", cause.String()).Msg("admin gate denied")
	return domain.Unauthorized(cause)
}
