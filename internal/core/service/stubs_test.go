package service

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/access-control/internal/core/domain"
)

// stubAccountRepo is an in-memory ports.AccountRepository. Get returns a copy
// so callers can mutate it freely, as with the real stores.
type stubAccountRepo struct {
	mu       sync.Mutex
	accounts []domain.Account
	getErr   error
	putErr   error
	puts     int
}

func (r *stubAccountRepo) Get(_ context.Context) ([]domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	return append([]domain.Account(nil), r.accounts...), nil
}

func (r *stubAccountRepo) Put(_ context.Context, accounts []domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.putErr != nil {
		return r.putErr
	}
	r.puts++
	r.accounts = append([]domain.Account(nil), accounts...)
	return nil
}

func (r *stubAccountRepo) find(username string) (domain.Account, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := domain.FindAccount(r.accounts, username)
	if i < 0 {
		return domain.Account{}, false
	}
	return r.accounts[i], true
}

type stubSessionRepo struct {
	mu       sync.Mutex
	sessions domain.Sessions
	getErr   error
	putErr   error
}

func newStubSessionRepo() *stubSessionRepo {
	return &stubSessionRepo{sessions: domain.Sessions{}}
}

func (r *stubSessionRepo) Get(_ context.Context) (domain.Sessions, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	out := make(domain.Sessions, len(r.sessions))
	for k, v := range r.sessions {
		out[k] = v
	}
	return out, nil
}

func (r *stubSessionRepo) Put(_ context.Context, sessions domain.Sessions) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.putErr != nil {
		return r.putErr
	}
	r.sessions = make(domain.Sessions, len(sessions))
	for k, v := range sessions {
		r.sessions[k] = v
	}
	return nil
}

func (r *stubSessionRepo) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// inlineWriter runs each job on the calling goroutine, one at a time.
type inlineWriter struct {
	mu sync.Mutex
}

func (w *inlineWriter) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return fn(ctx)
}

// countingHasher records how many comparisons a caller performed.
type countingHasher struct {
	*BcryptHasher
	mu       sync.Mutex
	verifies int
}

func (h *countingHasher) Verify(secret, hash string) bool {
	h.mu.Lock()
	h.verifies++
	h.mu.Unlock()
	return h.BcryptHasher.Verify(secret, hash)
}

func testHasher() *BcryptHasher {
	return NewBcryptHasher(bcrypt.MinCost)
}

func seededAccountRepo(t *testing.T) *stubAccountRepo {
	t.Helper()
	seed, err := BootstrapAccounts(testHasher())
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	return &stubAccountRepo{accounts: seed}
}

func nopLogger() zerolog.Logger {
	return zerolog.Nop()
}
