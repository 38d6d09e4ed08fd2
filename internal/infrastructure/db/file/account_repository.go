package file

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/99minutos/access-control/internal/core/domain"
)

// AccountsFile is the document name used inside the data directory.
const AccountsFile = "users.json"

// AccountRepository implements ports.AccountRepository over a JSON file.
type AccountRepository struct {
	doc  document
	seed []domain.Account
	log  zerolog.Logger
}

// NewAccountRepository stores accounts in dir/users.json. seed is written the
// first time the file is found missing.
func NewAccountRepository(dir string, seed []domain.Account, log zerolog.Logger) *AccountRepository {
	return &AccountRepository{
		doc:  document{path: filepath.Join(dir, AccountsFile)},
		seed: seed,
		log:  log,
	}
}

// Get loads every account. A missing file is seeded; a corrupt file is logged
// and read as an empty registry.
func (r *AccountRepository) Get(_ context.Context) ([]domain.Account, error) {
	var accounts []domain.Account
	found, err := r.doc.load(&accounts)
	if err != nil {
		if errors.Is(err, errCorrupt) {
			r.log.Warn().Err(err).Str("path", r.doc.path).Msg("account file unreadable, treating as empty")
			return []domain.Account{}, nil
		}
		return nil, err
	}
	if !found {
		seed := append([]domain.Account{}, r.seed...)
		if err := r.doc.save(seed); err != nil {
			return nil, err
		}
		r.log.Info().Int("accounts", len(seed)).Str("path", r.doc.path).Msg("seeded bootstrap accounts")
		return seed, nil
	}
	if accounts == nil {
		accounts = []domain.Account{}
	}
	return accounts, nil
}

func (r *AccountRepository) Put(_ context.Context, accounts []domain.Account) error {
	if accounts == nil {
		accounts = []domain.Account{}
	}
	return r.doc.save(accounts)
}

func (r *AccountRepository) Name() string { return "accounts_file" }

func (r *AccountRepository) Ping(_ context.Context) error { return r.doc.ping() }
