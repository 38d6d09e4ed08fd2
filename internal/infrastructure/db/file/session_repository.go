package file

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/99minutos/access-control/internal/core/domain"
)

// SessionsFile is the document name used inside the data directory.
const SessionsFile = "sessions.json"

// SessionRepository implements ports.SessionRepository over a JSON file
// mapping token to {username, role}.
type SessionRepository struct {
	doc document
	log zerolog.Logger
}

func NewSessionRepository(dir string, log zerolog.Logger) *SessionRepository {
	return &SessionRepository{doc: document{path: filepath.Join(dir, SessionsFile)}, log: log}
}

// Get loads every session. A missing file is created empty; a corrupt file is
// logged and read as no sessions.
func (r *SessionRepository) Get(_ context.Context) (domain.Sessions, error) {
	sessions := domain.Sessions{}
	found, err := r.doc.load(&sessions)
	if err != nil {
		if errors.Is(err, errCorrupt) {
			r.log.Warn().Err(err).Str("path", r.doc.path).Msg("session file unreadable, treating as empty")
			return domain.Sessions{}, nil
		}
		return nil, err
	}
	if !found {
		if err := r.doc.save(sessions); err != nil {
			return nil, err
		}
		return sessions, nil
	}
	if sessions == nil {
		sessions = domain.Sessions{}
	}
	return sessions, nil
}

func (r *SessionRepository) Put(_ context.Context, sessions domain.Sessions) error {
	if sessions == nil {
		sessions = domain.Sessions{}
	}
	return r.doc.save(sessions)
}

func (r *SessionRepository) Name() string { return "sessions_file" }

func (r *SessionRepository) Ping(_ context.Context) error { return r.doc.ping() }
