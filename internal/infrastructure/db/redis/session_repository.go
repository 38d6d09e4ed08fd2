package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/99minutos/access-control/internal/core/domain"
)

// DefaultSessionKey is the Redis hash holding every session.
const DefaultSessionKey = "access-control:sessions"

type sessionRecord struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// SessionRepository implements ports.SessionRepository on a single Redis
// hash: field = token, value = JSON {username, role}.
type SessionRepository struct {
	client *redis.Client
	key    string
	log    zerolog.Logger
}

// NewSessionRepository wraps client. An empty key selects DefaultSessionKey.
func NewSessionRepository(client *redis.Client, key string, log zerolog.Logger) *SessionRepository {
	if key == "" {
		key = DefaultSessionKey
	}
	return &SessionRepository{client: client, key: key, log: log}
}

// Get returns every session. Entries that fail to decode are logged and
// skipped.
func (r *SessionRepository) Get(ctx context.Context) (domain.Sessions, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	raw, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: load sessions: %v", domain.ErrStorage, err)
	}

	sessions := make(domain.Sessions, len(raw))
	for token, value := range raw {
		var rec sessionRecord
		if err := json.Unmarshal([]byte(value), &rec); err != nil {
			r.log.Warn().Err(err).Str("key", r.key).Msg("skipping unreadable session entry")
			continue
		}
		sessions[token] = domain.Session{Username: rec.Username, Role: domain.Role(rec.Role)}
	}
	return sessions, nil
}

// Put replaces the hash with sessions in one MULTI/EXEC transaction.
func (r *SessionRepository) Put(ctx context.Context, sessions domain.Sessions) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	fields := make(map[string]any, len(sessions))
	for token, sess := range sessions {
		value, err := json.Marshal(sessionRecord{Username: sess.Username, Role: sess.Role.String()})
		if err != nil {
			return fmt.Errorf("%w: encode session: %v", domain.ErrStorage, err)
		}
		fields[token] = string(value)
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.key)
		if len(fields) > 0 {
			pipe.HSet(ctx, r.key, fields)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: store sessions: %v", domain.ErrStorage, err)
	}
	return nil
}

func (r *SessionRepository) Name() string { return "redis" }

func (r *SessionRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
