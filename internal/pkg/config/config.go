package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	BackendFile  = "file"
	BackendMongo = "mongo"
	BackendRedis = "redis"
)

type Config struct {
	Port      string `env:"PORT,       default=3000"`
	Env       string `env:"ENV,        default=development"`
	LogLevel  string `env:"LOG_LEVEL,  default=info"`
	APIPrefix string `env:"API_PREFIX, default=/api"`

	// AccountBackend is "file" or "mongo"; SessionBackend is "file" or "redis".
	AccountBackend string `env:"ACCOUNT_BACKEND, default=file"`
	SessionBackend string `env:"SESSION_BACKEND, default=file"`
	DataDir        string `env:"DATA_DIR,        default=./data"`

	ProtectedAccounts []string      `env:"PROTECTED_ACCOUNTS, default=admin1"`
	BcryptCost        int           `env:"BCRYPT_COST,        default=10"`
	WriteQueueSize    int           `env:"WRITE_QUEUE_SIZE,   default=64"`
	CORSOrigins       []string      `env:"CORS_ORIGINS,       default=*"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT,   default=10s"`

	Mongo MongoConfig
	Redis RedisConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=access_control"`
}

type RedisConfig struct {
	Addr       string `env:"REDIS_ADDR,        default=localhost:6379"`
	Password   string `env:"REDIS_PASSWORD"`
	DB         int    `env:"REDIS_DB,          default=0"`
	SessionKey string `env:"REDIS_SESSION_KEY, default=access-control:sessions"`
}

// IsProduction reports whether pretty console logging should be disabled.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration from l and validates the backend selection.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.AccountBackend {
	case BackendFile, BackendMongo:
	default:
		return fmt.Errorf("ACCOUNT_BACKEND must be %q or %q, got %q", BackendFile, BackendMongo, c.AccountBackend)
	}
	switch c.SessionBackend {
	case BackendFile, BackendRedis:
	default:
		return fmt.Errorf("SESSION_BACKEND must be %q or %q, got %q", BackendFile, BackendRedis, c.SessionBackend)
	}
	return nil
}
