// @title           Access Control API
// @version         1.0
// @description     Role-tagged login, bearer sessions and the admin-gated account registry.
// @BasePath        /api
// @securityDefinitions.apikey AdminToken
// @in              header
// @name            Authorization
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/99minutos/access-control/internal/api"
	"github.com/99minutos/access-control/internal/core/domain"
	"github.com/99minutos/access-control/internal/core/ports"
	"github.com/99minutos/access-control/internal/core/service"
	filestore "github.com/99minutos/access-control/internal/infrastructure/db/file"
	mongostore "github.com/99minutos/access-control/internal/infrastructure/db/mongo"
	redisstore "github.com/99minutos/access-control/internal/infrastructure/db/redis"
	"github.com/99minutos/access-control/internal/infrastructure/queue"
	"github.com/99minutos/access-control/internal/pkg/config"
	"github.com/99minutos/access-control/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		log := logger.Init(logger.Options{Pretty: true})
		log.Fatal().Err(err).Msg("load config")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "access-control",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

type stores struct {
	accounts ports.AccountRepository
	sessions ports.SessionRepository
	pingers  []ports.Pinger
	closers  []func(context.Context) error
}

// app is the wired service: the HTTP handler plus what must be released
// after the server stops.
type app struct {
	handler http.Handler
	writer  *queue.Writer
	closers []func(context.Context) error
}

// close stops the writer, then the stores. Call it only after the HTTP server
// has drained, so in-flight mutations can still reach the writer.
func (a *app) close(log zerolog.Logger) {
	a.writer.Stop()
	for _, closeFn := range a.closers {
		if err := closeFn(context.Background()); err != nil {
			log.Warn().Err(err).Msg("close store")
		}
	}
}

func newApp(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*app, error) {
	hasher := service.NewBcryptHasher(cfg.BcryptCost)
	seed, err := service.BootstrapAccounts(hasher)
	if err != nil {
		return nil, err
	}

	st, err := openStores(ctx, cfg, seed, log)
	if err != nil {
		return nil, err
	}

	// The writer outlives ctx; app.close stops it once the server has drained.
	writer := queue.NewWriter(cfg.WriteQueueSize, log)
	writer.Start(context.Background())

	authService := service.NewAuthService(st.accounts, st.sessions, hasher, writer, log)
	accountService := service.NewAccountService(st.accounts, hasher, writer, cfg.ProtectedAccounts, log)

	e := api.NewRouter(api.Dependencies{
		Auth:        authService,
		Accounts:    accountService,
		Pingers:     st.pingers,
		Log:         log,
		APIPrefix:   cfg.APIPrefix,
		CORSOrigins: cfg.CORSOrigins,
	})

	return &app{handler: e, writer: writer, closers: st.closers}, nil
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.close(log)

	srv := &http.Server{
		Addr:    net.JoinHostPort("", cfg.Port),
		Handler: a.handler,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("accounts", cfg.AccountBackend).
			Str("sessions", cfg.SessionBackend).
			Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStores(ctx context.Context, cfg *config.Config, seed []domain.Account, log zerolog.Logger) (*stores, error) {
	st := &stores{}

	switch cfg.AccountBackend {
	case config.BackendMongo:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		st.closers = append(st.closers, client.Disconnect)

		repo := mongostore.NewAccountRepository(db, seed, log)
		if err := repo.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		if err := repo.Seed(ctx); err != nil {
			return nil, err
		}
		st.accounts = repo
		st.pingers = append(st.pingers, repo)
	default:
		repo := filestore.NewAccountRepository(cfg.DataDir, seed, log)
		st.accounts = repo
		st.pingers = append(st.pingers, repo)
	}

	switch cfg.SessionBackend {
	case config.BackendRedis:
		client, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		st.closers = append(st.closers, func(context.Context) error { return client.Close() })

		repo := redisstore.NewSessionRepository(client, cfg.Redis.SessionKey, log)
		st.sessions = repo
		st.pingers = append(st.pingers, repo)
	default:
		repo := filestore.NewSessionRepository(cfg.DataDir, log)
		st.sessions = repo
		st.pingers = append(st.pingers, repo)
	}

	return st, nil
}
