package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/EdwardBetts/librephotos/internal/adapter/repo"
	"github.com/EdwardBetts/librephotos/internal/dispatch"
	"github.com/EdwardBetts/librephotos/internal/domain"
	"github.com/EdwardBetts/librephotos/internal/http/handlers"
	"github.com/EdwardBetts/librephotos/internal/http/httpapi"
	"github.com/EdwardBetts/librephotos/internal/infra"
	imgprovider "github.com/EdwardBetts/librephotos/internal/providers/image"
	"github.com/EdwardBetts/librephotos/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	jobs, cleanup, err := newJobRepository(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("api: job store setup failed")
	}
	defer cleanup()

	store, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("api: failed to configure storage")
	}

	generator, err := imgprovider.NewDiffusionClient(imgprovider.Options{
		BaseURL:    cfg.DiffusionBaseURL,
		HTTPClient: &http.Client{Timeout: cfg.GenerationTimeout},
		Logger:     &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("api: failed to configure diffusion client")
	}

	dispatcher := dispatch.New(jobs, store, generator, logger, dispatch.Options{
		Workers:    cfg.WorkerCount,
		QueueDepth: cfg.QueueDepth,
	})
	dispatcher.Start(ctx)

	app := handlers.NewApp(logger, jobs, dispatcher, store)
	router := httpapi.NewRouter(app, logger, cfg.RateLimitPerMin)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on %s", server.Addr())
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	dispatcher.Stop()
	logger.Info().Msg("server stopped")
}

// newJobRepository selects the durable Postgres store when DATABASE_URL is
// configured and falls back to the in-memory store otherwise.
func newJobRepository(ctx context.Context, cfg *infra.Config, logger infra.Logger) (domain.JobRepository, func(), error) {
	if cfg.DatabaseURL == "" {
		logger.Warn().Msg("api: DATABASE_URL not set, job records are kept in memory")
		return repo.NewJobRepositoryMemory(), func() {}, nil
	}
	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	jobs := repo.NewJobRepository(pool)
	if err := jobs.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return jobs, pool.Close, nil
}
