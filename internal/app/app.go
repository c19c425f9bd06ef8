package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	httpapp "atelieconnect/internal/app/http"
	"atelieconnect/internal/config"
	"atelieconnect/internal/domain/models"
	"atelieconnect/internal/lib/logger/sl"
	"atelieconnect/internal/metrics"
	"atelieconnect/internal/repository"
	"atelieconnect/internal/services/auth"
	directory "atelieconnect/internal/services/directory_service"
	sessions "atelieconnect/internal/services/session_service"
	workflow "atelieconnect/internal/services/workflow_service"
	filestorage "atelieconnect/internal/storage/filestorage"
	"atelieconnect/internal/storage/memory"
	redisapp "atelieconnect/internal/storage/redis"
	httprouters "atelieconnect/internal/transport/http"
)

type App struct {
	HTTPServer *httpapp.Server
	Catalog    *memory.Catalog

	closers []func() error
}

func New(ctx context.Context, log *slog.Logger, cfg *config.Config) (*App, error) {
	const op = "app.New"

	a := &App{}

	var seed []models.Work
	if !cfg.SkipSeed {
		seed = SeedWorks()
	}

	committer, works, err := a.backend(ctx, log, cfg, seed)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	a.Catalog = memory.NewCatalog(works...)
	metrics.CatalogWorks.Set(float64(a.Catalog.Len()))
	a.Catalog.Changes().Subscribe(func(e memory.CatalogChanged) {
		metrics.CatalogWorks.Set(float64(len(e.Works)))
	})

	files, err := filestorage.NewLocalFileStorage(cfg.FileStorage.BaseDir, cfg.FileStorage.BaseURL, cfg.FileStorage.MaxSize)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	authService := auth.New(log, cfg.Identity.TokenSecret, cfg.Identity.TokenTTL, models.CurrentUser{
		Name:      cfg.Identity.DefaultUser.Name,
		AvatarRef: cfg.Identity.DefaultUser.AvatarURL,
	})

	sessionService := sessions.NewSessionService(log, cfg.Session.TTL, func(sessionID string) *workflow.Workflow {
		return workflow.New(
			log.With(slog.String("session_id", sessionID)),
			a.Catalog,
			committer,
			authService,
			metrics.Recorder{},
		)
	})

	directoryService := directory.NewDirectoryService(log, FeaturedProviders(), a.Catalog)

	routers := httprouters.NewRouter(log, a.Catalog, sessionService, directoryService, authService, files)
	routers.SessionMaxAge = cfg.Session.TTL
	sessionService.OnDiscard(routers.DiscardSession)

	a.HTTPServer = httpapp.New(log, httpapp.Options{
		Host:          cfg.HTTP.Host,
		Port:          cfg.HTTP.Port,
		SessionSecret: cfg.Session.Secret,
		UploadsPrefix: cfg.FileStorage.BaseURL,
		UploadsDir:    cfg.FileStorage.BaseDir,
	}, routers)

	log.Info("app initialized",
		slog.String("backend", cfg.Commit.Backend),
		slog.Int("works", a.Catalog.Len()),
	)

	return a, nil
}

// backend builds the commit backend and returns the works the catalog
// starts with.
func (a *App) backend(ctx context.Context, log *slog.Logger, cfg *config.Config, seed []models.Work) (workflow.Committer, []models.Work, error) {
	const op = "app.backend"

	var repo repository.WorkRepository

	switch cfg.Commit.Backend {
	case config.BackendSimulated:
		return repository.NewSimulatedBackend(cfg.Commit.Delay, seed...), seed, nil

	case config.BackendRedis:
		client := redisapp.NewClient(cfg.Redis.RedisAddr, cfg.Redis.RedisPassword, cfg.Redis.RedisDB)
		a.closers = append(a.closers, client.Close)

		if err := client.HealthCheck(ctx); err != nil {
			return nil, nil, fmt.Errorf("%s: redis: %w", op, err)
		}

		repo = repository.NewRedisWorkRepo(client, cfg.Commit.KeyTTL)

	case config.BackendPostgres:
		r, err := repository.NewRepository(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: postgres: %w", op, err)
		}
		a.closers = append(a.closers, func() error { r.Close(); return nil })

		repo = r.Work

	default:
		return nil, nil, fmt.Errorf("%s: unknown backend %q", op, cfg.Commit.Backend)
	}

	works, err := repo.LoadWorks(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: load works: %w", op, err)
	}

	if len(works) == 0 && len(seed) > 0 {
		log.Info("seeding empty backend", slog.Int("works", len(seed)))

		if works, err = seedRepository(ctx, repo, seed); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	return repo, works, nil
}

func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil

	return errors.Join(errs...)
}

// Stop shuts the HTTP server down and releases backend connections.
func (a *App) Stop(log *slog.Logger) {
	if err := a.HTTPServer.Stop(); err != nil {
		log.Error("failed to stop http server", sl.Err(err))
	}

	if err := a.Close(); err != nil {
		log.Error("failed to close backend", sl.Err(err))
	}
}
