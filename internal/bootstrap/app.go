package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"assessment-backend/internal/attempts"
	"assessment-backend/internal/extract"
	"assessment-backend/internal/generation"
	"assessment-backend/internal/generation/gemini"
	"assessment-backend/internal/generation/openai"
	"assessment-backend/internal/identity"
	"assessment-backend/internal/pipeline"
	"assessment-backend/internal/quizzes"
	"assessment-backend/internal/services/health"
	"assessment-backend/internal/shared/config"
	"assessment-backend/internal/shared/server"
	"assessment-backend/internal/shared/storage/db"
	"assessment-backend/internal/shared/storage/object"
	localstore "assessment-backend/internal/shared/storage/object/local"
	s3store "assessment-backend/internal/shared/storage/object/s3"
	"assessment-backend/internal/shared/telemetry"
	"assessment-backend/internal/uploads"
)

// App holds shared dependencies.
type App struct {
	Config          config.Config
	Router          *gin.Engine
	DB              *sql.DB
	Store           object.ObjectStore
	Backend         generation.Backend
	QuizRepo        quizzes.Repo
	AttemptRepo     attempts.Repo
	PipelineService *pipeline.Service
	AttemptService  *attempts.Service

	closers []func() error
}

// Build validates the configuration and wires every dependency. A missing
// generation credential is fatal here rather than at the first request.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &App{Config: cfg}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if sqlDB != nil {
		app.DB = sqlDB
		app.closers = append(app.closers, sqlDB.Close)
	}

	app.Store, err = buildStore(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	if local, ok := app.Store.(*localstore.Store); ok && cfg.LocalSweepEvery > 0 {
		app.closers = append(app.closers, startSweeper(local, cfg.LocalSweepEvery, cfg.LocalSweepAge))
	}

	backend, closeBackend, err := buildBackend(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Backend = backend
	if closeBackend != nil {
		app.closers = append(app.closers, closeBackend)
	}

	resolver, err := buildResolver(cfg)
	if err != nil {
		app.Close()
		return nil, err
	}

	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		Resolver:        resolver,
		Health:          health.NewService(app.DB),
		PipelineHandler: pipeline.NewHandler(app.PipelineService),
		QuizHandler:     quizzes.NewHandler(app.QuizRepo),
		AttemptHandler:  attempts.NewHandler(app.AttemptService),
	})

	return app, nil
}

// Close releases the database pool and provider clients.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_repositories", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_repositories", map[string]any{"reason": "database connect failed", "err": err})
			return nil, nil
		}
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		store, err := s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildBackend(ctx context.Context, cfg config.Config) (generation.Backend, func() error, error) {
	switch cfg.GenerationProvider {
	case config.ProviderGemini:
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GenerationModel)
		if err != nil {
			return nil, nil, err
		}
		return client, client.Close, nil
	case config.ProviderOpenAI:
		client, err := openai.NewClient(cfg.OpenAIAPIKey, cfg.GenerationModel, cfg.OpenAIBaseURL, nil)
		if err != nil {
			return nil, nil, err
		}
		return client, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown generation provider %q", cfg.GenerationProvider)
	}
}

func buildResolver(cfg config.Config) (identity.Resolver, error) {
	var chain identity.Chain
	if cfg.SessionSecret != "" {
		session, err := identity.NewSessionResolver(cfg.SessionSecret, cfg.SessionCookie)
		if err != nil {
			return nil, err
		}
		chain = append(chain, session)
	}
	if len(cfg.ClaimsIssuers) > 0 {
		claims, err := identity.NewClaimsResolver(cfg.ClaimsSecret, cfg.ClaimsIssuers)
		if err != nil {
			return nil, err
		}
		chain = append(chain, claims)
	}
	if cfg.GuestEnabled {
		chain = append(chain, identity.GuestResolver{})
	}
	if len(chain) == 0 {
		return nil, errors.New("no identity resolver configured")
	}
	return chain, nil
}

func buildServices(app *App) {
	cfg := app.Config
	if app.DB != nil {
		app.QuizRepo = &quizzes.PGRepo{DB: app.DB}
		app.AttemptRepo = &attempts.PGRepo{DB: app.DB}
	} else {
		app.QuizRepo = quizzes.NewMemoryRepo()
		app.AttemptRepo = attempts.NewMemoryRepo()
	}

	client := generation.NewClient(app.Backend)
	client.MaxRetries = cfg.GenerationMaxRetries
	client.Timeout = cfg.GenerationTimeout
	client.BackoffBase = cfg.GenerationBackoffBase
	client.BackoffMax = cfg.GenerationBackoffMax
	client.MaxPromptChars = cfg.GenerationMaxPromptChars

	app.PipelineService = &pipeline.Service{
		Uploads:      uploads.NewManager(app.Store, cfg.UploadMaxBytes, cfg.UploadAllowedTypes),
		Extractor:    &extract.Extractor{Store: app.Store, MinChars: cfg.ExtractMinChars},
		Generator:    client,
		Assembler:    quizzes.NewAssembler(app.QuizRepo),
		DefaultCount: cfg.DefaultQuestionCount,
		MaxCount:     cfg.MaxQuestionCount,
	}
	app.AttemptService = attempts.NewService(app.QuizRepo, app.AttemptRepo)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local", "test":
		return true
	default:
		return false
	}
}

type sweeper interface {
	Sweep(ctx context.Context, maxAge time.Duration) (int, error)
}

// startSweeper periodically removes uploads older than maxAge. The returned
// func stops the loop and waits for an in-flight sweep to finish.
func startSweeper(store sweeper, every, maxAge time.Duration) func() error {
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := store.Sweep(ctx, maxAge)
				if err != nil && ctx.Err() == nil {
					telemetry.Warn("upload.sweep.failed", map[string]any{"err": err})
				}
				if removed > 0 {
					telemetry.Warn("upload.sweep.removed", map[string]any{"count": removed, "max_age": maxAge.String()})
				}
			}
		}
	}()
	return func() error {
		cancel()
		<-stopped
		return nil
	}
}
