package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"

	"github.com/vcalderon2009/note-taker/internal/config"
	"github.com/vcalderon2009/note-taker/internal/domain/classify"
	"github.com/vcalderon2009/note-taker/internal/domain/extract"
	"github.com/vcalderon2009/note-taker/internal/domain/idempotency"
	"github.com/vcalderon2009/note-taker/internal/domain/llm"
	"github.com/vcalderon2009/note-taker/internal/domain/pipeline"
	"github.com/vcalderon2009/note-taker/internal/domain/retry"
	"github.com/vcalderon2009/note-taker/internal/infrastructure/database"
	"github.com/vcalderon2009/note-taker/internal/infrastructure/llmprovider"
	"github.com/vcalderon2009/note-taker/internal/infrastructure/logger"
	"github.com/vcalderon2009/note-taker/internal/infrastructure/observability"
	"github.com/vcalderon2009/note-taker/internal/infrastructure/pipelinestore"
	"github.com/vcalderon2009/note-taker/internal/infrastructure/promptstore"
	artifactrepo "github.com/vcalderon2009/note-taker/internal/infrastructure/repository/artifact"
	categoryrepo "github.com/vcalderon2009/note-taker/internal/infrastructure/repository/category"
	conversationrepo "github.com/vcalderon2009/note-taker/internal/infrastructure/repository/conversation"
	idempotencyrepo "github.com/vcalderon2009/note-taker/internal/infrastructure/repository/idempotency"
	"github.com/vcalderon2009/note-taker/internal/interfaces/httpserver"
	"github.com/vcalderon2009/note-taker/internal/interfaces/httpserver/handlers"
	"github.com/vcalderon2009/note-taker/internal/worker"
)

// Application bundles the long-running pieces of the service.
type Application struct {
	httpServer *httpserver.HttpServer
	janitor    *worker.Janitor
	log        zerolog.Logger
}

// NewApplication wires the application from its components.
func NewApplication(httpServer *httpserver.HttpServer, janitor *worker.Janitor, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		janitor:    janitor,
		log:        log,
	}
}

// Start runs the janitor and HTTP server until the context is cancelled.
func (a *Application) Start(ctx context.Context) error {
	go a.janitor.Start(ctx)
	defer a.janitor.Stop()
	return a.httpServer.Run(ctx)
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	db, err := database.Connect(database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}

	if err := database.AutoMigrate(ctx, db, log); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	prompts, err := promptstore.New(cfg.PromptsPath, log)
	if err != nil {
		log.Fatal().Err(err).Msg("load prompts")
	}

	conversationRepository := conversationrepo.NewRepository(db)
	messageRepository := conversationrepo.NewMessageRepository(db)
	noteRepository := artifactrepo.NewNoteRepository(db)
	taskRepository := artifactrepo.NewTaskRepository(db)
	categoryRepository := categoryrepo.NewRepository(db)
	idempotencyRepository := idempotencyrepo.NewRepository(db)

	reasoner := llmprovider.NewClient(cfg.ReasonerURL, cfg.ReasonerAPIKey, cfg.ReasonerTimeout)

	classifierPolicy := retry.ClassifierPolicy()
	classifierPolicy.AttemptTimeout = cfg.ReasonerTimeout
	classifier := classify.NewClassifier(reasoner, cfg.ReasonerModel, prompts, classifierPolicy, cfg.BrainDumpThreshold, log)

	extractorPolicy := retry.ExtractorPolicy()
	extractorPolicy.MaxRetries = cfg.ExtractionRetries
	extractorPolicy.AttemptTimeout = cfg.ReasonerTimeout
	extractor := extract.NewExtractor(reasoner, cfg.ReasonerModel, prompts, extractorPolicy, log)

	window := llm.NewContextWindow(messageRepository, cfg.ContextWindowSize, cfg.ContextTokenBudget)
	guard := idempotency.NewGuard(idempotencyRepository, cfg.IdempotencyTTL)
	store := pipelinestore.NewStore(db)

	messagePipeline := pipeline.NewService(
		conversationRepository,
		window,
		classifier,
		extractor,
		store,
		guard,
		log,
	)

	handlerProvider := handlers.NewProvider(
		messagePipeline,
		classifier,
		conversationRepository,
		messageRepository,
		noteRepository,
		taskRepository,
		categoryRepository,
		prompts,
		log,
	)

	httpServer := httpserver.New(cfg, db, handlerProvider, log)
	janitor := worker.NewJanitor(idempotencyRepository, cfg.JanitorInterval, log)
	app := NewApplication(httpServer, janitor, log)

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
