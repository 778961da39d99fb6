//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/vcalderon2009/note-taker/internal/config"
	"github.com/vcalderon2009/note-taker/internal/domain/artifact"
	"github.com/vcalderon2009/note-taker/internal/domain/classify"
	"github.com/vcalderon2009/note-taker/internal/domain/conversation"
	"github.com/vcalderon2009/note-taker/internal/domain/extract"
	"github.com/vcalderon2009/note-taker/internal/domain/idempotency"
	"github.com/vcalderon2009/note-taker/internal/domain/llm"
	"github.com/vcalderon2009/note-taker/internal/domain/pipeline"
	"github.com/vcalderon2009/note-taker/internal/domain/prompts"
	"github.com/vcalderon2009/note-taker/internal/domain/retry"
	"github.com/vcalderon2009/note-taker/internal/infrastructure/database"
	"github.com/vcalderon2009/note-taker/internal/infrastructure/llmprovider"
	"github.com/vcalderon2009/note-taker/internal/infrastructure/logger"
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

var repositorySet = wire.NewSet(
	conversationrepo.NewRepository,
	wire.Bind(new(conversation.Repository), new(*conversationrepo.Repository)),
	conversationrepo.NewMessageRepository,
	wire.Bind(new(conversation.MessageRepository), new(*conversationrepo.MessageRepository)),
	artifactrepo.NewNoteRepository,
	wire.Bind(new(artifact.NoteRepository), new(*artifactrepo.NoteRepository)),
	artifactrepo.NewTaskRepository,
	wire.Bind(new(artifact.TaskRepository), new(*artifactrepo.TaskRepository)),
	categoryrepo.NewRepository,
	wire.Bind(new(artifact.CategoryRepository), new(*categoryrepo.Repository)),
	idempotencyrepo.NewRepository,
	wire.Bind(new(idempotency.Repository), new(*idempotencyrepo.Repository)),
)

var pipelineSet = wire.NewSet(
	newReasonerClient,
	wire.Bind(new(llm.Provider), new(*llmprovider.Client)),
	newPromptStore,
	wire.Bind(new(prompts.Source), new(*promptstore.Store)),
	wire.Bind(new(handlers.PromptReloader), new(*promptstore.Store)),
	newClassifier,
	wire.Bind(new(pipeline.Classifier), new(*classify.Classifier)),
	newExtractor,
	wire.Bind(new(pipeline.Extractor), new(*extract.Extractor)),
	newContextWindow,
	wire.Bind(new(pipeline.ContextLoader), new(*llm.ContextWindow)),
	pipelinestore.NewStore,
	wire.Bind(new(pipeline.Store), new(*pipelinestore.Store)),
	newGuard,
	pipeline.NewService,
	wire.Bind(new(handlers.MessagePipeline), new(*pipeline.Service)),
)

// BuildApplication assembles the service with Wire.
func BuildApplication(ctx context.Context) (*Application, error) {
	wire.Build(
		config.Load,
		logger.New,
		newDatabaseConfig,
		newGormDB,
		repositorySet,
		pipelineSet,
		handlers.NewProvider,
		httpserver.New,
		newJanitor,
		NewApplication,
	)
	return nil, nil
}

func newDatabaseConfig(cfg *config.Config) database.Config {
	return database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	}
}

func newGormDB(ctx context.Context, cfg database.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(ctx, db, log); err != nil {
		return nil, err
	}
	return db, nil
}

func newReasonerClient(cfg *config.Config) *llmprovider.Client {
	return llmprovider.NewClient(cfg.ReasonerURL, cfg.ReasonerAPIKey, cfg.ReasonerTimeout)
}

func newPromptStore(cfg *config.Config, log zerolog.Logger) (*promptstore.Store, error) {
	return promptstore.New(cfg.PromptsPath, log)
}

func newClassifier(cfg *config.Config, provider llm.Provider, source prompts.Source, log zerolog.Logger) *classify.Classifier {
	policy := retry.ClassifierPolicy()
	policy.AttemptTimeout = cfg.ReasonerTimeout
	return classify.NewClassifier(provider, cfg.ReasonerModel, source, policy, cfg.BrainDumpThreshold, log)
}

func newExtractor(cfg *config.Config, provider llm.Provider, source prompts.Source, log zerolog.Logger) *extract.Extractor {
	policy := retry.ExtractorPolicy()
	policy.MaxRetries = cfg.ExtractionRetries
	policy.AttemptTimeout = cfg.ReasonerTimeout
	return extract.NewExtractor(provider, cfg.ReasonerModel, source, policy, log)
}

func newContextWindow(cfg *config.Config, messages conversation.MessageRepository) *llm.ContextWindow {
	return llm.NewContextWindow(messages, cfg.ContextWindowSize, cfg.ContextTokenBudget)
}

func newGuard(cfg *config.Config, repo idempotency.Repository) *idempotency.Guard {
	return idempotency.NewGuard(repo, cfg.IdempotencyTTL)
}

func newJanitor(cfg *config.Config, repo idempotency.Repository, log zerolog.Logger) *worker.Janitor {
	return worker.NewJanitor(repo, cfg.JanitorInterval, log)
}
