package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"legal-analyzer-be/internal/config"
	"legal-analyzer-be/internal/controller"
	"legal-analyzer-be/internal/model"
	"legal-analyzer-be/internal/pkg/logger"
	"legal-analyzer-be/internal/repository/contract"
	"legal-analyzer-be/internal/repository/implementation"
	"legal-analyzer-be/internal/repository/memory"
	"legal-analyzer-be/internal/repository/redisstore"
	"legal-analyzer-be/internal/service"
	"legal-analyzer-be/pkg/database"
	"legal-analyzer-be/pkg/embedding"
	pktNats "legal-analyzer-be/pkg/nats"
	"legal-analyzer-be/pkg/rag/index"
	"legal-analyzer-be/pkg/rag/response"
	ragsession "legal-analyzer-be/pkg/rag/session"
	sessionwf "legal-analyzer-be/pkg/workflow/session"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	SystemController   controller.ISystemController
	DocumentController controller.IDocumentController
	ChatController     controller.IChatController
	AnalysisController controller.IAnalysisController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger logger.ILogger

	closers []func() error
}

func NewContainer(ctx context.Context, cfg *config.Config, sysLogger logger.ILogger) (*Container, error) {
	c := &Container{Logger: sysLogger}

	// 1. Reasoning components
	components, err := NewComponents(cfg, sysLogger)
	if err != nil {
		return nil, err
	}
	embeddingProvider, err := NewEmbeddingProvider(cfg)
	if err != nil {
		return nil, err
	}
	sysLogger.Info("bootstrap", "Using embedding provider", map[string]interface{}{"provider": cfg.Ai.EmbeddingProvider})

	// 2. Infrastructure
	db, err := c.openDatabase(ctx, cfg)
	if err != nil {
		return nil, c.fail(err)
	}

	// 3. Index and sessions
	indexer, err := newIndexer(cfg, embeddingProvider, db, sysLogger)
	if err != nil {
		return nil, c.fail(err)
	}

	sessionRepo, err := c.newSessionRepository(ctx, cfg, indexer)
	if err != nil {
		return nil, c.fail(err)
	}
	registry := ragsession.NewRegistry(sessionRepo, sysLogger, ragsession.WithIndexDropper(indexer))
	sysLogger.Info("bootstrap", "Session store ready", map[string]interface{}{"backend": registry.Backend()})

	answerer := response.NewAnswerer(response.Config{
		TopK:        cfg.Rag.TopK,
		Temperature: cfg.Ai.ChatTemperature,
		Timeout:     cfg.Ai.AnswerTimeout,
	}, components.LLM, indexer, components.Prompts, sysLogger)
	chatWorkflow := sessionwf.New(registry, components.Validator, indexer, answerer, sysLogger)

	// 4. Event Bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermill.NewStdLogger(false, false),
	)
	c.closers = append(c.closers, pubSub.Close)

	var forwarder service.EventForwarder
	if cfg.Events.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.Events.NatsURL, sysLogger)
		if err != nil {
			sysLogger.Warn("bootstrap", "Failed to connect to NATS publisher, events stay in-process", map[string]interface{}{"error": err.Error()})
		} else {
			forwarder = natsPub
			c.closers = append(c.closers, func() error { natsPub.Close(); return nil })
		}
	}

	var analysisRepo contract.AnalysisRepository
	if db != nil {
		analysisRepo = implementation.NewAnalysisRepository(db)
	}

	// 5. Services
	publisherService := service.NewPublisherService(cfg.Events.AnalysisTopic, pubSub)
	c.ConsumerService = service.NewConsumerService(
		pubSub,
		cfg.Events.AnalysisTopic,
		analysisRepo,
		forwarder,
		logger.NewIsolatedLogger(cfg.App.AuditLogPath),
		sysLogger,
	)

	documentService := service.NewDocumentService(components.Document, components.Extractor, publisherService, sysLogger)
	chatService := service.NewChatService(chatWorkflow, components.Extractor, registry, publisherService, cfg.Rag.IndexBackend, sysLogger)
	analysisService := service.NewAnalysisService(analysisRepo)
	systemService := service.NewSystemService(cfg.App, registry)

	// 6. Controllers
	c.SystemController = controller.NewSystemController(systemService)
	c.DocumentController = controller.NewDocumentController(documentService)
	c.ChatController = controller.NewChatController(chatService)
	c.AnalysisController = controller.NewAnalysisController(analysisService)

	return c, nil
}

// Close releases infrastructure in reverse order of creation.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

func (c *Container) fail(err error) error {
	if cerr := c.Close(); cerr != nil {
		c.Logger.Warn("bootstrap", "Cleanup after failed start", map[string]interface{}{"error": cerr.Error()})
	}
	return err
}

// openDatabase returns nil without a connection string. A database that is
// configured but unreachable is fatal only for the pgvector index.
func (c *Container) openDatabase(ctx context.Context, cfg *config.Config) (*gorm.DB, error) {
	if cfg.Database.Connection == "" {
		if cfg.Rag.IndexBackend == index.PgvectorBackendName {
			return nil, fmt.Errorf("index backend %q requires DB_CONNECTION_STRING", index.PgvectorBackendName)
		}
		c.Logger.Info("bootstrap", "No database configured, analysis history disabled", nil)
		return nil, nil
	}

	db, err := database.NewGormDBFromDSN(ctx, cfg.Database.Connection, cfg.App.Debug)
	if err != nil {
		if cfg.Rag.IndexBackend == index.PgvectorBackendName {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		c.Logger.Warn("bootstrap", "Failed to connect to database, analysis history disabled", map[string]interface{}{"error": err.Error()})
		return nil, nil
	}
	c.closers = append(c.closers, func() error { return database.Close(db) })

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db, model.Migratable()...); err != nil {
			return nil, fmt.Errorf("migrate database: %w", err)
		}
		c.Logger.Info("bootstrap", "Database migrated", nil)
	}
	return db, nil
}

func (c *Container) newSessionRepository(ctx context.Context, cfg *config.Config, indexer *index.Indexer) (contract.SessionRepository, error) {
	if cfg.Session.Store != redisstore.BackendName {
		return memory.NewSessionRepository(cfg.Session.TTL), nil
	}

	opt, err := redis.ParseURL(cfg.Events.RedisURL)
	if err != nil {
		c.Logger.Warn("bootstrap", "Failed to parse Redis URL, using direct Addr", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{Addr: cfg.Events.RedisURL}
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	c.closers = append(c.closers, rdb.Close)
	return redisstore.NewSessionRepository(rdb, indexer, cfg.Session.TTL), nil
}

func newIndexer(cfg *config.Config, embedder embedding.EmbeddingProvider, db *gorm.DB, log logger.ILogger) (*index.Indexer, error) {
	indexCfg := index.Config{
		ChunkSize:    cfg.Rag.ChunkSize,
		ChunkOverlap: cfg.Rag.ChunkOverlap,
		Workers:      cfg.Rag.EmbedWorkers,
		EmbedTimeout: cfg.Rag.EmbedTimeout,
	}
	memoryBackend := index.NewMemoryBackend()

	if db == nil {
		return index.NewIndexer(indexCfg, embedder, memoryBackend, log), nil
	}
	pgBackend := index.NewPgvectorBackend(implementation.NewDocumentChunkRepository(db))
	if cfg.Rag.IndexBackend == index.PgvectorBackendName {
		return index.NewIndexer(indexCfg, embedder, pgBackend, log, memoryBackend), nil
	}
	return index.NewIndexer(indexCfg, embedder, memoryBackend, log, pgBackend), nil
}
