package backend

import (
	"context"
	"fmt"

	"finanzy/internal/amqp"
	"finanzy/internal/log"
	"finanzy/internal/remote/memory"
	"finanzy/internal/services"
	"finanzy/internal/storage"
)

// DefaultFactory implements the Factory interface.
type DefaultFactory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

// CreateBackend opens the configured repository and, when an AMQP URL is
// set, a change publisher.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	repo, err := f.openRepository(ctx, config)
	if err != nil {
		return nil, err
	}

	var publisher services.Publisher
	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, f.logger)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without change events", log.FieldError, err)
		} else {
			publisher = client
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	svc := services.NewTransactionService(repo, publisher, f.logger)
	f.logger.Info("Initialized backend",
		log.FieldBackend, config.Type.String(),
		"amqp_enabled", publisher != nil)

	return &BackendResult{Service: svc, Cleanup: svc.Close}, nil
}

func (f *DefaultFactory) openRepository(ctx context.Context, config Config) (storage.Repository, error) {
	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.Info("Opened SQLite repository", "db_path", config.SQLiteDBPath)
		return repo, nil

	case MongoBackend:
		repo, err := storage.NewMongoRepository(ctx, config.MongoURI, config.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize MongoDB repository: %w", err)
		}
		f.logger.Info("Opened MongoDB repository", "database", config.MongoDatabase)
		return repo, nil

	case MemoryBackend:
		seed, err := memory.NewFromFile(config.SeedFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read seed file: %w", err)
		}
		items, _ := seed.List(ctx)
		f.logger.Info("Initialized memory repository", "seed_file", config.SeedFile, log.FieldCount, len(items))
		return storage.NewMemoryRepository(items...), nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}
