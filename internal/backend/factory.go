package backend

import (
	"context"
	"errors"
	"fmt"

	"acorn/internal/amqp"
	"acorn/internal/log"
	"acorn/internal/storage"
	"acorn/internal/storage/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.FromContext(context.Background())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		res *Result
		err error
	)
	switch config.Type {
	case SQLiteBackend:
		res, err = f.createSQLiteBackend(config)
	case MemoryBackend:
		res = f.createMemoryBackend()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	f.attachPublisher(ctx, res, config)
	return res, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*Result, error) {
	db, err := storage.NewSQLiteStore(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &Result{
		Storage: db,
		Ping:    db.Ping,
		Cleanup: db.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend() *Result {
	f.logger.Info("Initialized memory backend")
	return &Result{
		Storage: memory.New(),
		Ping:    func(context.Context) error { return nil },
	}
}

// attachPublisher connects to the broker when configured. A broker that is
// down at startup disables events rather than failing the backend.
func (f *DefaultFactory) attachPublisher(ctx context.Context, res *Result, config Config) {
	if config.AMQPURL == "" {
		return
	}

	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events", log.FieldError, err)
		return
	}
	f.logger.InfoContext(ctx, "Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)

	res.Publisher = client
	storageCleanup := res.Cleanup
	res.Cleanup = func() error {
		var errs []error
		if err := client.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
		if storageCleanup != nil {
			if err := storageCleanup(); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
}
