package backend

import (
	"context"

	"acorn/internal/amqp"
	"acorn/internal/storage"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result contains the opened storage plus the optional event publisher.
type Result struct {
	Storage storage.KeyValue
	// Publisher is nil when no AMQP URL is configured or the broker was
	// unreachable at startup.
	Publisher *amqp.Client
	// Ping reports whether the storage is reachable.
	Ping    func(context.Context) error
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates a backend instance based on the provided config
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Optional change events
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
