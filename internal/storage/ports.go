// Package storage defines the key/value port the expense store persists
// through, plus its SQLite adapter.
package storage

import (
	"context"
	"errors"
)

// ErrClosed is returned by adapters used after Close.
var ErrClosed = errors.New("storage closed")

// KeyValue stores whole documents under string keys. Set replaces any
// previous value in a single write.
type KeyValue interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
