package repo

import (
	"context"
	"errors"
)

// Fixed record names in durable storage.
const (
	HistoryKey    = "uptime-history"
	SelfKey       = "self-api-data"
	AlertStateKey = "alert-state"
)

var ErrClosed = errors.New("store closed")

// KV is the durable storage port: opaque JSON documents under fixed keys.
// Get returns ok=false with a nil error when the key has never been written.
type KV interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Put(ctx context.Context, key string, value []byte) error
}

// Closer is implemented by backends holding connections or handles.
type Closer interface {
	Close() error
}
