package storage

import "context"

// Backend names accepted by configuration.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Storage abstracts where dashboard state shared between renders lives:
// load token counters and the live chart body per canvas.
// Implementations must be safe for concurrent use.
type Storage interface {
	// Increment atomically increments a counter for a key, returning the new value.
	// If the key does not exist, it is created with the value of delta.
	Increment(ctx context.Context, key string, delta int64) (int64, error)

	// SetIfNewer stores value under key unless the stored version is greater
	// than version. It reports whether the value was written.
	SetIfNewer(ctx context.Context, key string, version int64, value []byte) (bool, error)

	// GetVersioned returns the value and version stored by SetIfNewer.
	// Returns nil, 0, nil if the key does not exist.
	GetVersioned(ctx context.Context, key string) ([]byte, int64, error)

	// Delete removes a key.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
