package store

import "context"

// KeyValueStore is the device-local storage contract the observation
// collection is persisted through. One fixed key holds the whole
// collection as a JSON blob; there is no partial or streaming access.
type KeyValueStore interface {
	// Get returns the value for key. The boolean reports presence: a key
	// that has never been written is (_, false, nil), not an error.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set replaces the value for key in one atomic write.
	Set(ctx context.Context, key, value string) error

	Close() error
}
