// Package store defines the durable backing for accepted events (§4.3). The
// Hub is the store's only caller; nothing else touches it, so no locking is
// needed beyond whatever the backing database provides itself.
package store

import (
	"context"
	"errors"

	"github.com/lzcers/ksana-relay/encoders/event"
)

// ErrStore wraps any failure from a Store operation.
var ErrStore = errors.New("store: operation failed")

// I is the storage interface the Hub consumes. A relational key-value table
// is sufficient: one row per event, keyed by id.
type I interface {
	// Save inserts ev. Idempotency on a duplicate id is optional — the Hub
	// never re-submits an id it has already accepted.
	Save(ctx context.Context, ev *event.E) error

	// LoadAll returns every persisted event, used once at Hub startup.
	// Order need not match original insertion order.
	LoadAll(ctx context.Context) (event.S, error)

	// Delete removes the row matching both id and pubkey, returning the
	// number of rows removed (0 if no match).
	Delete(ctx context.Context, id, pubkey []byte) (int, error)

	// Close releases any resources held by the store.
	Close() error
}
