package cache

import (
	"context"

	"github.com/alcyxob/FitnessClient-sub001/internal/domain"
)

// Error constants for the cache layer
var (
	ErrUpdateFailed = CacheError("update failed")
	ErrDeleteFailed = CacheError("delete failed")
)

// CacheError helps distinguish cache errors
type CacheError string

func (e CacheError) Error() string {
	return string(e)
}

// Pending pairs a record awaiting upload with the part of its sync metadata
// the flush loop acts on.
type Pending[T any] struct {
	Record  T
	Deleted bool
}

// UpsertOption adjusts how an Upsert treats sync metadata.
type UpsertOption func(*UpsertOptions)

// UpsertOptions is the resolved option set. SetStatus nil means "leave the
// record's current status alone" (new rows default to synced).
type UpsertOptions struct {
	SetStatus *domain.SyncStatus
}

// WithStatus makes the upsert also transition the record's sync status.
func WithStatus(status domain.SyncStatus) UpsertOption {
	return func(o *UpsertOptions) {
		o.SetStatus = &status
	}
}

// ResolveUpsertOptions folds a caller's options into one options struct.
func ResolveUpsertOptions(opts []UpsertOption) UpsertOptions {
	var resolved UpsertOptions
	for _, opt := range opts {
		opt(&resolved)
	}
	return resolved
}

// Store is the keyed, typed record store for one cached entity kind. Writes
// are atomic per record; there is no cross-record transaction, so batch
// operations must stay idempotent (they are: Upsert is keyed by ID).
type Store[T domain.Entity] interface {
	// Upsert inserts or replaces the record by ID. It stamps LastModified but
	// leaves SyncStatus untouched unless a WithStatus option asks for it.
	Upsert(ctx context.Context, record T, opts ...UpsertOption) error

	// FetchAll returns every non-deleted record, in the store's stable order,
	// optionally narrowed by a predicate. A nil predicate matches everything.
	FetchAll(ctx context.Context, predicate func(T) bool) ([]T, error)

	// FetchByID is a point lookup. An absent ID is reported via the bool,
	// not as an error.
	FetchByID(ctx context.Context, id string) (T, bool, error)

	// Meta returns the sync metadata for a record, deleted rows included.
	Meta(ctx context.Context, id string) (domain.Meta, bool, error)

	// MarkPendingUpload flags the record for the next outbound flush.
	MarkPendingUpload(ctx context.Context, id string) error

	// MarkSynced records a successful flush or download for the record.
	MarkSynced(ctx context.Context, id string) error

	// MarkError records a failed remote write for the record.
	MarkError(ctx context.Context, id string) error

	// MarkDeleted soft-deletes the record: it disappears from reads but is
	// retained (pending upload) until the remote delete is acknowledged.
	MarkDeleted(ctx context.Context, id string) error

	// DeleteHard physically removes the row. Only valid after the remote
	// delete has been acknowledged.
	DeleteHard(ctx context.Context, id string) error

	// PendingUpload lists records whose changes have not been acknowledged by
	// the server, soft-deleted rows included.
	PendingUpload(ctx context.Context) ([]Pending[T], error)
}
