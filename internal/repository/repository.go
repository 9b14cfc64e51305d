// Package repository provides the typed facades the app's view-models talk
// to. One generic Collection implements the shared policy (network-first
// reads with cache fallback, cache-first writes marked pending-upload);
// per-entity repositories compose it with the concrete API calls.
package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alcyxob/FitnessClient-sub001/internal/api"
	"github.com/alcyxob/FitnessClient-sub001/internal/cache"
	"github.com/alcyxob/FitnessClient-sub001/internal/domain"
)

// Reachability is the slice of the network monitor the read path needs.
type Reachability interface {
	Reachable() bool
}

// Remote binds one cached entity kind to its REST calls. Put performs a
// remote upsert and returns the server's canonical copy (a record created
// offline under a placeholder ID comes back with its server-assigned one).
type Remote[T domain.Entity] struct {
	List   func(ctx context.Context) ([]T, error)
	Put    func(ctx context.Context, record T) (T, error)
	Delete func(ctx context.Context, id string) error
}

// Collection is the shared sync policy for one entity kind.
type Collection[T domain.Entity] struct {
	kind    domain.Kind
	cache   cache.Store[T]
	remote  Remote[T]
	network Reachability
	logger  *zap.Logger
}

// NewCollection wires a cache store and remote endpoints into a collection.
func NewCollection[T domain.Entity](kind domain.Kind, store cache.Store[T], remote Remote[T], network Reachability, logger *zap.Logger) *Collection[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collection[T]{kind: kind, cache: store, remote: remote, network: network, logger: logger}
}

// Kind names the entity kind this collection manages.
func (c *Collection[T]) Kind() domain.Kind { return c.kind }

// FetchAll implements the read-path policy: when the network is reachable it
// serves fresh server data (updating the cache on the way through); when it
// is not, or the remote call fails at the network layer, it degrades to the
// cached non-deleted records. An empty cache plus a failed fetch surfaces
// the fetch error to the caller.
func (c *Collection[T]) FetchAll(ctx context.Context, predicate func(T) bool) ([]T, error) {
	if c.network == nil || c.network.Reachable() {
		records, err := c.remote.List(ctx)
		if err == nil {
			if mergeErr := c.merge(ctx, records); mergeErr != nil {
				c.logger.Warn("failed to cache downloaded records",
					zap.String("kind", string(c.kind)), zap.Error(mergeErr))
			}
			return filter(records, predicate), nil
		}
		c.logger.Debug("remote fetch failed, falling back to cache",
			zap.String("kind", string(c.kind)), zap.Error(err))

		cached, cacheErr := c.cache.FetchAll(ctx, predicate)
		if cacheErr != nil || len(cached) == 0 {
			return nil, err
		}
		return cached, nil
	}
	return c.fetchCached(ctx, predicate)
}

// Get is a cache point lookup. Detail views resolve against the local copy;
// FetchAll is what refreshes it.
func (c *Collection[T]) Get(ctx context.Context, id string) (T, bool, error) {
	return c.cache.FetchByID(ctx, id)
}

// Save writes the record to the cache and flags it for the next flush.
// Writes never wait on the network.
func (c *Collection[T]) Save(ctx context.Context, record T) error {
	if err := c.cache.Upsert(ctx, record, cache.WithStatus(domain.SyncPendingUpload)); err != nil {
		return fmt.Errorf("failed to save %s record: %w", c.kind, err)
	}
	return nil
}

// Delete soft-deletes the record; it disappears from reads immediately and
// is removed remotely on the next sync cycle.
func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	return c.cache.MarkDeleted(ctx, id)
}

// Pending lists the records still awaiting upload.
func (c *Collection[T]) Pending(ctx context.Context) ([]cache.Pending[T], error) {
	return c.cache.PendingUpload(ctx)
}

// Download pulls the authoritative collection and merges it into the cache.
// The sync cycle's downloading phase runs this per kind.
func (c *Collection[T]) Download(ctx context.Context) error {
	records, err := c.remote.List(ctx)
	if err != nil {
		return err
	}
	return c.merge(ctx, records)
}

// merge upserts downloaded records, marking them synced. A row still in
// pending_upload holds an unflushed local change and is left untouched; the
// next flush reconciles it. Soft-deleted rows are skipped too: the server
// still listing the record means the remote delete has not landed yet, and
// upserting over the row would strand it deleted-but-synced where no flush
// ever picks it up again. Re-running a merge with an unchanged server
// collection is a no-op in observable state.
func (c *Collection[T]) merge(ctx context.Context, records []T) error {
	for _, record := range records {
		meta, found, err := c.cache.Meta(ctx, record.EntityID())
		if err != nil {
			return err
		}
		if found && (meta.Status == domain.SyncPendingUpload || meta.Deleted) {
			continue
		}
		if err := c.cache.Upsert(ctx, record, cache.WithStatus(domain.SyncSynced)); err != nil {
			return err
		}
	}
	return nil
}

// FlushPending uploads this kind's local changes: remote delete then hard
// delete for soft-deleted records, remote upsert then mark-synced otherwise.
// A failed upsert is marked error, a failed delete stays pending for the
// next cycle; either is reported as a warning and never stops the rest of
// the batch.
func (c *Collection[T]) FlushPending(ctx context.Context) (flushed int, warnings []string, err error) {
	pending, err := c.cache.PendingUpload(ctx)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to list pending %s records: %w", c.kind, err)
	}

	for _, p := range pending {
		id := p.Record.EntityID()
		if p.Deleted {
			if err := c.remote.Delete(ctx, id); err != nil {
				// Stays pending_upload so the next cycle retries the delete;
				// an error status would drop it out of the pending listing
				// with no path back.
				warnings = append(warnings, c.warn(id, "delete", err))
				continue
			}
			if err := c.cache.DeleteHard(ctx, id); err != nil {
				warnings = append(warnings, c.warn(id, "purge", err))
				continue
			}
			flushed++
			continue
		}

		saved, err := c.remote.Put(ctx, p.Record)
		if err != nil {
			warnings = append(warnings, c.warn(id, "upsert", err))
			c.markError(ctx, id)
			continue
		}
		// The server may have assigned a canonical ID to a locally created
		// record; drop the placeholder row before storing the server copy.
		if saved.EntityID() != id {
			if err := c.cache.DeleteHard(ctx, id); err != nil {
				warnings = append(warnings, c.warn(id, "replace", err))
			}
		}
		if err := c.cache.Upsert(ctx, saved, cache.WithStatus(domain.SyncSynced)); err != nil {
			warnings = append(warnings, c.warn(id, "store", err))
			continue
		}
		flushed++
	}
	return flushed, warnings, nil
}

func (c *Collection[T]) fetchCached(ctx context.Context, predicate func(T) bool) ([]T, error) {
	cached, err := c.cache.FetchAll(ctx, predicate)
	if err != nil {
		return nil, err
	}
	if len(cached) == 0 {
		return nil, &api.Error{Kind: api.KindUnreachable, Message: "offline and nothing cached"}
	}
	return cached, nil
}

func (c *Collection[T]) warn(id, op string, err error) string {
	c.logger.Warn("sync step failed",
		zap.String("kind", string(c.kind)), zap.String("id", id),
		zap.String("op", op), zap.Error(err))
	return fmt.Sprintf("%s %s %s: %v", op, c.kind, id, err)
}

func (c *Collection[T]) markError(ctx context.Context, id string) {
	if err := c.cache.MarkError(ctx, id); err != nil {
		c.logger.Warn("failed to mark record error",
			zap.String("kind", string(c.kind)), zap.String("id", id), zap.Error(err))
	}
}

// NewLocalID generates the placeholder ID for a record created offline.
func NewLocalID() string { return uuid.NewString() }

func filter[T any](records []T, predicate func(T) bool) []T {
	if predicate == nil {
		return records
	}
	var matched []T
	for _, r := range records {
		if predicate(r) {
			matched = append(matched, r)
		}
	}
	return matched
}
