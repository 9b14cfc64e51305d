package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/alcyxob/FitnessClient-sub001/internal/cache"
	"github.com/alcyxob/FitnessClient-sub001/internal/domain"
)

// timeLayout is how last_modified is persisted.
const timeLayout = time.RFC3339Nano

// spec describes the per-kind bits of the otherwise uniform table layout.
type spec[T domain.Entity] struct {
	table      string
	sortKey    func(T) string // stable secondary ordering key
	descending bool           // reverse-chronological kinds set this
}

// Store is the SQLite-backed cache store for one entity kind. Records are
// kept as JSON payloads keyed by ID, with sync metadata in sibling columns,
// so a write is a single row replace: atomic per record, no cross-record
// transaction.
type Store[T domain.Entity] struct {
	db     *sql.DB
	spec   spec[T]
	logger *zap.Logger
	now    func() time.Time
}

func newStore[T domain.Entity](db *sql.DB, sp spec[T], logger *zap.Logger) *Store[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store[T]{db: db, spec: sp, logger: logger, now: time.Now}
}

// Upsert inserts or replaces the record by ID. Sync status and the deletion
// flag of an existing row are preserved unless the caller asks for a status
// transition via cache.WithStatus.
func (s *Store[T]) Upsert(ctx context.Context, record T, opts ...cache.UpsertOption) error {
	resolved := cache.ResolveUpsertOptions(opts)

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal %s record: %w", s.spec.table, err)
	}
	now := s.now().UTC().Format(timeLayout)

	if resolved.SetStatus != nil {
		query := fmt.Sprintf(`
			INSERT INTO %s (id, payload, sort_key, sync_status, last_modified, is_deleted)
			VALUES (?, ?, ?, ?, ?, 0)
			ON CONFLICT(id) DO UPDATE SET
				payload = excluded.payload,
				sort_key = excluded.sort_key,
				sync_status = excluded.sync_status,
				last_modified = excluded.last_modified
		`, s.spec.table)
		_, err = s.db.ExecContext(ctx, query,
			record.EntityID(), string(payload), s.spec.sortKey(record), string(*resolved.SetStatus), now)
	} else {
		query := fmt.Sprintf(`
			INSERT INTO %s (id, payload, sort_key, sync_status, last_modified, is_deleted)
			VALUES (?, ?, ?, ?, ?, 0)
			ON CONFLICT(id) DO UPDATE SET
				payload = excluded.payload,
				sort_key = excluded.sort_key,
				last_modified = excluded.last_modified
		`, s.spec.table)
		_, err = s.db.ExecContext(ctx, query,
			record.EntityID(), string(payload), s.spec.sortKey(record), string(domain.SyncSynced), now)
	}
	if err != nil {
		return fmt.Errorf("failed to upsert into %s: %w", s.spec.table, err)
	}
	return nil
}

// FetchAll returns all non-deleted records in the store's stable order,
// optionally narrowed by a predicate (applied after decoding, so it stays
// typed). Soft-deleted rows never appear here regardless of their status.
func (s *Store[T]) FetchAll(ctx context.Context, predicate func(T) bool) ([]T, error) {
	direction := "ASC"
	if s.spec.descending {
		direction = "DESC"
	}
	query := fmt.Sprintf(`
		SELECT payload FROM %s
		WHERE is_deleted = 0
		ORDER BY sort_key COLLATE NOCASE %s, id ASC
	`, s.spec.table, direction)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", s.spec.table, err)
	}
	defer rows.Close()

	var records []T
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", s.spec.table, err)
		}
		var record T
		if err := json.Unmarshal([]byte(payload), &record); err != nil {
			return nil, fmt.Errorf("failed to decode %s record: %w", s.spec.table, err)
		}
		if predicate == nil || predicate(record) {
			records = append(records, record)
		}
	}
	return records, rows.Err()
}

// FetchByID is a point lookup; an absent (or soft-deleted) ID reports
// found=false, not an error.
func (s *Store[T]) FetchByID(ctx context.Context, id string) (T, bool, error) {
	var zero T
	var payload string
	query := fmt.Sprintf(`SELECT payload FROM %s WHERE id = ? AND is_deleted = 0`, s.spec.table)
	err := s.db.QueryRowContext(ctx, query, id).Scan(&payload)
	if err == sql.ErrNoRows {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, fmt.Errorf("failed to fetch %s record: %w", s.spec.table, err)
	}
	var record T
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return zero, false, fmt.Errorf("failed to decode %s record: %w", s.spec.table, err)
	}
	return record, true, nil
}

// Meta returns the sync metadata for a record, soft-deleted rows included.
func (s *Store[T]) Meta(ctx context.Context, id string) (domain.Meta, bool, error) {
	var (
		status   string
		modified string
		deleted  bool
	)
	query := fmt.Sprintf(`SELECT sync_status, last_modified, is_deleted FROM %s WHERE id = ?`, s.spec.table)
	err := s.db.QueryRowContext(ctx, query, id).Scan(&status, &modified, &deleted)
	if err == sql.ErrNoRows {
		return domain.Meta{}, false, nil
	}
	if err != nil {
		return domain.Meta{}, false, fmt.Errorf("failed to fetch %s metadata: %w", s.spec.table, err)
	}
	ts, err := time.Parse(timeLayout, modified)
	if err != nil {
		return domain.Meta{}, false, fmt.Errorf("failed to parse last_modified for %s: %w", s.spec.table, err)
	}
	return domain.Meta{Status: domain.SyncStatus(status), LastModified: ts, Deleted: deleted}, true, nil
}

func (s *Store[T]) MarkPendingUpload(ctx context.Context, id string) error {
	return s.setStatus(ctx, id, domain.SyncPendingUpload)
}

func (s *Store[T]) MarkSynced(ctx context.Context, id string) error {
	return s.setStatus(ctx, id, domain.SyncSynced)
}

func (s *Store[T]) MarkError(ctx context.Context, id string) error {
	return s.setStatus(ctx, id, domain.SyncError)
}

func (s *Store[T]) setStatus(ctx context.Context, id string, status domain.SyncStatus) error {
	query := fmt.Sprintf(`UPDATE %s SET sync_status = ?, last_modified = ? WHERE id = ?`, s.spec.table)
	result, err := s.db.ExecContext(ctx, query, string(status), s.now().UTC().Format(timeLayout), id)
	if err != nil {
		return fmt.Errorf("failed to update %s status: %w", s.spec.table, err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return cache.ErrUpdateFailed
	}
	return nil
}

// MarkDeleted soft-deletes the record and queues it for the next flush. The
// row stays around until the remote delete is acknowledged.
func (s *Store[T]) MarkDeleted(ctx context.Context, id string) error {
	query := fmt.Sprintf(`
		UPDATE %s SET is_deleted = 1, sync_status = ?, last_modified = ? WHERE id = ?
	`, s.spec.table)
	result, err := s.db.ExecContext(ctx, query,
		string(domain.SyncPendingUpload), s.now().UTC().Format(timeLayout), id)
	if err != nil {
		return fmt.Errorf("failed to soft-delete %s record: %w", s.spec.table, err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return cache.ErrUpdateFailed
	}
	return nil
}

// DeleteHard physically removes the row after the remote delete was confirmed.
func (s *Store[T]) DeleteHard(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, s.spec.table)
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete %s record: %w", s.spec.table, err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return cache.ErrDeleteFailed
	}
	return nil
}

// PendingUpload lists every record flagged pending_upload, soft-deleted rows
// included, oldest modification first so the flush order is deterministic.
func (s *Store[T]) PendingUpload(ctx context.Context) ([]cache.Pending[T], error) {
	query := fmt.Sprintf(`
		SELECT payload, is_deleted FROM %s
		WHERE sync_status = ?
		ORDER BY last_modified ASC, id ASC
	`, s.spec.table)
	rows, err := s.db.QueryContext(ctx, query, string(domain.SyncPendingUpload))
	if err != nil {
		return nil, fmt.Errorf("failed to query pending %s records: %w", s.spec.table, err)
	}
	defer rows.Close()

	var pending []cache.Pending[T]
	for rows.Next() {
		var (
			payload string
			deleted bool
		)
		if err := rows.Scan(&payload, &deleted); err != nil {
			return nil, fmt.Errorf("failed to scan pending %s row: %w", s.spec.table, err)
		}
		var record T
		if err := json.Unmarshal([]byte(payload), &record); err != nil {
			return nil, fmt.Errorf("failed to decode pending %s record: %w", s.spec.table, err)
		}
		pending = append(pending, cache.Pending[T]{Record: record, Deleted: deleted})
	}
	return pending, rows.Err()
}
