// Package sync drives the upload-then-download reconciliation cycle between
// the local cache and the backend API.
package sync

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/alcyxob/FitnessClient-sub001/internal/domain"
	"github.com/alcyxob/FitnessClient-sub001/internal/repository"
)

// State is the coordinator's cycle state.
type State string

const (
	StateIdle        State = "idle"
	StateUploading   State = "uploading"
	StateDownloading State = "downloading"
)

// Report summarizes one completed sync cycle. Per-record failures are
// recorded as warnings and never abort the cycle.
type Report struct {
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Uploaded   int       `json:"uploaded"`
	Warnings   []string  `json:"warnings,omitempty"`
}

// kindSyncer is the per-kind slice of the repository layer the cycle drives.
// repository.Collection implements it for every cached kind.
type kindSyncer interface {
	Kind() domain.Kind
	FlushPending(ctx context.Context) (int, []string, error)
	Download(ctx context.Context) error
}

// Notifier is the slice of the network monitor the manager listens to.
type Notifier interface {
	Subscribe() <-chan bool
	Reachable() bool
}

// Manager coordinates sync cycles. Only one cycle runs at a time; a trigger
// arriving while one is active is dropped, not queued.
type Manager struct {
	users       *repository.UserRepository
	exercises   *repository.ExerciseRepository
	workouts    *repository.WorkoutRepository
	assignments *repository.AssignmentRepository

	kinds   []kindSyncer // fixed order: users, exercises, workouts, assignments
	network Notifier
	logger  *zap.Logger

	running atomic.Bool
	state   atomic.Value // State

	mu     sync.Mutex
	last   *Report
	cancel context.CancelFunc
	done   chan struct{}
}

// NewManager wires the coordinator over the four entity repositories.
func NewManager(
	users *repository.UserRepository,
	exercises *repository.ExerciseRepository,
	workouts *repository.WorkoutRepository,
	assignments *repository.AssignmentRepository,
	network Notifier,
	logger *zap.Logger,
) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{
		users:       users,
		exercises:   exercises,
		workouts:    workouts,
		assignments: assignments,
		kinds:       []kindSyncer{users.Collection, exercises.Collection, workouts.Collection, assignments.Collection},
		network:     network,
		logger:      logger,
	}
	m.state.Store(StateIdle)
	return m
}

// State returns the coordinator's current cycle state.
func (m *Manager) State() State {
	return m.state.Load().(State)
}

// LastReport returns the most recent completed cycle's report, or nil if no
// cycle has run yet.
func (m *Manager) LastReport() *Report {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

// TrySync runs one sync cycle unless one is already in progress, in which
// case the trigger is dropped and TrySync reports false.
func (m *Manager) TrySync(ctx context.Context) bool {
	if !m.running.CompareAndSwap(false, true) {
		m.logger.Debug("sync trigger dropped, cycle already in progress")
		return false
	}
	defer m.running.Store(false)
	m.runCycle(ctx)
	return true
}

// runCycle performs one full upload-then-download pass across all entity
// kinds, in fixed order. Each kind's steps are best effort; failures are
// collected as warnings and the cycle moves on.
func (m *Manager) runCycle(ctx context.Context) {
	report := &Report{StartedAt: time.Now().UTC()}
	m.logger.Info("sync cycle started")

	m.state.Store(StateUploading)
	for _, kind := range m.kinds {
		flushed, warnings, err := kind.FlushPending(ctx)
		if err != nil {
			report.Warnings = append(report.Warnings, err.Error())
			m.logger.Warn("upload step failed",
				zap.String("kind", string(kind.Kind())), zap.Error(err))
			continue
		}
		report.Uploaded += flushed
		report.Warnings = append(report.Warnings, warnings...)
	}

	m.state.Store(StateDownloading)
	for _, kind := range m.kinds {
		if err := kind.Download(ctx); err != nil {
			report.Warnings = append(report.Warnings, err.Error())
			m.logger.Warn("download step failed",
				zap.String("kind", string(kind.Kind())), zap.Error(err))
		}
	}

	m.state.Store(StateIdle)
	report.FinishedAt = time.Now().UTC()

	m.mu.Lock()
	m.last = report
	m.mu.Unlock()

	m.logger.Info("sync cycle finished",
		zap.Int("uploaded", report.Uploaded),
		zap.Int("warnings", len(report.Warnings)),
		zap.Duration("took", report.FinishedAt.Sub(report.StartedAt)))
}

// Start listens for connectivity-restored transitions and triggers a cycle
// on each one. Stop ends the listener.
func (m *Manager) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})
	events := m.network.Subscribe()

	go func() {
		defer close(m.done)
		for {
			select {
			case <-ctx.Done():
				return
			case up := <-events:
				if up {
					m.logger.Info("connectivity restored, triggering sync")
					m.TrySync(ctx)
				}
			}
		}
	}()
}

// Stop ends the connectivity listener and waits for it to exit.
func (m *Manager) Stop() {
	if m.cancel == nil {
		return
	}
	m.cancel()
	<-m.done
}

// PendingRecords lists every record still awaiting upload across all kinds,
// as tagged records for the control API.
func (m *Manager) PendingRecords(ctx context.Context) ([]domain.Record, error) {
	var records []domain.Record

	users, err := m.users.Pending(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range users {
		records = append(records, domain.UserRecord(p.Record))
	}

	exercises, err := m.exercises.Pending(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range exercises {
		records = append(records, domain.ExerciseRecord(p.Record))
	}

	workouts, err := m.workouts.Pending(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range workouts {
		records = append(records, domain.WorkoutRecord(p.Record))
	}

	assignments, err := m.assignments.Pending(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range assignments {
		records = append(records, domain.AssignmentRecord(p.Record))
	}

	return records, nil
}
