package sqlite

import (
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/alcyxob/FitnessClient-sub001/internal/domain"
)

// NewUserStore creates the user cache store, ordered by name.
func NewUserStore(db *sql.DB, logger *zap.Logger) *Store[domain.User] {
	return newStore(db, spec[domain.User]{
		table:   usersTable,
		sortKey: func(u domain.User) string { return u.Name },
	}, logger)
}

// NewExerciseStore creates the exercise cache store, ordered by name.
func NewExerciseStore(db *sql.DB, logger *zap.Logger) *Store[domain.Exercise] {
	return newStore(db, spec[domain.Exercise]{
		table:   exercisesTable,
		sortKey: func(e domain.Exercise) string { return e.Name },
	}, logger)
}

// NewWorkoutStore creates the workout cache store, newest first.
func NewWorkoutStore(db *sql.DB, logger *zap.Logger) *Store[domain.Workout] {
	return newStore(db, spec[domain.Workout]{
		table:      workoutsTable,
		sortKey:    func(w domain.Workout) string { return w.CreatedAt.UTC().Format(time.RFC3339Nano) },
		descending: true,
	}, logger)
}

// NewAssignmentStore creates the assignment cache store, newest first.
func NewAssignmentStore(db *sql.DB, logger *zap.Logger) *Store[domain.Assignment] {
	return newStore(db, spec[domain.Assignment]{
		table:      assignmentsTable,
		sortKey:    func(a domain.Assignment) string { return a.AssignedAt.UTC().Format(time.RFC3339Nano) },
		descending: true,
	}, logger)
}
