package repository

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/alcyxob/FitnessClient-sub001/internal/api"
	"github.com/alcyxob/FitnessClient-sub001/internal/cache"
	"github.com/alcyxob/FitnessClient-sub001/internal/domain"
)

var ErrExerciseNameRequired = errors.New("exercise name is required")

// ExerciseRepository serves the trainer's exercise library.
type ExerciseRepository struct {
	*Collection[domain.Exercise]
}

func NewExerciseRepository(apiClient *api.Client, store cache.Store[domain.Exercise], network Reachability, logger *zap.Logger) *ExerciseRepository {
	return &ExerciseRepository{
		Collection: NewCollection(domain.KindExercise, store, Remote[domain.Exercise]{
			List:   apiClient.ListExercises,
			Put:    apiClient.PutExercise,
			Delete: apiClient.DeleteExercise,
		}, network, logger),
	}
}

// Create stores a new exercise under a placeholder ID; the server assigns
// the canonical one when the record is flushed.
func (r *ExerciseRepository) Create(ctx context.Context, exercise domain.Exercise) (domain.Exercise, error) {
	if exercise.Name == "" {
		return domain.Exercise{}, ErrExerciseNameRequired
	}
	now := time.Now().UTC()
	exercise.ID = NewLocalID()
	exercise.CreatedAt = now
	exercise.UpdatedAt = now
	if err := r.Save(ctx, exercise); err != nil {
		return domain.Exercise{}, err
	}
	return exercise, nil
}

// Update saves an edit locally and queues it for upload.
func (r *ExerciseRepository) Update(ctx context.Context, exercise domain.Exercise) error {
	if exercise.Name == "" {
		return ErrExerciseNameRequired
	}
	exercise.UpdatedAt = time.Now().UTC()
	return r.Save(ctx, exercise)
}
