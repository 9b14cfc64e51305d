package repository

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/alcyxob/FitnessClient-sub001/internal/api"
	"github.com/alcyxob/FitnessClient-sub001/internal/cache"
	"github.com/alcyxob/FitnessClient-sub001/internal/domain"
)

// WorkoutRepository serves the client's workout sessions, newest first.
type WorkoutRepository struct {
	*Collection[domain.Workout]
}

func NewWorkoutRepository(apiClient *api.Client, store cache.Store[domain.Workout], network Reachability, logger *zap.Logger) *WorkoutRepository {
	return &WorkoutRepository{
		Collection: NewCollection(domain.KindWorkout, store, Remote[domain.Workout]{
			List:   apiClient.ListClientWorkouts,
			Put:    apiClient.PutWorkout,
			Delete: apiClient.DeleteWorkout,
		}, network, logger),
	}
}

// MarkCompleted records locally that the client performed the workout.
func (r *WorkoutRepository) MarkCompleted(ctx context.Context, id string) error {
	workout, found, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return cache.ErrUpdateFailed
	}
	now := time.Now().UTC()
	workout.CompletedAt = &now
	workout.UpdatedAt = now
	return r.Save(ctx, workout)
}
