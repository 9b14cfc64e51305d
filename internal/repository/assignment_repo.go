package repository

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/alcyxob/FitnessClient-sub001/internal/api"
	"github.com/alcyxob/FitnessClient-sub001/internal/cache"
	"github.com/alcyxob/FitnessClient-sub001/internal/domain"
)

// AssignmentRepository serves the client's assignments and the trainer's
// assignment mutations.
type AssignmentRepository struct {
	*Collection[domain.Assignment]
	api *api.Client
}

func NewAssignmentRepository(apiClient *api.Client, store cache.Store[domain.Assignment], network Reachability, logger *zap.Logger) *AssignmentRepository {
	return &AssignmentRepository{
		Collection: NewCollection(domain.KindAssignment, store, Remote[domain.Assignment]{
			List:   apiClient.ListClientAssignments,
			Put:    apiClient.PutAssignment,
			Delete: apiClient.DeleteAssignment,
		}, network, logger),
		api: apiClient,
	}
}

// UpdateStatus moves the assignment through its workflow. The change lands
// in the cache first (pending upload); when the network is up it is pushed
// through PATCH /client/assignments/{id}/status right away and the server
// copy replaces the pending one.
func (r *AssignmentRepository) UpdateStatus(ctx context.Context, id string, status domain.AssignmentStatus, clientNotes string) (domain.Assignment, error) {
	assignment, found, err := r.Get(ctx, id)
	if err != nil {
		return domain.Assignment{}, err
	}
	if !found {
		return domain.Assignment{}, cache.ErrUpdateFailed
	}

	now := time.Now().UTC()
	assignment.Status = status
	if clientNotes != "" {
		assignment.ClientNotes = clientNotes
	}
	if status == domain.StatusCompleted {
		assignment.CompletedAt = &now
	}
	assignment.UpdatedAt = now
	if err := r.Save(ctx, assignment); err != nil {
		return domain.Assignment{}, err
	}

	if r.network != nil && !r.network.Reachable() {
		return assignment, nil
	}
	saved, err := r.api.UpdateAssignmentStatus(ctx, id, status, clientNotes)
	if err != nil {
		// The pending copy stays queued for the next sync cycle.
		r.logger.Debug("immediate status push failed, left pending",
			zap.String("id", id), zap.Error(err))
		return assignment, nil
	}
	if err := r.cache.Upsert(ctx, *saved, cache.WithStatus(domain.SyncSynced)); err != nil {
		return domain.Assignment{}, err
	}
	return *saved, nil
}

// CreateForClient is the trainer-side creation (POST /trainer/assignments).
// Offline it stores a placeholder-ID record for the next flush.
func (r *AssignmentRepository) CreateForClient(ctx context.Context, req api.CreateAssignmentRequest) (domain.Assignment, error) {
	if r.network == nil || r.network.Reachable() {
		saved, err := r.api.CreateAssignment(ctx, req)
		if err == nil {
			if upErr := r.cache.Upsert(ctx, *saved, cache.WithStatus(domain.SyncSynced)); upErr != nil {
				return domain.Assignment{}, upErr
			}
			return *saved, nil
		}
		if !api.IsUnreachable(err) {
			return domain.Assignment{}, err
		}
	}

	now := time.Now().UTC()
	assignment := domain.Assignment{
		ID:         NewLocalID(),
		WorkoutID:  req.WorkoutID,
		ExerciseID: req.ExerciseID,
		ClientID:   req.ClientID,
		Sets:       req.Sets,
		Reps:       req.Reps,
		Weight:     req.Weight,
		Status:     domain.StatusAssigned,
		AssignedAt: now,
		DueDate:    req.DueDate,
		UpdatedAt:  now,
	}
	if err := r.Save(ctx, assignment); err != nil {
		return domain.Assignment{}, err
	}
	return assignment, nil
}
