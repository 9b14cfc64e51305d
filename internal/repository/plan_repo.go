package repository

import (
	"context"

	"go.uber.org/zap"

	"github.com/alcyxob/FitnessClient-sub001/internal/api"
	"github.com/alcyxob/FitnessClient-sub001/internal/domain"
)

// PlanRepository is a thin pass-through for training plans. Plans are not
// cached: creating one is an online, trainer-only action and the workouts
// and assignments it produces arrive through the normal sync download.
type PlanRepository struct {
	api    *api.Client
	logger *zap.Logger
}

func NewPlanRepository(apiClient *api.Client, logger *zap.Logger) *PlanRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlanRepository{api: apiClient, logger: logger}
}

// Create posts a new plan for the client (POST /trainer/clients/{id}/plans).
func (r *PlanRepository) Create(ctx context.Context, clientID string, req api.CreatePlanRequest) (*domain.TrainingPlan, error) {
	plan, err := r.api.CreatePlan(ctx, clientID, req)
	if err != nil {
		return nil, err
	}
	r.logger.Info("training plan created",
		zap.String("planId", plan.ID), zap.String("clientId", clientID))
	return plan, nil
}
