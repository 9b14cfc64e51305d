package domain

import "time"

// TrainingPlan represents a structured plan assigned to a client by a trainer.
// Plans are consumed directly from the API and are not cached locally; workouts
// and assignments carry the plan linkage the cache needs.
type TrainingPlan struct {
	ID          string     `json:"id"`
	TrainerID   string     `json:"trainerId"` // Who created the plan
	ClientID    string     `json:"clientId"`  // Who the plan is for
	Name        string     `json:"name"`      // e.g., "Phase 1: Hypertrophy"
	Description string     `json:"description,omitempty"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	IsActive    bool       `json:"isActive"` // Is this the currently active plan?
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
