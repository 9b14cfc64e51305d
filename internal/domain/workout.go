package domain

import "time"

// Workout represents a single workout session within a TrainingPlan.
type Workout struct {
	ID             string     `json:"id"`
	TrainingPlanID string     `json:"trainingPlanId"` // Link back to the plan
	TrainerID      string     `json:"trainerId"`      // Denormalized for easier query/auth
	ClientID       string     `json:"clientId"`       // Denormalized
	Name           string     `json:"name"`           // e.g., "Day 1: Upper Body", "Long Run"
	DayOfWeek      *int       `json:"dayOfWeek,omitempty"`
	Notes          string     `json:"notes,omitempty"` // Notes for the client for this workout
	Sequence       int        `json:"sequence"`        // Order within the plan
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	// Exercises are linked via Assignments pointing to this Workout's ID.
}

func (w Workout) EntityID() string { return w.ID }
