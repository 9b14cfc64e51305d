package domain

import "time"

// Exercise represents a single exercise definition in the library.
type Exercise struct {
	ID          string `json:"id"`
	TrainerID   string `json:"trainerId"` // Trainer who created/owns this exercise
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	MuscleGroup      string `json:"muscleGroup,omitempty"`      // e.g., "Chest", "Legs", "Back"
	ExecutionTechnic string `json:"executionTechnic,omitempty"` // Detailed instructions
	Applicability    string `json:"applicability,omitempty"`    // e.g., "Home", "Gym", "Home/Gym"
	Difficulty       string `json:"difficulty,omitempty"`       // e.g., "Novice", "Medium", "Advanced"
	VideoURL         string `json:"videoUrl,omitempty"`         // Optional URL to an example video

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (e Exercise) EntityID() string { return e.ID }
