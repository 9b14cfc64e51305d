package domain

import "time"

// AssignmentStatus type for assignment lifecycle
type AssignmentStatus string

const (
	StatusAssigned  AssignmentStatus = "assigned"
	StatusCompleted AssignmentStatus = "completed" // Client performed the workout
	StatusSubmitted AssignmentStatus = "submitted" // Client uploaded a video
	StatusReviewed  AssignmentStatus = "reviewed"  // Trainer provided feedback
)

// Assignment connects an Exercise to a Client within a Workout, as assigned
// by a Trainer. The intended workflow is assigned -> completed -> submitted ->
// reviewed; nothing in the data model prevents an out-of-order transition.
type Assignment struct {
	ID          string           `json:"id"`
	WorkoutID   string           `json:"workoutId"`
	ExerciseID  string           `json:"exerciseId"`
	ClientID    string           `json:"clientId"`
	Sets        *int             `json:"sets,omitempty"`
	Reps        *int             `json:"reps,omitempty"`
	Weight      *float64         `json:"weight,omitempty"`
	Status      AssignmentStatus `json:"status"`
	ClientNotes string           `json:"clientNotes,omitempty"` // Notes from client when submitting
	Feedback    string           `json:"feedback,omitempty"`    // Feedback from the trainer
	UploadID    *string          `json:"uploadId,omitempty"`    // Link to the client's video Upload
	AssignedAt  time.Time        `json:"assignedAt"`
	DueDate     *time.Time       `json:"dueDate,omitempty"`
	CompletedAt *time.Time       `json:"completedAt,omitempty"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

func (a Assignment) EntityID() string { return a.ID }
