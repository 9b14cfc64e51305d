package api

import (
	"time"

	"github.com/alcyxob/FitnessClient-sub001/internal/domain"
)

// --- Auth ---

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult carries the bearer token and the authenticated user.
type LoginResult struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// --- Trainer mutations ---

// CreatePlanRequest is the body for POST /trainer/clients/{id}/plans.
type CreatePlanRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	IsActive    bool       `json:"isActive"`
}

// CreateAssignmentRequest is the body for POST /trainer/assignments.
type CreateAssignmentRequest struct {
	WorkoutID  string     `json:"workoutId"`
	ExerciseID string     `json:"exerciseId"`
	ClientID   string     `json:"clientId"`
	Sets       *int       `json:"sets,omitempty"`
	Reps       *int       `json:"reps,omitempty"`
	Weight     *float64   `json:"weight,omitempty"`
	DueDate    *time.Time `json:"dueDate,omitempty"`
}

type updateStatusRequest struct {
	Status      domain.AssignmentStatus `json:"status"`
	ClientNotes string                  `json:"clientNotes,omitempty"`
}

// --- Upload protocol ---

type uploadURLRequest struct {
	ContentType string `json:"contentType"`
}

// UploadURLResponse is the negotiated upload target: a presigned PUT URL and
// the object key the client must report back on confirm.
type UploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
}

// ConfirmUploadRequest is the body for POST /client/assignments/{id}/upload-confirm.
type ConfirmUploadRequest struct {
	ObjectKey   string `json:"objectKey"`
	FileName    string `json:"fileName"`
	FileSize    int64  `json:"fileSize"`
	ContentType string `json:"contentType"`
}
