package domain

import "time"

// Role type to distinguish between user roles
type Role string

// Define constants for roles
const (
	RoleTrainer Role = "trainer"
	RoleClient  Role = "client"
)

// User represents a user in the system (either a Trainer or a Client).
// The ID is the server-assigned string identifier; a locally created user
// carries a client-generated placeholder ID until the first successful sync.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"` // Should be unique
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// --- Trainer-specific ---
	// IDs of Clients managed by this Trainer.
	ClientIDs []string `json:"clientIds,omitempty"`

	// --- Client-specific ---
	// ID of the Trainer managing this Client.
	TrainerID *string `json:"trainerId,omitempty"`
}

func (u User) EntityID() string { return u.ID }

func (u User) IsTrainer() bool {
	return u.Role == RoleTrainer
}

func (u User) IsClient() bool {
	return u.Role == RoleClient
}
