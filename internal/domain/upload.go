package domain

import "time"

// Upload stores metadata about a video file uploaded for an assignment.
// The actual file resides in object storage; the client only ever sees the
// object key it negotiated during the upload protocol.
type Upload struct {
	ID           string    `json:"id"`
	AssignmentID string    `json:"assignmentId"`
	ClientID     string    `json:"clientId"`
	FileName     string    `json:"fileName"`    // Original filename provided by client
	ContentType  string    `json:"contentType"` // MIME type (e.g., "video/mp4")
	Size         int64     `json:"size"`        // File size in bytes
	UploadedAt   time.Time `json:"uploadedAt"`
}
