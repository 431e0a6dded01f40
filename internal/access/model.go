package access

import "time"

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// AccessRequest is a self-service application for a staff account. It moves
// from pending to approved or rejected exactly once.
type AccessRequest struct {
	ID         string     `json:"id"`
	Email      string     `json:"email"`
	FullName   string     `json:"full_name"`
	Reason     *string    `json:"reason"`
	Status     string     `json:"status"`
	AdminNotes *string    `json:"admin_notes"`
	CreatedAt  time.Time  `json:"created_at"`
	ReviewedAt *time.Time `json:"reviewed_at"`
}

// ReviewResult reports the outcome of an approval or rejection. When the
// credentials email could not be delivered, EmailFailed is set and the
// temporary password is returned so the reviewer can relay it by hand.
type ReviewResult struct {
	Request           *AccessRequest `json:"request"`
	Message           string         `json:"message"`
	EmailFailed       bool           `json:"email_failed,omitempty"`
	TemporaryPassword string         `json:"temporary_password,omitempty"`
}
