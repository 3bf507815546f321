package model

type MentorStatus string

const (
	MentorStatusPending  MentorStatus = "pending"
	MentorStatusVerified MentorStatus = "verified"
	MentorStatusRejected MentorStatus = "rejected"
)

// MentorApplication is a request to be listed as a mentor. At most one
// application exists per username; the status is changed out of band by
// an administrator, never through a portal route.
type MentorApplication struct {
	Username     string       `json:"username"`
	Status       MentorStatus `json:"status"`
	ProfileLink  string       `json:"profile_link"`
	StatusReason string       `json:"status_reason,omitempty"`
}
