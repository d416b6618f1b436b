package model

import "time"

type Audience string

const (
	AudienceBusiness Audience = "business"
	AudienceClient   Audience = "client"
)

const (
	AttemptSent   = "sent"
	AttemptFailed = "failed"
	AttemptQueued = "queued"
)

// NotificationAttempt is one audited delivery try.
type NotificationAttempt struct {
	ID        int64     `json:"id"`
	LeadID    *string   `json:"lead_id,omitempty"`
	ProjectID *string   `json:"project_id,omitempty"`
	Audience  Audience  `json:"audience"`
	Provider  string    `json:"provider"`
	ToNumber  string    `json:"to_number"`
	Status    string    `json:"status"`
	Error     *string   `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
