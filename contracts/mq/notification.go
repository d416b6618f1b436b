package mq

import "time"

const RoutingKeyNotificationRequested = "notification.requested"

// NotificationRequestedPayload is one rendered WhatsApp message waiting for
// delivery by the worker.
type NotificationRequestedPayload struct {
	TraceID     string    `json:"trace_id,omitempty"`
	LeadID      *string   `json:"lead_id,omitempty"`
	ProjectID   *string   `json:"project_id,omitempty"`
	Audience    string    `json:"audience"` // business / client
	To          string    `json:"to"`
	Message     string    `json:"message"`
	RequestedAt time.Time `json:"requested_at"`
}
