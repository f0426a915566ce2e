package models

import "time"

// Domain event names.
const (
	EventRoleChanged    = "user.role_changed"
	EventPricingUpdated = "pricing.updated"
	EventGcashUpdated   = "gcash.updated"
)

// RoleChanged is the payload of EventRoleChanged.
type RoleChanged struct {
	UserID  string `json:"userId"`
	ActorID string `json:"actorId"`
	From    string `json:"from"`
	To      string `json:"to"`
}

// PricingUpdated is the payload of EventPricingUpdated.
type PricingUpdated struct {
	ServiceType string  `json:"serviceType"`
	From        float64 `json:"from"`
	To          float64 `json:"to"`
	ActorID     string  `json:"actorId"`
}

// GcashUpdated is the payload of EventGcashUpdated.
type GcashUpdated struct {
	EntryID string   `json:"entryId"`
	QRImage []string `json:"QRImage"`
	ActorID string   `json:"actorId"`
	Created bool     `json:"created"`
}

// AuditRecord is what the audit job logs for each event.
type AuditRecord struct {
	Event   string      `json:"event"`
	At      time.Time   `json:"at"`
	Payload interface{} `json:"payload"`
}
