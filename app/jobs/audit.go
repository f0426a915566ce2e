// Package jobs holds the queued background jobs.
package jobs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shashiranjanraj/laundry/pkg/logger"
	"github.com/shashiranjanraj/laundry/pkg/queue"
)

const AuditName = "audit"

// Audit records one domain event in the audit log.
type Audit struct {
	Event   string          `json:"event"`
	At      time.Time       `json:"at"`
	Payload json.RawMessage `json:"payload"`
}

func NewAudit(event string, payload interface{}) (*Audit, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Audit{Event: event, At: time.Now().UTC(), Payload: raw}, nil
}

func (*Audit) JobName() string { return AuditName }

func (a *Audit) Handle(ctx context.Context) error {
	logger.WithCtx(ctx).Info("audit",
		"event", a.Event,
		"at", a.At.Format(time.RFC3339),
		"payload", string(a.Payload),
	)
	return nil
}

// Register adds every job type to m.
func Register(m *queue.Manager) {
	m.Register(AuditName, func() queue.Job { return &Audit{} })
}
