// Package adapter defines the notification boundary for completed
// verification attempts.
//
// Adapters push attempt outcomes to downstream systems (compliance
// dashboards, case-management queues). The CLI owns adapter lifecycle;
// users provide configuration only.
package adapter

import (
	"context"
	"time"

	"github.com/SHINOYP/KYC/types"
)

// EventType is the type tag carried by every published event.
const EventType = "verification_completed"

// VerificationCompletedEvent is the payload published when a
// verification attempt finishes, successfully or not.
type VerificationCompletedEvent struct {
	EventType      string `json:"event_type"` // always "verification_completed"
	SessionID      string `json:"session_id"`
	VerificationID string `json:"verification_id,omitempty"`
	Outcome        string `json:"outcome"` // completed, failed
	Status         string `json:"status,omitempty"`
	TrustScore     int    `json:"trust_score"`
	RiskLevel      string `json:"risk_level,omitempty"`
	Error          string `json:"error,omitempty"`
	Timestamp      string `json:"timestamp"` // ISO 8601
	DurationMs     int64  `json:"duration_ms"`
}

// NewEvent builds the published payload from an attempt report.
func NewEvent(report *types.Report) *VerificationCompletedEvent {
	ev := &VerificationCompletedEvent{
		EventType:  EventType,
		SessionID:  report.SessionID,
		Outcome:    string(report.Outcome),
		Error:      report.Error,
		Timestamp:  report.StartedAt.UTC().Format(time.RFC3339),
		DurationMs: report.DurationMs,
	}
	if r := report.Result; r != nil {
		ev.VerificationID = r.VerificationID
		ev.Status = r.Status
		ev.TrustScore = r.TrustScore
		ev.RiskLevel = r.FraudFlags.RiskLevel
	}
	return ev
}

// Adapter publishes verification completion events to a downstream
// system. Implementations must be safe for single-use per attempt.
type Adapter interface {
	// Publish sends a completion event to the downstream system.
	// Must respect context cancellation and deadlines.
	Publish(ctx context.Context, event *VerificationCompletedEvent) error

	// Close releases adapter resources.
	Close() error
}
