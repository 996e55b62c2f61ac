package model

import "time"

// AuditRecord captures one mutation attempt (cancel/modify/place) for the
// operator-facing audit trail. Written on success and failure alike.
type AuditRecord struct {
	ID        int64     `json:"id"`
	TraceID   string    `json:"trace_id"`
	Action    string    `json:"action"`
	Summary   string    `json:"summary"`
	Outcome   string    `json:"outcome"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	AuditOutcomeOK    = "ok"
	AuditOutcomeError = "error"
)
