package types

import "time"

// Attempt outcomes recorded in the history log.
const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
)

// StagedFileInfo describes one submitted file. Only metadata is recorded;
// image bytes never reach the history log.
type StagedFileInfo struct {
	Name      string `json:"name"`
	Size      int64  `json:"size"`
	MediaType string `json:"media_type"`
}

// Report is one history record: a single verification attempt and its
// outcome. Failed attempts carry Error and a zero Result.
type Report struct {
	SessionID  string              `json:"session_id"`
	Outcome    string              `json:"outcome"`
	Error      string              `json:"error,omitempty"`
	IDCard     StagedFileInfo      `json:"id_card"`
	Selfie     StagedFileInfo      `json:"selfie"`
	Result     *VerificationResult `json:"result,omitempty"`
	StartedAt  time.Time           `json:"started_at"`
	DurationMs int64               `json:"duration_ms"`
}

// Succeeded reports whether the attempt completed with a result.
func (r *Report) Succeeded() bool {
	return r.Outcome == OutcomeCompleted && r.Result != nil
}
