package cmd

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/SHINOYP/KYC/history"
	"github.com/SHINOYP/KYC/types"
)

// ResultView shapes a verification result for rendering. The JSON form
// is the full result document; the table form is a flat summary.
type ResultView struct {
	*types.VerificationResult
}

// TableKV implements render.KV.
func (v ResultView) TableKV() [][2]string {
	r := v.VerificationResult
	kv := [][2]string{
		{"verification_id", r.VerificationID},
		{"status", r.Status},
		{"trust_score", fmt.Sprintf("%d", r.TrustScore)},
		{"face_confidence", fmt.Sprintf("%.1f", r.FaceConfidence)},
		{"name", r.Extracted.Name},
		{"dob", r.Extracted.DOB},
		{"id_number", r.Extracted.IDNumber},
		{"document_type", r.Extracted.DocumentType},
		{"risk_level", r.FraudFlags.RiskLevel},
		{"fraud_flags", strings.Join(r.FraudFlags.Flags, ", ")},
		{"summary", r.Summary},
	}
	if r.Timestamp != "" {
		kv = append(kv, [2]string{"timestamp", r.Timestamp})
	}
	if r.ProcessingTime > 0 {
		kv = append(kv, [2]string{"processing_time_ms", fmt.Sprintf("%.0f", r.ProcessingTime)})
	}
	return kv
}

// HealthView shapes a health probe outcome for rendering.
type HealthView struct {
	*types.Health
}

// TableKV implements render.KV.
func (v HealthView) TableKV() [][2]string {
	kv := [][2]string{
		{"status", string(v.Status)},
		{"checked_at", v.CheckedAt.Format(time.RFC3339)},
	}
	if v.Error != "" {
		kv = append(kv, [2]string{"error", v.Error})
	}
	for _, name := range sortedKeys(v.Payload) {
		if name == "status" {
			continue
		}
		kv = append(kv, [2]string{name, fmt.Sprintf("%v", v.Payload[name])})
	}
	return kv
}

// HistoryView shapes an attempt report list for rendering.
type HistoryView struct {
	Reports []*types.Report `json:"reports"`
}

// TableRows implements render.Rows.
func (v HistoryView) TableRows() ([]string, [][]string) {
	headers := []string{"started_at", "session_id", "outcome", "status", "trust_score", "duration_ms"}
	rows := make([][]string, 0, len(v.Reports))
	for _, r := range v.Reports {
		status, trust := "-", "-"
		if r.Result != nil {
			status = r.Result.Status
			trust = fmt.Sprintf("%d", r.Result.TrustScore)
		}
		rows = append(rows, []string{
			r.StartedAt.Format(time.RFC3339),
			r.SessionID,
			r.Outcome,
			status,
			trust,
			fmt.Sprintf("%d", r.DurationMs),
		})
	}
	return headers, rows
}

// StatsView shapes aggregate statistics for rendering.
type StatsView struct {
	history.Stats
}

// TableKV implements render.KV.
func (v StatsView) TableKV() [][2]string {
	kv := [][2]string{
		{"total", fmt.Sprintf("%d", v.Total)},
		{"completed", fmt.Sprintf("%d", v.Completed)},
		{"failed", fmt.Sprintf("%d", v.Failed)},
		{"success_rate", fmt.Sprintf("%.1f%%", v.SuccessRate)},
		{"avg_trust_score", fmt.Sprintf("%.1f", v.AvgTrustScore)},
		{"avg_duration_ms", fmt.Sprintf("%d", v.AvgDurationMs)},
		{"fraud_flagged", fmt.Sprintf("%d", v.FraudFlagged)},
	}
	for _, level := range sortedKeys(v.ByRiskLevel) {
		kv = append(kv, [2]string{"risk." + level, fmt.Sprintf("%d", v.ByRiskLevel[level])})
	}
	for _, status := range sortedKeys(v.ByStatus) {
		kv = append(kv, [2]string{"status." + status, fmt.Sprintf("%d", v.ByStatus[status])})
	}
	return kv
}

// sortedKeys returns map keys in stable order for table output.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
