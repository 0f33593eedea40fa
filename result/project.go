// Package result projects raw verify responses into the fully-shaped
// display structure.
//
// Project is a pure function and never fails for a well-formed JSON
// object, however sparse: every missing field degrades to its documented
// default instead of surfacing as absent.
package result

import (
	"github.com/SHINOYP/KYC/types"
)

// Defaults substituted for fields the API omitted.
const (
	defaultName         = "Unknown"
	defaultDOB          = "Unknown"
	defaultIDNumber     = "Unknown"
	defaultDocumentType = "unknown"
	defaultRiskLevel    = "unknown"
	defaultSummary      = "Verification completed."
	defaultStatus       = "completed"
)

// Project maps a raw verify response into a VerificationResult, filling
// defaults for every absent optional field. verification_id, success,
// timestamp and processing_time pass through with no substitution.
func Project(raw map[string]any) *types.VerificationResult {
	return &types.VerificationResult{
		VerificationID: asString(raw["verification_id"], ""),
		Success:        asBool(raw["success"], false),
		TrustScore:     clampScore(asNumber(raw["trust_score"], 0)),
		FaceConfidence: asNumber(raw["face_confidence"], 0),
		Extracted: types.Extracted{
			Name:         asString(raw["name"], defaultName),
			DOB:          asString(raw["dob"], defaultDOB),
			IDNumber:     asString(raw["id_number"], defaultIDNumber),
			DocumentType: asString(raw["document_type"], defaultDocumentType),
		},
		FraudFlags:     projectFraudFlags(asMap(raw["fraud_flags"])),
		Summary:        asString(raw["summary"], defaultSummary),
		Status:         asString(raw["status"], defaultStatus),
		Timestamp:      asString(raw["timestamp"], ""),
		ProcessingTime: asNumber(raw["processing_time"], 0),
	}
}

func projectFraudFlags(raw map[string]any) types.FraudFlags {
	return types.FraudFlags{
		HasFraudIndicators: asBool(raw["has_fraud_indicators"], false),
		RiskLevel:          asString(raw["risk_level"], defaultRiskLevel),
		Flags:              asStringList(raw["flags"]),
		Summary:            asString(raw["summary"], ""),
		Details:            projectDetails(asMap(raw["details"])),
	}
}

func projectDetails(raw map[string]any) types.FraudDetails {
	return types.FraudDetails{
		AgeValidation:     asMapNonNil(raw["age_validation"]),
		ExpiryValidation:  asMapNonNil(raw["expiry_validation"]),
		NameValidation:    asMapNonNil(raw["name_validation"]),
		IDValidation:      asMapNonNil(raw["id_validation"]),
		ConsistencyIssues: asList(raw["consistency_issues"]),
	}
}

// clampScore bounds the trust score to the documented 0..100 range.
func clampScore(v float64) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return int(v)
	}
}

// asString returns v if it is a non-empty string, else def.
func asString(v any, def string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return def
}

// asBool returns v if it is a bool, else def.
func asBool(v any, def bool) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return def
}

// asNumber accepts the numeric types encoding/json produces plus ints
// from hand-built maps.
func asNumber(v any, def float64) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return def
	}
}

// asMap returns v as a map, or an empty map. The result may be read from
// but is never written to.
func asMap(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

// asMapNonNil is asMap but guarantees a freshly allocated map for absent
// values, so projected details are always safely mutable by callers.
func asMapNonNil(v any) map[string]any {
	if m, ok := v.(map[string]any); ok && m != nil {
		return m
	}
	return map[string]any{}
}

// asList returns v as a slice, or an empty slice.
func asList(v any) []any {
	if l, ok := v.([]any); ok && l != nil {
		return l
	}
	return []any{}
}

// asStringList coerces a JSON array to strings, skipping non-string
// entries. Always non-nil.
func asStringList(v any) []string {
	out := []string{}
	switch l := v.(type) {
	case []string:
		return append(out, l...)
	case []any:
		for _, item := range l {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
	}
	return out
}
