// Package types defines the shared domain types for the KYC client:
// verification results, API health, and history reports.
//
// The package is a leaf: it has no internal dependencies so that every
// other package can import it freely.
package types

// Risk levels reported by the verification API.
const (
	RiskLow     = "low"
	RiskMedium  = "medium"
	RiskHigh    = "high"
	RiskUnknown = "unknown"
)

// Verification statuses reported by the verification API.
const (
	StatusPending      = "pending"
	StatusCompleted    = "completed"
	StatusFailed       = "failed"
	StatusManualReview = "manual_review"
)

// Extracted holds the personal fields the API read off the ID document.
type Extracted struct {
	Name         string `json:"name"`
	DOB          string `json:"dob"`
	IDNumber     string `json:"id_number"`
	DocumentType string `json:"document_type"`
}

// FraudDetails carries the per-rule validation breakdown nested inside
// FraudFlags. The individual validation objects are opaque to the client
// and rendered as-is.
type FraudDetails struct {
	AgeValidation     map[string]any `json:"age_validation"`
	ExpiryValidation  map[string]any `json:"expiry_validation"`
	NameValidation    map[string]any `json:"name_validation"`
	IDValidation      map[string]any `json:"id_validation"`
	ConsistencyIssues []any          `json:"consistency_issues"`
}

// FraudFlags is the structured fraud-detection section of a verification
// result.
type FraudFlags struct {
	HasFraudIndicators bool         `json:"has_fraud_indicators"`
	RiskLevel          string       `json:"risk_level"`
	Flags              []string     `json:"flags"`
	Summary            string       `json:"summary"`
	Details            FraudDetails `json:"details"`
}

// VerificationResult is the fully-shaped projection of a verify response.
// Every field is populated: fields the API omitted carry their documented
// defaults, so renderers never need nil checks.
//
// VerificationID, Success, Timestamp and ProcessingTime are passthrough
// fields with no default substitution; they are zero-valued when the API
// omitted them.
type VerificationResult struct {
	VerificationID string     `json:"verification_id"`
	Success        bool       `json:"success"`
	TrustScore     int        `json:"trust_score"`
	FaceConfidence float64    `json:"face_confidence"`
	Extracted      Extracted  `json:"extracted"`
	FraudFlags     FraudFlags `json:"fraud_flags"`
	Summary        string     `json:"summary"`
	Status         string     `json:"status"`
	Timestamp      string     `json:"timestamp"`
	ProcessingTime float64    `json:"processing_time"`
}
