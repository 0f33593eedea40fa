// Package workflow drives a verification session: the four-step progress
// tracker, the submit orchestration, and the advisory health state.
//
// All session state (the two file slots, the workflow record, the last
// health probe) is owned by a single Controller with explicit mutation
// entry points, so the state machine is testable in isolation from any
// rendering surface.
package workflow

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/SHINOYP/KYC/api"
	"github.com/SHINOYP/KYC/log"
	"github.com/SHINOYP/KYC/result"
	"github.com/SHINOYP/KYC/staging"
	"github.com/SHINOYP/KYC/types"
)

// Step is one of the four ordered workflow phases shown to the user.
type Step int

// Workflow steps. Step only moves forward during a single attempt and
// resets to StepUpload on failure or restart.
const (
	StepUpload    Step = 1
	StepUploading Step = 2
	StepAnalyzing Step = 3
	StepComplete  Step = 4
)

// String returns the user-facing phase label.
func (s Step) String() string {
	switch s {
	case StepUpload:
		return "Upload"
	case StepUploading:
		return "Uploading"
	case StepAnalyzing:
		return "Analyzing"
	case StepComplete:
		return "Complete"
	default:
		return "Unknown"
	}
}

// Guard errors returned by StartVerification before any state change.
var (
	// ErrMissingFile means one or both slots are empty.
	ErrMissingFile = errors.New("both an ID document and a selfie must be staged")
	// ErrBusy means a verification attempt is already in flight.
	ErrBusy = errors.New("a verification is already in progress")
)

// Verifier is the client boundary the controller submits through.
// *api.Client satisfies it.
type Verifier interface {
	Verify(ctx context.Context, idCard, selfie api.Part) (map[string]any, error)
	Health(ctx context.Context) types.Health
}

// State is a point-in-time copy of the workflow record. Result and Err
// are mutually exclusive: at most one is set at any instant.
type State struct {
	Step    Step
	Loading bool
	Result  *types.VerificationResult
	Err     string
	Health  types.Health
}

// Config configures a session controller.
type Config struct {
	// Client submits verify requests and health probes (required).
	Client Verifier
	// PreviewDir is where staging previews are written; empty means a
	// session temp directory.
	PreviewDir string
	// SessionID identifies the session in logs and history records;
	// empty means a fresh UUID.
	SessionID string
	// Log receives structured session logs; nil means a stderr logger.
	Log *log.Logger
}

// Controller owns one verification session.
type Controller struct {
	client    Verifier
	area      *staging.Area
	log       *log.Logger
	sessionID string

	mu      sync.Mutex
	step    Step
	loading bool
	result  *types.VerificationResult
	errMsg  string
	health  types.Health
}

// New creates a session controller in the Idle state with an empty
// staging area and unknown health.
func New(cfg Config) (*Controller, error) {
	if cfg.Client == nil {
		return nil, errors.New("workflow controller requires a client")
	}
	if cfg.SessionID == "" {
		cfg.SessionID = uuid.NewString()
	}
	if cfg.Log == nil {
		cfg.Log = log.NewLogger(cfg.SessionID)
	}

	c := &Controller{
		client:    cfg.Client,
		log:       cfg.Log,
		sessionID: cfg.SessionID,
		step:      StepUpload,
		health:    types.Health{Status: types.HealthUnknown},
	}

	area, err := staging.NewArea(cfg.PreviewDir, c.onSelectionChanged)
	if err != nil {
		return nil, err
	}
	c.area = area
	return c, nil
}

// SessionID returns the session identifier.
func (c *Controller) SessionID() string { return c.sessionID }

// State returns a copy of the current workflow record.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Step:    c.step,
		Loading: c.loading,
		Result:  c.result,
		Err:     c.errMsg,
		Health:  c.health,
	}
}

// Staged returns the current two-slot selection.
func (c *Controller) Staged() staging.Snapshot {
	return c.area.Snapshot()
}

// Select stages a file into the given slot. Validation failures are
// returned as-is and never touch workflow state.
func (c *Controller) Select(slot staging.Slot, path string) error {
	if err := c.area.Select(slot, path); err != nil {
		c.log.Warn("file rejected", map[string]any{"slot": string(slot), "error": err.Error()})
		return err
	}
	c.log.Info("file staged", map[string]any{"slot": string(slot), "path": path})
	return nil
}

// Remove clears the given slot, releasing its preview.
func (c *Controller) Remove(slot staging.Slot) error {
	return c.area.Remove(slot)
}

// onSelectionChanged implements the implicit outcome reset: changing the
// selection while a result or error is displayed returns the workflow to
// Idle without touching the other slot. A change during an in-flight
// attempt leaves the workflow record alone.
func (c *Controller) onSelectionChanged(staging.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loading {
		return
	}
	if c.result != nil || c.errMsg != "" {
		c.step = StepUpload
		c.result = nil
		c.errMsg = ""
	}
}

// StartVerification runs one verification attempt: Uploading, then
// Analyzing once the request is dispatched, then Complete on success.
//
// The Analyzing advance is presentation-only; the API exposes no
// intermediate progress signal.
//
// Guard failures (ErrMissingFile, ErrBusy) change no state. A transport
// or HTTP failure returns the workflow to Idle with the error message
// set and both staged files preserved for retry.
//
// The returned report records the attempt for the history log and is
// non-nil whenever the guard passed, including on failure.
func (c *Controller) StartVerification(ctx context.Context) (*types.Report, error) {
	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	snap := c.area.Snapshot()
	if !snap.Complete() {
		c.mu.Unlock()
		return nil, ErrMissingFile
	}

	c.loading = true
	c.step = StepUploading
	c.result = nil
	c.errMsg = ""
	c.mu.Unlock()

	started := time.Now().UTC()
	c.log.Info("verification started", map[string]any{
		"id_card": snap.IDCard.Name,
		"selfie":  snap.Selfie.Name,
	})

	idCard := api.Part{Filename: snap.IDCard.Name, MediaType: snap.IDCard.MediaType, Data: snap.IDCard.Data}
	selfie := api.Part{Filename: snap.Selfie.Name, MediaType: snap.Selfie.MediaType, Data: snap.Selfie.Data}

	// The request is on its way; show Analyzing for the wait.
	c.mu.Lock()
	c.step = StepAnalyzing
	c.mu.Unlock()

	raw, err := c.client.Verify(ctx, idCard, selfie)
	duration := time.Since(started)

	report := &types.Report{
		SessionID:  c.sessionID,
		IDCard:     snap.IDCard.Info(),
		Selfie:     snap.Selfie.Info(),
		StartedAt:  started,
		DurationMs: duration.Milliseconds(),
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.step = StepUpload
		c.loading = false
		c.result = nil
		c.errMsg = err.Error()

		report.Outcome = types.OutcomeFailed
		report.Error = err.Error()
		c.log.Error("verification failed", map[string]any{
			"error":       err.Error(),
			"duration_ms": duration.Milliseconds(),
		})
		return report, err
	}

	projected := result.Project(raw)
	c.step = StepComplete
	c.loading = false
	c.result = projected
	c.errMsg = ""

	report.Outcome = types.OutcomeCompleted
	report.Result = projected
	c.log.Info("verification completed", map[string]any{
		"verification_id": projected.VerificationID,
		"status":          projected.Status,
		"trust_score":     projected.TrustScore,
		"duration_ms":     duration.Milliseconds(),
	})
	return report, nil
}

// CheckHealth probes the API and records the outcome. The probe is
// advisory only: it runs independently of any in-flight verification and
// never touches the workflow record.
func (c *Controller) CheckHealth(ctx context.Context) types.Health {
	h := c.client.Health(ctx)

	c.mu.Lock()
	c.health = h
	c.mu.Unlock()

	c.log.Info("health probe", map[string]any{"status": string(h.Status), "error": h.Error})
	return h
}

// Reset clears both staged files (releasing their previews) and returns
// the workflow to Idle with no result or error.
func (c *Controller) Reset() {
	c.area.Clear()

	c.mu.Lock()
	c.step = StepUpload
	c.loading = false
	c.result = nil
	c.errMsg = ""
	c.mu.Unlock()
}

// Close tears the session down, releasing every staged preview.
func (c *Controller) Close() error {
	return c.area.Close()
}
