// Package api implements the HTTP client for the remote KYC verification
// service.
//
// The service exposes three endpoints under /api/v1/kyc: a no-body health
// probe, a multipart verify endpoint taking the id_card and selfie parts,
// and a status lookup for a prior verification. Responses are returned as
// raw JSON objects; projection into the display shape happens in the
// result package.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/SHINOYP/KYC/iox"
	"github.com/SHINOYP/KYC/types"
)

// Endpoint paths relative to the base URL.
const (
	healthPath = "/api/v1/kyc/health"
	verifyPath = "/api/v1/kyc/verify"
	statusPath = "/api/v1/kyc/status/"
)

// DefaultVerifyTimeout bounds a verify request. The service gives no
// intermediate progress signal, so without this bound a stalled request
// would leave the session loading forever.
const DefaultVerifyTimeout = 120 * time.Second

// DefaultProbeTimeout bounds a health probe.
const DefaultProbeTimeout = 10 * time.Second

// Config configures the verification API client.
type Config struct {
	// BaseURL is the service root, e.g. http://localhost:8000 (required).
	BaseURL string
	// VerifyTimeout bounds the verify request (default 120s).
	VerifyTimeout time.Duration
	// ProbeTimeout bounds health and status requests (default 10s).
	ProbeTimeout time.Duration
}

// Client talks to the verification service. Safe for concurrent use;
// a health probe and an in-flight verify may be outstanding at once.
type Client struct {
	config Config
	client *http.Client
}

// New creates a client from the given config.
// Returns an error if the base URL is empty.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("api client requires a base URL")
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.VerifyTimeout <= 0 {
		cfg.VerifyTimeout = DefaultVerifyTimeout
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = DefaultProbeTimeout
	}

	// Per-request deadlines come from contexts, not a client-wide timeout,
	// so the probe and verify bounds stay independent.
	return &Client{
		config: cfg,
		client: &http.Client{},
	}, nil
}

// Part is one file part of the verify request.
type Part struct {
	Filename  string
	MediaType string
	Data      []byte
}

// Health probes the service health endpoint. The outcome is always folded
// into the returned record: 2xx retains the raw payload for display, any
// other status yields "HTTP <code>", and a transport failure yields the
// error text. The probe never reports an error to the caller because
// health is advisory display state only.
func (c *Client) Health(ctx context.Context) types.Health {
	health := types.Health{
		Status:    types.HealthError,
		CheckedAt: time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.ProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+healthPath, nil)
	if err != nil {
		health.Error = err.Error()
		return health
	}

	resp, err := c.client.Do(req)
	if err != nil {
		health.Error = err.Error()
		return health
	}
	defer iox.DiscardClose(resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		health.Error = err.Error()
		return health
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		health.Error = fmt.Sprintf("HTTP %d", resp.StatusCode)
		return health
	}

	health.Status = types.HealthHealthy
	health.Payload = decodePayload(body)
	return health
}

// Verify submits both staged files as a single multipart POST and returns
// the raw response object. Non-2xx responses surface as a *StatusError
// carrying the status code and reason phrase; a request exceeding the
// verify timeout surfaces as a *TimeoutError.
func (c *Client) Verify(ctx context.Context, idCard, selfie Part) (map[string]any, error) {
	body, contentType, err := encodeMultipart(idCard, selfie)
	if err != nil {
		return nil, fmt.Errorf("encode multipart body: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.VerifyTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+verifyPath, body)
	if err != nil {
		return nil, fmt.Errorf("create verify request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &TimeoutError{Op: "verify", After: c.config.VerifyTimeout}
		}
		return nil, fmt.Errorf("verify request failed: %w", err)
	}
	defer iox.DiscardClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain for connection reuse; the error carries code and reason.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{Code: resp.StatusCode, Reason: http.StatusText(resp.StatusCode)}
	}

	var raw map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode verify response: %w", err)
	}
	return raw, nil
}

// Status looks up a prior verification by ID.
func (c *Client) Status(ctx context.Context, verificationID string) (map[string]any, error) {
	if verificationID == "" {
		return nil, errors.New("verification ID is required")
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.ProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+statusPath+verificationID, nil)
	if err != nil {
		return nil, fmt.Errorf("create status request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("status request failed: %w", err)
	}
	defer iox.DiscardClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{Code: resp.StatusCode, Reason: http.StatusText(resp.StatusCode)}
	}

	var raw map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode status response: %w", err)
	}
	return raw, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// encodeMultipart builds the two-part verify body. Part names are fixed by
// the API contract: id_card and selfie.
func encodeMultipart(idCard, selfie Part) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, part := range []struct {
		field string
		p     Part
	}{
		{"id_card", idCard},
		{"selfie", selfie},
	} {
		if len(part.p.Data) == 0 {
			return nil, "", fmt.Errorf("part %s is empty", part.field)
		}
		fw, err := createImagePart(w, part.field, part.p)
		if err != nil {
			return nil, "", err
		}
		if _, err := fw.Write(part.p.Data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// createImagePart creates a form-file part carrying the image's real media
// type instead of the application/octet-stream default.
func createImagePart(w *multipart.Writer, field string, p Part) (io.Writer, error) {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, p.Filename))
	mediaType := p.MediaType
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	h.Set("Content-Type", mediaType)
	return w.CreatePart(h)
}

// decodePayload decodes a health payload for display. Non-JSON bodies are
// retained under a raw key rather than dropped.
func decodePayload(body []byte) map[string]any {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return map[string]any{"raw": string(body)}
	}
	return payload
}
