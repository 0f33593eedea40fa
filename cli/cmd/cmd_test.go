package cmd

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/SHINOYP/KYC/adapter/redis"
	"github.com/SHINOYP/KYC/adapter/webhook"
	"github.com/SHINOYP/KYC/cli/config"
	"github.com/SHINOYP/KYC/history"
	"github.com/SHINOYP/KYC/types"
)

func TestReadOnlyFlags_IncludesTUI(t *testing.T) {
	flags := ReadOnlyFlags()

	hasTUI := false
	for _, f := range flags {
		if f.Names()[0] == "tui" {
			hasTUI = true
			break
		}
	}

	if !hasTUI {
		t.Error("ReadOnlyFlags should include --tui flag for explicit error handling")
	}
}

func TestAPIFlags_IncludesConfigAndBaseURL(t *testing.T) {
	names := make(map[string]bool)
	for _, f := range APIFlags() {
		names[f.Names()[0]] = true
	}

	if !names["config"] {
		t.Error("APIFlags should include --config")
	}
	if !names["base-url"] {
		t.Error("APIFlags should include --base-url")
	}
}

func TestIsStderrTTY(_ *testing.T) {
	// This test documents the function exists and can be called.
	// Actual TTY behavior depends on runtime environment.
	_ = isStderrTTY()
}

func TestBuildAdapter(t *testing.T) {
	t.Run("none configured", func(t *testing.T) {
		a, err := buildAdapter(&config.Config{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a != nil {
			t.Error("expected nil adapter when none configured")
		}
	})

	t.Run("webhook", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Adapter.Type = "webhook"
		cfg.Adapter.URL = "https://hooks.example.com/kyc"

		a, err := buildAdapter(cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a == nil {
			t.Fatal("expected webhook adapter")
		}
		if _, ok := a.(*webhook.Adapter); !ok {
			t.Errorf("expected *webhook.Adapter, got %T", a)
		}
		_ = a.Close()
	})

	t.Run("webhook missing URL", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Adapter.Type = "webhook"

		if _, err := buildAdapter(cfg); err == nil {
			t.Error("expected error for webhook adapter without URL")
		}
	})

	t.Run("redis", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Adapter.Type = "redis"
		cfg.Adapter.URL = "redis://localhost:6379/0"

		a, err := buildAdapter(cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := a.(*redis.Adapter); !ok {
			t.Errorf("expected *redis.Adapter, got %T", a)
		}
		_ = a.Close()
	})

	t.Run("unknown type", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Adapter.Type = "kafka"

		if _, err := buildAdapter(cfg); err == nil {
			t.Error("expected error for unknown adapter type")
		}
	})

	t.Run("explicit zero retries", func(t *testing.T) {
		zero := 0
		cfg := &config.Config{}
		cfg.Adapter.Type = "webhook"
		cfg.Adapter.URL = "https://hooks.example.com/kyc"
		cfg.Adapter.Retries = &zero

		a, err := buildAdapter(cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_ = a.Close()
	})
}

func TestResultView_TableKV(t *testing.T) {
	v := ResultView{&types.VerificationResult{
		VerificationID: "abc-123",
		TrustScore:     92,
		FaceConfidence: 88.5,
		Status:         types.StatusCompleted,
		Summary:        "All checks passed",
		Extracted: types.Extracted{
			Name:         "Jane Doe",
			DOB:          "1990-04-12",
			IDNumber:     "X123456",
			DocumentType: "passport",
		},
		FraudFlags: types.FraudFlags{
			RiskLevel: types.RiskLow,
			Flags:     []string{"dob_mismatch"},
		},
	}}

	kv := v.TableKV()
	got := make(map[string]string, len(kv))
	for _, pair := range kv {
		got[pair[0]] = pair[1]
	}

	want := map[string]string{
		"verification_id": "abc-123",
		"trust_score":     "92",
		"face_confidence": "88.5",
		"status":          "completed",
		"name":            "Jane Doe",
		"risk_level":      "low",
		"fraud_flags":     "dob_mismatch",
	}
	for k, w := range want {
		if got[k] != w {
			t.Errorf("%s = %q, want %q", k, got[k], w)
		}
	}

	if _, ok := got["timestamp"]; ok {
		t.Error("timestamp row should be omitted when empty")
	}
}

func TestHealthView_TableKV(t *testing.T) {
	checked := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	v := HealthView{&types.Health{
		Status:    types.HealthHealthy,
		CheckedAt: checked,
		Payload: map[string]any{
			"status":  "ok",
			"version": "2.1.0",
			"uptime":  12345,
		},
	}}

	kv := v.TableKV()
	if kv[0][0] != "status" || kv[0][1] != "healthy" {
		t.Errorf("first row = %v, want status/healthy", kv[0])
	}

	// Payload "status" duplicates the probe status and must be skipped;
	// remaining payload keys appear in sorted order.
	var payloadKeys []string
	for _, pair := range kv[2:] {
		payloadKeys = append(payloadKeys, pair[0])
	}
	if strings.Join(payloadKeys, ",") != "uptime,version" {
		t.Errorf("payload keys = %v, want [uptime version]", payloadKeys)
	}
}

func TestHistoryView_TableRows(t *testing.T) {
	started := time.Date(2026, 8, 25, 9, 30, 0, 0, time.UTC)
	v := HistoryView{Reports: []*types.Report{
		{
			SessionID:  "session-001",
			Outcome:    types.OutcomeCompleted,
			StartedAt:  started,
			DurationMs: 1250,
			Result:     &types.VerificationResult{Status: types.StatusCompleted, TrustScore: 92},
		},
		{
			SessionID:  "session-002",
			Outcome:    types.OutcomeFailed,
			Error:      "HTTP 500",
			StartedAt:  started.Add(time.Hour),
			DurationMs: 310,
		},
	}}

	headers, rows := v.TableRows()
	if len(headers) != 6 {
		t.Fatalf("expected 6 headers, got %d", len(headers))
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	if rows[0][1] != "session-001" || rows[0][4] != "92" {
		t.Errorf("completed row = %v", rows[0])
	}
	if rows[1][3] != "-" || rows[1][4] != "-" {
		t.Errorf("failed row should use placeholders for result columns, got %v", rows[1])
	}
}

func TestStatsView_TableKV(t *testing.T) {
	v := StatsView{history.Stats{
		Total:       3,
		Completed:   2,
		Failed:      1,
		SuccessRate: 66.7,
		ByRiskLevel: map[string]int64{"medium": 1, "low": 1},
		ByStatus:    map[string]int64{"completed": 2},
	}}

	kv := v.TableKV()
	var keys []string
	for _, pair := range kv {
		keys = append(keys, pair[0])
	}
	joined := strings.Join(keys, ",")

	// Breakdown rows follow the scalar rows in sorted key order.
	if !strings.Contains(joined, "risk.low,risk.medium,status.completed") {
		t.Errorf("unexpected key order: %v", keys)
	}
}

func TestVersionResponse_TableKV(t *testing.T) {
	kv := VersionResponse{Version: "0.4.0", Commit: "abcdef1"}.TableKV()
	if kv[0][1] != "0.4.0" || kv[1][1] != "abcdef1" {
		t.Errorf("unexpected version rows: %v", kv)
	}
}

// newAPITestServer serves the health and verify endpoints, counting hits.
func newAPITestServer(t *testing.T, healthHits, verifyHits *atomic.Int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/kyc/health", func(w http.ResponseWriter, _ *http.Request) {
		healthHits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"ok"}`)
	})
	mux.HandleFunc("/api/v1/kyc/verify", func(w http.ResponseWriter, _ *http.Request) {
		verifyHits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"verification_id":"abc-123","status":"completed","trust_score":92}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// newTestApp wires commands into an app whose exit handler does not
// call os.Exit, so tests can inspect the returned error.
func newTestApp(commands ...*cli.Command) *cli.App {
	app := cli.NewApp()
	app.ExitErrHandler = func(*cli.Context, error) {}
	app.Commands = commands
	return app
}

func writeTestPNG(t *testing.T, name string) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestVerify_ProbesHealthAtSessionStart(t *testing.T) {
	chdirTemp(t)

	var healthHits, verifyHits atomic.Int32
	srv := newAPITestServer(t, &healthHits, &verifyHits)

	app := newTestApp(VerifyCommand())
	err := app.Run([]string{"kyc", "verify",
		"--id", writeTestPNG(t, "id.png"),
		"--selfie", writeTestPNG(t, "selfie.png"),
		"--base-url", srv.URL,
		"--quiet", "--no-history",
	})

	var exitErr cli.ExitCoder
	if !errors.As(err, &exitErr) || exitErr.ExitCode() != 0 {
		t.Fatalf("expected exit code 0, got %v", err)
	}
	if got := healthHits.Load(); got != 1 {
		t.Errorf("health probe hits = %d, want exactly 1 at session start", got)
	}
	if got := verifyHits.Load(); got != 1 {
		t.Errorf("verify hits = %d, want 1", got)
	}
}

func TestHealth_ProbesThroughSession(t *testing.T) {
	chdirTemp(t)

	var healthHits, verifyHits atomic.Int32
	srv := newAPITestServer(t, &healthHits, &verifyHits)

	app := newTestApp(HealthCommand())
	err := app.Run([]string{"kyc", "health", "--base-url", srv.URL, "--format", "json"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := healthHits.Load(); got != 1 {
		t.Errorf("health probe hits = %d, want 1", got)
	}
	if got := verifyHits.Load(); got != 0 {
		t.Errorf("verify hits = %d, want 0 for a probe", got)
	}
}

func TestHistoryConfig_S3PathShorthand(t *testing.T) {
	t.Run("path fills bucket and prefix", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.History.Backend = "s3"
		cfg.History.Path = "kyc-reports/prod"

		hc := historyConfig(cfg)
		if hc.S3.Bucket != "kyc-reports" || hc.S3.Prefix != "prod" {
			t.Errorf("got bucket %q prefix %q", hc.S3.Bucket, hc.S3.Prefix)
		}
	})

	t.Run("explicit bucket wins over path", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.History.Backend = "s3"
		cfg.History.Path = "ignored/also-ignored"
		cfg.History.Bucket = "explicit"
		cfg.History.Prefix = "kyc"

		hc := historyConfig(cfg)
		if hc.S3.Bucket != "explicit" || hc.S3.Prefix != "kyc" {
			t.Errorf("got bucket %q prefix %q", hc.S3.Bucket, hc.S3.Prefix)
		}
	})

	t.Run("bucket only", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.History.Path = "kyc-reports"

		hc := historyConfig(cfg)
		if hc.S3.Bucket != "kyc-reports" || hc.S3.Prefix != "" {
			t.Errorf("got bucket %q prefix %q", hc.S3.Bucket, hc.S3.Prefix)
		}
	})
}

// newTestContext builds a cli.Context with no flags set.
func newTestContext(t *testing.T) *cli.Context {
	t.Helper()
	return cli.NewContext(cli.NewApp(), flag.NewFlagSet("test", flag.ContinueOnError), nil)
}

func TestLoadConfigDefaults(t *testing.T) {
	// No --config flag and no kyc.yaml in the working directory should
	// yield empty defaults rather than an error.
	chdirTemp(t)

	cfg, err := loadConfig(newTestContext(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BaseURL != "" {
		t.Errorf("expected empty defaults, got base_url %q", cfg.BaseURL)
	}
}

// chdirTemp switches to a fresh temp dir and restores the original working
// directory when the test ends (stand-in for t.Chdir, added in Go 1.24).
func chdirTemp(t *testing.T) {
	t.Helper()
	oldwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(oldwd); err != nil {
			t.Fatalf("restore wd: %v", err)
		}
	})
}
