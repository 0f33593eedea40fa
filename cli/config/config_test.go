package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kyc.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `
base_url: https://kyc.example.com
verify_timeout: 90s
probe_timeout: 5s
preview_dir: /tmp/kyc-previews
history:
  backend: s3
  bucket: audit
  prefix: kyc/history
  region: eu-west-1
  s3_path_style: true
adapter:
  type: webhook
  url: https://hooks.example.com/kyc
  headers:
    Authorization: Bearer token
  timeout: 15s
  retries: 2
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.BaseURL != "https://kyc.example.com" {
		t.Errorf("base_url: %q", cfg.BaseURL)
	}
	if cfg.VerifyTimeout.Duration != 90*time.Second {
		t.Errorf("verify_timeout: %v", cfg.VerifyTimeout.Duration)
	}
	if cfg.ProbeTimeout.Duration != 5*time.Second {
		t.Errorf("probe_timeout: %v", cfg.ProbeTimeout.Duration)
	}
	if cfg.History.Backend != "s3" || cfg.History.Bucket != "audit" || !cfg.History.S3PathStyle {
		t.Errorf("history: %+v", cfg.History)
	}
	if cfg.Adapter.Type != "webhook" || cfg.Adapter.URL != "https://hooks.example.com/kyc" {
		t.Errorf("adapter: %+v", cfg.Adapter)
	}
	if cfg.Adapter.Headers["Authorization"] != "Bearer token" {
		t.Errorf("adapter headers: %#v", cfg.Adapter.Headers)
	}
	if cfg.Adapter.Retries == nil || *cfg.Adapter.Retries != 2 {
		t.Errorf("adapter retries: %v", cfg.Adapter.Retries)
	}
}

func TestLoad_EmptyConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BaseURL != "" || cfg.VerifyTimeout.Duration != 0 {
		t.Errorf("empty config should produce zero values: %+v", cfg)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "base_url: [unclosed"))
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	_, err := Load(writeConfig(t, "verify_timeout: soon"))
	if err == nil {
		t.Fatal("expected error for invalid duration")
	}
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	t.Setenv("KYC_TEST_URL", "https://env.example.com")
	cfg, err := Load(writeConfig(t, "base_url: ${KYC_TEST_URL}\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BaseURL != "https://env.example.com" {
		t.Errorf("base_url: %q", cfg.BaseURL)
	}
}
