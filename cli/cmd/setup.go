package cmd

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/SHINOYP/KYC/adapter"
	"github.com/SHINOYP/KYC/adapter/redis"
	"github.com/SHINOYP/KYC/adapter/webhook"
	"github.com/SHINOYP/KYC/api"
	"github.com/SHINOYP/KYC/cli/config"
	"github.com/SHINOYP/KYC/history"
)

// defaultConfigPath is tried when --config is not given.
const defaultConfigPath = "kyc.yaml"

// loadConfig resolves the effective config: the --config file if given,
// kyc.yaml from the working directory if present, else empty defaults.
func loadConfig(c *cli.Context) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		return config.Load(path)
	}
	if _, err := os.Stat(defaultConfigPath); err == nil {
		return config.Load(defaultConfigPath)
	}
	return &config.Config{}, nil
}

// newClient builds the API client from config and flag overrides.
func newClient(c *cli.Context, cfg *config.Config) (*api.Client, error) {
	baseURL := cfg.BaseURL
	if url := c.String("base-url"); url != "" {
		baseURL = url
	}
	if baseURL == "" {
		return nil, fmt.Errorf("no API base URL: set base_url in %s or pass --base-url", defaultConfigPath)
	}

	return api.New(api.Config{
		BaseURL:       baseURL,
		VerifyTimeout: cfg.VerifyTimeout.Duration,
		ProbeTimeout:  cfg.ProbeTimeout.Duration,
	})
}

// openHistory opens the configured history store.
func openHistory(cfg *config.Config) (history.Store, error) {
	return history.Open(historyConfig(cfg))
}

// historyConfig maps file config onto the history store config. The
// "path" key is a bucket/prefix shorthand; explicit bucket/prefix win.
func historyConfig(cfg *config.Config) history.Config {
	bucket, prefix := cfg.History.Bucket, cfg.History.Prefix
	if bucket == "" && cfg.History.Path != "" {
		bucket, prefix = history.ParseS3Path(cfg.History.Path)
	}

	return history.Config{
		Backend: cfg.History.Backend,
		Dir:     cfg.History.Dir,
		S3: history.S3Config{
			Bucket:       bucket,
			Prefix:       prefix,
			Region:       cfg.History.Region,
			Endpoint:     cfg.History.Endpoint,
			UsePathStyle: cfg.History.S3PathStyle,
		},
	}
}

// buildAdapter creates the configured notification adapter, or nil when
// none is configured.
func buildAdapter(cfg *config.Config) (adapter.Adapter, error) {
	retries := -1
	if cfg.Adapter.Retries != nil {
		retries = *cfg.Adapter.Retries
	}

	switch cfg.Adapter.Type {
	case "":
		return nil, nil
	case "webhook":
		wcfg := webhook.Config{
			URL:     cfg.Adapter.URL,
			Headers: cfg.Adapter.Headers,
			Timeout: cfg.Adapter.Timeout.Duration,
		}
		if retries >= 0 {
			wcfg.Retries = retries
		} else {
			wcfg.Retries = webhook.DefaultRetries
		}
		return webhook.New(wcfg)
	case "redis":
		rcfg := redis.Config{
			URL:     cfg.Adapter.URL,
			Channel: cfg.Adapter.Channel,
			Timeout: cfg.Adapter.Timeout.Duration,
		}
		if retries >= 0 {
			rcfg.Retries = retries
		} else {
			rcfg.Retries = redis.DefaultRetries
		}
		return redis.New(rcfg)
	default:
		return nil, fmt.Errorf("unknown adapter type %q (must be webhook or redis)", cfg.Adapter.Type)
	}
}
