// Package history persists verification attempt reports.
//
// Two backends are provided: an append-only frame log on the local
// filesystem and an S3-compatible object store for shared audit trails.
// Both store the same Report records and present them most recent
// first.
package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/SHINOYP/KYC/types"
)

// Backend names accepted by Open.
const (
	BackendFS = "fs"
	BackendS3 = "s3"
)

// Store persists and lists attempt reports.
type Store interface {
	// Append records one attempt report.
	Append(ctx context.Context, report *types.Report) error

	// List returns up to limit reports, most recent first.
	// limit <= 0 means no limit.
	List(ctx context.Context, limit int) ([]*types.Report, error)

	// Close releases store resources.
	Close() error
}

// Config selects and configures a history backend.
type Config struct {
	// Backend is "fs" or "s3" (default "fs").
	Backend string
	// Dir is the local directory for the fs backend; empty means the
	// user state directory.
	Dir string
	// S3 configures the s3 backend.
	S3 S3Config
}

// Open creates the configured store.
func Open(cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", BackendFS:
		return NewFSStore(cfg.Dir)
	case BackendS3:
		return NewS3Store(cfg.S3)
	default:
		return nil, fmt.Errorf("unknown history backend %q", cfg.Backend)
	}
}

// errInvalidReport is returned by Append for nil reports.
var errInvalidReport = errors.New("history: nil report")
