package history

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/SHINOYP/KYC/iox"
	"github.com/SHINOYP/KYC/types"
)

// logFileName is the append-only report log inside the history dir.
const logFileName = "history.log"

// FSStore keeps attempt reports in a local append-only frame log.
type FSStore struct {
	path string

	mu   sync.Mutex
	file *os.File
}

// NewFSStore opens (creating if needed) the frame log under dir.
// An empty dir defaults to the kyc subdirectory of the user state dir.
func NewFSStore(dir string) (*FSStore, error) {
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("history: resolve state dir: %w", err)
		}
		dir = filepath.Join(base, "kyc")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, wrapStorageError(err, "init", dir)
	}

	path := filepath.Join(dir, logFileName)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, wrapStorageError(err, "init", path)
	}

	return &FSStore{path: path, file: file}, nil
}

// Append encodes the report as one frame and appends it to the log.
func (s *FSStore) Append(_ context.Context, report *types.Report) error {
	if report == nil {
		return errInvalidReport
	}

	frame, err := EncodeReport(report)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return wrapStorageError(fs.ErrClosed, "append", s.path)
	}
	if _, err := s.file.Write(frame); err != nil {
		return wrapStorageError(err, "append", s.path)
	}
	return nil
}

// List reads the whole log and returns reports most recent first.
// A truncated final frame (crash mid-append) ends the scan without
// error; any other decode failure is surfaced.
func (s *FSStore) List(_ context.Context, limit int) ([]*types.Report, error) {
	file, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, wrapStorageError(err, "list", s.path)
	}
	defer iox.DiscardClose(file)

	var reports []*types.Report
	decoder := NewFrameDecoder(file)
	for {
		payload, err := decoder.ReadFrame()
		if err == io.EOF {
			break
		}
		if IsTruncatedFrame(err) {
			break
		}
		if err != nil {
			return nil, wrapStorageError(err, "list", s.path)
		}

		report, err := DecodeReport(payload)
		if err != nil {
			return nil, wrapStorageError(err, "list", s.path)
		}
		reports = append(reports, report)
	}

	reverse(reports)
	if limit > 0 && len(reports) > limit {
		reports = reports[:limit]
	}
	return reports, nil
}

// Close closes the underlying log file. Append fails afterwards.
func (s *FSStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

func reverse(reports []*types.Report) {
	for i, j := 0, len(reports)-1; i < j; i, j = i+1, j-1 {
		reports[i], reports[j] = reports[j], reports[i]
	}
}

var _ Store = (*FSStore)(nil)
