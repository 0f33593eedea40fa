// Package staging holds the two candidate files for a verification attempt.
//
// Each slot (id_card, selfie) holds at most one staged file paired with a
// preview resource. Files are validated before acceptance: size first, then
// media type. A rejected file never disturbs the slot's current occupant.
//
// Every accept or remove mutates exactly one slot and emits exactly one
// change notification carrying the full two-slot snapshot.
package staging

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/SHINOYP/KYC/types"
)

// Slot identifies one of the two staging positions.
type Slot string

// The two staging slots. Values double as the multipart part names on the
// verify request.
const (
	SlotIDCard Slot = "id_card"
	SlotSelfie Slot = "selfie"
)

// MaxFileSize is the upper bound for a staged file (10 MiB).
const MaxFileSize = 10 << 20

// allowedMediaTypes is the fixed accept list for staged files.
var allowedMediaTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
}

// Validation constraint identifiers used in ValidationError.
const (
	ConstraintSize      = "size"
	ConstraintMediaType = "media_type"
)

// ValidationError reports which acceptance constraint a candidate file
// violated. The previously staged file, if any, is left untouched.
type ValidationError struct {
	Slot       Slot
	Constraint string
	Detail     string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s rejected: %s", e.Slot, e.Detail)
}

// StagedFile is an accepted candidate held pending submission.
type StagedFile struct {
	Name      string
	Path      string
	Size      int64
	MediaType string
	Data      []byte

	preview *Preview
}

// Preview returns the file's preview resource.
func (f *StagedFile) Preview() *Preview { return f.preview }

// Info returns the file's metadata for history records.
func (f *StagedFile) Info() types.StagedFileInfo {
	return types.StagedFileInfo{
		Name:      f.Name,
		Size:      f.Size,
		MediaType: f.MediaType,
	}
}

// Snapshot is the full two-slot selection at one instant. A nil entry
// means the slot is empty.
type Snapshot struct {
	IDCard *StagedFile
	Selfie *StagedFile
}

// Complete reports whether both slots are occupied.
func (s Snapshot) Complete() bool {
	return s.IDCard != nil && s.Selfie != nil
}

// Area owns the two staging slots and their preview resources.
//
// The change callback is invoked once per accept/remove, after the slot
// mutation, with the lock released. Callbacks must not call back into
// Select/Remove re-entrantly from another goroutine without external
// ordering; the workflow controller serializes access.
type Area struct {
	mu       sync.Mutex
	slots    map[Slot]*StagedFile
	onChange func(Snapshot)

	previewDir string
	ownsDir    bool
}

// NewArea creates a staging area. previewDir is where preview files are
// written; if empty, a temp directory is created and removed on Close.
// onChange may be nil.
func NewArea(previewDir string, onChange func(Snapshot)) (*Area, error) {
	ownsDir := false
	if previewDir == "" {
		dir, err := os.MkdirTemp("", "kyc-preview-*")
		if err != nil {
			return nil, fmt.Errorf("create preview dir: %w", err)
		}
		previewDir = dir
		ownsDir = true
	}

	return &Area{
		slots:      make(map[Slot]*StagedFile),
		onChange:   onChange,
		previewDir: previewDir,
		ownsDir:    ownsDir,
	}, nil
}

// Select validates and stages the file at path into the given slot.
//
// Constraints are checked in order: size, then media type. A violation
// returns a *ValidationError and leaves the slot untouched. On acceptance
// the slot's old preview (if any) is released, the new file is staged with
// a fresh preview, and one change notification is emitted.
func (a *Area) Select(slot Slot, path string) error {
	if err := validSlot(slot); err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size() > MaxFileSize {
		return &ValidationError{
			Slot:       slot,
			Constraint: ConstraintSize,
			Detail:     fmt.Sprintf("file size %d exceeds %d bytes", info.Size(), MaxFileSize),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	mediaType := sniffMediaType(data)
	if _, ok := allowedMediaTypes[mediaType]; !ok {
		return &ValidationError{
			Slot:       slot,
			Constraint: ConstraintMediaType,
			Detail:     fmt.Sprintf("media type %q not allowed (want JPEG, PNG, or WebP)", mediaType),
		}
	}

	// Build the preview before touching the slot so a preview failure
	// leaves the previous staged file intact.
	preview, err := newPreview(a.previewDir, data)
	if err != nil {
		return fmt.Errorf("create preview: %w", err)
	}

	staged := &StagedFile{
		Name:      filepath.Base(path),
		Path:      path,
		Size:      info.Size(),
		MediaType: mediaType,
		Data:      data,
		preview:   preview,
	}

	a.mu.Lock()
	if old := a.slots[slot]; old != nil {
		_ = old.preview.Release()
	}
	a.slots[slot] = staged
	snap := a.snapshotLocked()
	a.mu.Unlock()

	a.notify(snap)
	return nil
}

// Remove releases the slot's preview and clears the slot, emitting one
// change notification. Removing an empty slot is a no-op and emits nothing.
func (a *Area) Remove(slot Slot) error {
	if err := validSlot(slot); err != nil {
		return err
	}

	a.mu.Lock()
	staged := a.slots[slot]
	if staged == nil {
		a.mu.Unlock()
		return nil
	}
	_ = staged.preview.Release()
	delete(a.slots, slot)
	snap := a.snapshotLocked()
	a.mu.Unlock()

	a.notify(snap)
	return nil
}

// Snapshot returns the current two-slot selection.
func (a *Area) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

// Clear removes both slots, releasing previews. At most one notification
// is emitted, after both slots are cleared.
func (a *Area) Clear() {
	a.mu.Lock()
	changed := false
	for slot, staged := range a.slots {
		_ = staged.preview.Release()
		delete(a.slots, slot)
		changed = true
	}
	snap := a.snapshotLocked()
	a.mu.Unlock()

	if changed {
		a.notify(snap)
	}
}

// Close releases every live preview and, if the area created its preview
// directory, removes the directory. No notification is emitted: teardown
// is not a selection change.
func (a *Area) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for slot, staged := range a.slots {
		_ = staged.preview.Release()
		delete(a.slots, slot)
	}
	if a.ownsDir {
		return os.RemoveAll(a.previewDir)
	}
	return nil
}

func (a *Area) snapshotLocked() Snapshot {
	return Snapshot{
		IDCard: a.slots[SlotIDCard],
		Selfie: a.slots[SlotSelfie],
	}
}

func (a *Area) notify(snap Snapshot) {
	if a.onChange != nil {
		a.onChange(snap)
	}
}

func validSlot(slot Slot) error {
	switch slot {
	case SlotIDCard, SlotSelfie:
		return nil
	default:
		return fmt.Errorf("unknown slot %q", slot)
	}
}

// sniffMediaType detects the media type from content, ignoring the file
// extension. Detection uses at most the first 512 bytes.
func sniffMediaType(data []byte) string {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	return http.DetectContentType(head)
}
