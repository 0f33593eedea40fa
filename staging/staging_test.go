package staging

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// writePNG writes a small valid PNG and returns its path.
func writePNG(t *testing.T, name string) string {
	t.Helper()
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return writeFile(t, name, buf.Bytes())
}

// writeJPEG writes a small valid JPEG and returns its path.
func writeJPEG(t *testing.T, name string) string {
	t.Helper()
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return writeFile(t, name, buf.Bytes())
}

// writeWebP writes bytes carrying a WebP signature. The payload is not a
// decodable image, which exercises the raw-copy preview fallback.
func writeWebP(t *testing.T, name string) string {
	t.Helper()
	data := append([]byte("RIFF\x24\x00\x00\x00WEBPVP8 "), make([]byte, 24)...)
	return writeFile(t, name, data)
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func newTestArea(t *testing.T, onChange func(Snapshot)) *Area {
	t.Helper()
	a, err := NewArea(t.TempDir(), onChange)
	if err != nil {
		t.Fatalf("new area: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestSelect_AcceptsValidImage(t *testing.T) {
	a := newTestArea(t, nil)

	if err := a.Select(SlotIDCard, writePNG(t, "id.png")); err != nil {
		t.Fatalf("select: %v", err)
	}

	snap := a.Snapshot()
	if snap.IDCard == nil {
		t.Fatal("expected id_card slot occupied")
	}
	if snap.IDCard.MediaType != "image/png" {
		t.Errorf("expected image/png, got %s", snap.IDCard.MediaType)
	}
	if snap.Selfie != nil {
		t.Error("selfie slot should be empty")
	}

	// Preview exists on disk
	if _, err := os.Stat(snap.IDCard.Preview().Path()); err != nil {
		t.Errorf("preview file missing: %v", err)
	}
}

func TestSelect_AcceptsWebPSignature(t *testing.T) {
	a := newTestArea(t, nil)

	if err := a.Select(SlotSelfie, writeWebP(t, "selfie.webp")); err != nil {
		t.Fatalf("select: %v", err)
	}

	snap := a.Snapshot()
	if snap.Selfie == nil || snap.Selfie.MediaType != "image/webp" {
		t.Fatalf("expected staged image/webp, got %+v", snap.Selfie)
	}
}

func TestSelect_RejectsOversizeBeforeRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "huge.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	// Sparse file just over the limit; the size check must fire on Stat,
	// before any read.
	if err := f.Truncate(MaxFileSize + 1); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	_ = f.Close()

	a := newTestArea(t, nil)
	err = a.Select(SlotIDCard, path)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Constraint != ConstraintSize {
		t.Errorf("expected size constraint, got %s", verr.Constraint)
	}
	if a.Snapshot().IDCard != nil {
		t.Error("slot must stay empty after rejection")
	}
}

func TestSelect_RejectsDisallowedMediaType(t *testing.T) {
	path := writeFile(t, "note.txt", []byte("definitely not an image"))

	a := newTestArea(t, nil)
	err := a.Select(SlotSelfie, path)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Constraint != ConstraintMediaType {
		t.Errorf("expected media_type constraint, got %s", verr.Constraint)
	}
}

func TestSelect_RejectionKeepsPreviousFile(t *testing.T) {
	a := newTestArea(t, nil)

	if err := a.Select(SlotIDCard, writeJPEG(t, "first.jpg")); err != nil {
		t.Fatalf("select: %v", err)
	}
	first := a.Snapshot().IDCard

	bad := writeFile(t, "bad.txt", []byte("nope"))
	if err := a.Select(SlotIDCard, bad); err == nil {
		t.Fatal("expected rejection")
	}

	snap := a.Snapshot()
	if snap.IDCard != first {
		t.Error("rejection must not disturb the staged file")
	}
	if first.Preview().Released() {
		t.Error("preview of the staged file must stay live")
	}
}

func TestSelect_ReplaceReleasesOldPreview(t *testing.T) {
	a := newTestArea(t, nil)

	if err := a.Select(SlotIDCard, writePNG(t, "one.png")); err != nil {
		t.Fatalf("select: %v", err)
	}
	old := a.Snapshot().IDCard.Preview()
	oldPath := old.Path()

	if err := a.Select(SlotIDCard, writeJPEG(t, "two.jpg")); err != nil {
		t.Fatalf("replace: %v", err)
	}

	if !old.Released() {
		t.Error("replaced preview must be released")
	}
	if _, err := os.Stat(oldPath); !os.IsNotExist(err) {
		t.Errorf("old preview file should be gone, got %v", err)
	}
	if a.Snapshot().IDCard.Preview().Released() {
		t.Error("new preview must be live")
	}
}

func TestRemove_ReleasesPreviewAndClearsSlot(t *testing.T) {
	a := newTestArea(t, nil)

	if err := a.Select(SlotSelfie, writePNG(t, "selfie.png")); err != nil {
		t.Fatalf("select: %v", err)
	}
	preview := a.Snapshot().Selfie.Preview()

	if err := a.Remove(SlotSelfie); err != nil {
		t.Fatalf("remove: %v", err)
	}

	if !preview.Released() {
		t.Error("removed preview must be released")
	}
	if a.Snapshot().Selfie != nil {
		t.Error("slot must be empty after remove")
	}
}

func TestPreview_ReleaseIsIdempotent(t *testing.T) {
	a := newTestArea(t, nil)

	if err := a.Select(SlotIDCard, writePNG(t, "id.png")); err != nil {
		t.Fatalf("select: %v", err)
	}
	p := a.Snapshot().IDCard.Preview()

	if err := p.Release(); err != nil {
		t.Fatalf("first release: %v", err)
	}
	// Second release must not error even though the file is gone.
	if err := p.Release(); err != nil {
		t.Fatalf("second release: %v", err)
	}
	if p.Path() != "" {
		t.Error("released preview must not expose a path")
	}
}

func TestNotifications_OnePerMutationWithFullSnapshot(t *testing.T) {
	var got []Snapshot
	a := newTestArea(t, func(s Snapshot) { got = append(got, s) })

	if err := a.Select(SlotIDCard, writePNG(t, "id.png")); err != nil {
		t.Fatalf("select id: %v", err)
	}
	if err := a.Select(SlotSelfie, writeJPEG(t, "selfie.jpg")); err != nil {
		t.Fatalf("select selfie: %v", err)
	}
	if err := a.Remove(SlotIDCard); err != nil {
		t.Fatalf("remove: %v", err)
	}
	// Removing an already-empty slot mutates nothing and must not notify.
	if err := a.Remove(SlotIDCard); err != nil {
		t.Fatalf("remove empty: %v", err)
	}

	if len(got) != 3 {
		t.Fatalf("expected 3 notifications, got %d", len(got))
	}
	if got[0].IDCard == nil || got[0].Selfie != nil {
		t.Error("first snapshot should have only id_card")
	}
	if !got[1].Complete() {
		t.Error("second snapshot should be complete")
	}
	if got[2].IDCard != nil || got[2].Selfie == nil {
		t.Error("third snapshot should have only selfie")
	}
}

func TestRejection_EmitsNoNotification(t *testing.T) {
	var count int
	a := newTestArea(t, func(Snapshot) { count++ })

	bad := writeFile(t, "bad.bin", []byte{0x00, 0x01, 0x02, 0x03})
	if err := a.Select(SlotIDCard, bad); err == nil {
		t.Fatal("expected rejection")
	}

	if count != 0 {
		t.Errorf("expected no notifications, got %d", count)
	}
}

func TestClear_ReleasesBothPreviewsOnce(t *testing.T) {
	var count int
	a := newTestArea(t, func(Snapshot) { count++ })

	if err := a.Select(SlotIDCard, writePNG(t, "id.png")); err != nil {
		t.Fatalf("select: %v", err)
	}
	if err := a.Select(SlotSelfie, writePNG(t, "selfie.png")); err != nil {
		t.Fatalf("select: %v", err)
	}
	snap := a.Snapshot()
	count = 0

	a.Clear()

	if !snap.IDCard.Preview().Released() || !snap.Selfie.Preview().Released() {
		t.Error("both previews must be released")
	}
	if count != 1 {
		t.Errorf("clear must notify exactly once, got %d", count)
	}
	if a.Snapshot().Complete() {
		t.Error("slots must be empty after clear")
	}
}

func TestClose_ReleasesPreviewsWithoutNotification(t *testing.T) {
	var count int
	a, err := NewArea(t.TempDir(), func(Snapshot) { count++ })
	if err != nil {
		t.Fatalf("new area: %v", err)
	}

	if err := a.Select(SlotIDCard, writePNG(t, "id.png")); err != nil {
		t.Fatalf("select: %v", err)
	}
	preview := a.Snapshot().IDCard.Preview()
	count = 0

	if err := a.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if !preview.Released() {
		t.Error("teardown must release previews")
	}
	if count != 0 {
		t.Errorf("teardown must not notify, got %d notifications", count)
	}
}

func TestSelect_UnknownSlot(t *testing.T) {
	a := newTestArea(t, nil)
	if err := a.Select(Slot("passport"), writePNG(t, "id.png")); err == nil {
		t.Fatal("expected error for unknown slot")
	}
}
