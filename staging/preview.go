package staging

import (
	"bytes"
	"image"
	"os"
	"sync"

	// Register the decoders for the accepted media types.
	_ "image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// previewMaxDim bounds the longest edge of a generated thumbnail.
const previewMaxDim = 256

// Preview is the display resource paired with a staged file: a thumbnail
// written to the preview directory. Ownership is strictly one slot to one
// preview; replacing or removing the staged file releases it.
type Preview struct {
	path string

	once     sync.Once
	released bool
	mu       sync.Mutex
}

// newPreview writes a preview file for the given image bytes.
// Decodable images are downscaled and re-encoded as PNG; if decoding
// fails the original bytes are written verbatim so a preview always
// exists for an accepted file.
func newPreview(dir string, data []byte) (*Preview, error) {
	f, err := os.CreateTemp(dir, "preview-*.png")
	if err != nil {
		return nil, err
	}

	content := thumbnailPNG(data)
	if content == nil {
		content = data
	}

	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return nil, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return nil, err
	}

	return &Preview{path: f.Name()}, nil
}

// Path returns the preview file location, or "" after release.
func (p *Preview) Path() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.released {
		return ""
	}
	return p.path
}

// Released reports whether the preview resource has been released.
func (p *Preview) Released() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.released
}

// Release deletes the preview file. Safe to call more than once; the
// file is removed exactly once.
func (p *Preview) Release() error {
	var err error
	p.once.Do(func() {
		err = os.Remove(p.path)
		p.mu.Lock()
		p.released = true
		p.mu.Unlock()
	})
	return err
}

// thumbnailPNG decodes data and returns a downscaled PNG encoding, or nil
// if the image cannot be decoded.
func thumbnailPNG(data []byte) []byte {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return nil
	}

	scale := 1.0
	if w > h {
		if w > previewMaxDim {
			scale = float64(previewMaxDim) / float64(w)
		}
	} else {
		if h > previewMaxDim {
			scale = float64(previewMaxDim) / float64(h)
		}
	}

	dw, dh := int(float64(w)*scale), int(float64(h)*scale)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil
	}
	return buf.Bytes()
}
