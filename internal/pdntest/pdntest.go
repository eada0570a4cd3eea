// Package pdntest builds synthetic PDN3 documents for tests.
package pdntest

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// File assembles signature, 24-bit length, header and body.
func File(header string, body ...byte) []byte {
	n := len(header)
	var buf bytes.Buffer
	buf.WriteString("PDN3")
	buf.Write([]byte{byte(n), byte(n >> 8), byte(n >> 16)})
	buf.WriteString(header)
	buf.Write(body)
	return buf.Bytes()
}

// Header returns a header in the shape the editor writes, with payload
// stored under the given attribute ("png" or "gif").
func Header(width, height int, attr, payload string) string {
	return fmt.Sprintf(
		`<pdnImage width="%d" height="%d" layers="1" savedWithVersion="3.36.7475.30547"><custom><thumb %s="%s" /></custom></pdnImage>`,
		width, height, attr, payload)
}

// Document is a complete raw-bodied file whose thumbnail is img.
func Document(t testing.TB, img image.Image) []byte {
	t.Helper()
	b := img.Bounds()
	return File(Header(b.Dx(), b.Dy(), "png", base64.StdEncoding.EncodeToString(PNG(t, img))), 0x00, 0x01)
}

// PNG encodes img.
func PNG(t testing.TB, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// Solid returns a w x h image filled with c.
func Solid(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// Write stores data as name under dir and returns the full path.
func Write(t testing.TB, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
