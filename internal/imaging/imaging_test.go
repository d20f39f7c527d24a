package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestPreparePassthrough(t *testing.T) {
	data := pngBytes(t)
	out, mime, err := Prepare(data, "application/octet-stream")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mime != "image/png" {
		t.Fatalf("expected sniffed png, got %s", mime)
	}
	if !bytes.Equal(out, data) {
		t.Fatalf("expected payload untouched")
	}

	jpegHeader := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}
	if _, mime, err := Prepare(jpegHeader, "image/png"); err != nil || mime != "image/jpeg" {
		t.Fatalf("expected jpeg by content, got %s (%v)", mime, err)
	}
}

func TestPrepareRejectsUnknown(t *testing.T) {
	tests := map[string][]byte{
		"empty": nil,
		"text":  []byte("definitely not an image"),
		"pdf":   []byte("%PDF-1.4\n"),
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			if _, _, err := Prepare(data, "image/jpeg"); !errors.Is(err, ErrUnsupportedImage) {
				t.Fatalf("expected ErrUnsupportedImage, got %v", err)
			}
		})
	}
}

func TestIsHEIC(t *testing.T) {
	heic := append([]byte{0x00, 0x00, 0x00, 0x18}, []byte("ftypheic\x00\x00\x00\x00")...)
	if !isHEIC(heic) {
		t.Fatalf("expected heic brand to be detected")
	}
	mp4 := append([]byte{0x00, 0x00, 0x00, 0x18}, []byte("ftypisom\x00\x00\x00\x00")...)
	if isHEIC(mp4) {
		t.Fatalf("expected mp4 brand to be rejected")
	}
	if isHEIC([]byte("short")) {
		t.Fatalf("expected short payload to be rejected")
	}
	if !isHEICContentType("image/HEIF") || isHEICContentType("image/jpeg") {
		t.Fatalf("unexpected content type detection")
	}
}
