// Package imaging prepares card photos for the extraction service.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrUnsupportedImage is returned for payloads that are not a known image format.
	ErrUnsupportedImage = errors.New("unsupported image format")
	// ErrHEICUnsupported is returned when a HEIC photo arrives and the binary was built without the heic tag.
	ErrHEICUnsupported = errors.New("heic support not compiled in")
)

var passthroughTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
	"image/gif":  {},
}

var heicBrands = map[string]struct{}{
	"heic": {}, "heix": {}, "hevc": {}, "hevx": {},
	"heim": {}, "heis": {}, "mif1": {}, "msf1": {},
}

// Prepare sniffs data and returns bytes plus a MIME type the extractor accepts.
// HEIC/HEIF photos are converted to JPEG; declared is only a hint.
func Prepare(data []byte, declared string) ([]byte, string, error) {
	if len(data) == 0 {
		return nil, "", fmt.Errorf("%w: empty payload", ErrUnsupportedImage)
	}

	if isHEIC(data) || isHEICContentType(declared) {
		converted, err := convertHEICtoJPEG(data)
		if err != nil {
			if errors.Is(err, ErrHEICUnsupported) {
				return nil, "", err
			}
			return nil, "", fmt.Errorf("convert heic: %w", err)
		}
		return converted, "image/jpeg", nil
	}

	sniffed := http.DetectContentType(data)
	if _, ok := passthroughTypes[sniffed]; ok {
		return data, sniffed, nil
	}
	return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedImage, sniffed)
}

func isHEIC(data []byte) bool {
	if len(data) < 12 || !bytes.Equal(data[4:8], []byte("ftyp")) {
		return false
	}
	_, ok := heicBrands[string(data[8:12])]
	return ok
}

func isHEICContentType(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "heic") || strings.Contains(ct, "heif")
}
