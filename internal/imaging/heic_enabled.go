//go:build heic

package imaging

import (
	"bytes"
	"image/jpeg"

	"github.com/strukturag/libheif-go"
)

// convertHEICtoJPEG decodes the primary HEIC image and re-encodes it as JPEG.
func convertHEICtoJPEG(heicData []byte) ([]byte, error) {
	ctx, err := libheif.NewContext()
	if err != nil {
		return nil, err
	}
	if err := ctx.ReadFromMemory(heicData); err != nil {
		return nil, err
	}

	handle, err := ctx.GetPrimaryImageHandle()
	if err != nil {
		return nil, err
	}

	img, err := handle.DecodeImage(libheif.ColorspaceRGB, libheif.ChromaInterleavedRGB, nil)
	if err != nil {
		return nil, err
	}

	goImg, err := img.GetImage()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, goImg, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
