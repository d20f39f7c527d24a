//go:build !heic

package imaging

// convertHEICtoJPEG is unavailable without libheif; build with -tags heic.
func convertHEICtoJPEG([]byte) ([]byte, error) {
	return nil, ErrHEICUnsupported
}
