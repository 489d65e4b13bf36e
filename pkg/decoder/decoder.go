package decoder

import (
	"context"
	"errors"
	"runtime"

	"github.com/thebartekbanach/inspectphoto/pkg/photo"
)

type fallbackDecoder struct {
	fast     Decoder
	fallback Decoder
}

var _ Decoder = (*fallbackDecoder)(nil)

// New returns the decoder best suited for the running platform: the SIMD
// jpegn path backed by the standard library when the architecture has
// assembly kernels, the standard library alone otherwise.
func New() Decoder {
	if fastPathSupported(runtime.GOARCH) {
		return NewFallbackDecoder(NewJpegnDecoder(), NewStdDecoder())
	}

	return NewStdDecoder()
}

// NewFallbackDecoder tries fast first and uses fallback whenever fast reports
// ErrFastPathUnavailable.
func NewFallbackDecoder(fast, fallback Decoder) Decoder {
	return &fallbackDecoder{fast, fallback}
}

func (d *fallbackDecoder) Decode(ctx context.Context, img photo.SourceImage) (Decoded, error) {
	decoded, err := d.fast.Decode(ctx, img)
	if errors.Is(err, ErrFastPathUnavailable) {
		return d.fallback.Decode(ctx, img)
	}

	return decoded, err
}

func fastPathSupported(arch string) bool {
	return arch == "amd64" || arch == "arm64"
}
