package compression

import (
	"bytes"
	"image"
	"image/jpeg"
	"io"
	"math"
	"sync"
)

// Encoder writes an image in one output format. Quality is in [0,1].
type Encoder interface {
	MimeType() string
	Extension() string
	Encode(w io.Writer, img image.Image, quality float64) error
}

type jpegEncoder struct{}

// JPEG is the baseline lossy encoder, always available.
var JPEG Encoder = jpegEncoder{}

func (jpegEncoder) MimeType() string  { return "image/jpeg" }
func (jpegEncoder) Extension() string { return "jpg" }

func (jpegEncoder) Encode(w io.Writer, img image.Image, quality float64) error {
	return jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality(quality)})
}

func jpegQuality(quality float64) int {
	q := int(math.Round(quality * 100))
	if q < 1 {
		return 1
	}
	if q > 100 {
		return 100
	}

	return q
}

var (
	modernEncodersLock sync.Mutex
	modernEncoders     []Encoder
)

// RegisterModernEncoder makes a modern compressed-raster encoder (WebP, AVIF)
// available to engines. Register from init: the capability probe runs once
// per process, on the first compression that needs it.
func RegisterModernEncoder(enc Encoder) {
	modernEncodersLock.Lock()
	defer modernEncodersLock.Unlock()

	modernEncoders = append(modernEncoders, enc)
}

// PreferredEncoder returns the first registered modern encoder that can
// actually encode, or JPEG. The result is computed once.
var PreferredEncoder = sync.OnceValue(func() Encoder {
	modernEncodersLock.Lock()
	candidates := append([]Encoder(nil), modernEncoders...)
	modernEncodersLock.Unlock()

	return probeEncoders(candidates, JPEG)
})

func probeEncoders(candidates []Encoder, baseline Encoder) Encoder {
	sample := image.NewRGBA(image.Rect(0, 0, 1, 1))
	for _, candidate := range candidates {
		buff := bytes.Buffer{}
		if err := candidate.Encode(&buff, sample, DefaultMaxQuality); err == nil && buff.Len() > 0 {
			return candidate
		}
	}

	return baseline
}
