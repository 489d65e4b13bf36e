package decoder

import (
	"bytes"
	"context"
	"errors"
	"image"

	"github.com/gen2brain/jpegn"
	"github.com/thebartekbanach/inspectphoto/pkg/photo"
)

// JpegnDecoder is the fast path. It only handles baseline JPEG payloads and
// reports ErrFastPathUnavailable for anything else.
type JpegnDecoder struct {
	options jpegn.Options
}

var _ Decoder = (*JpegnDecoder)(nil)

func NewJpegnDecoder() *JpegnDecoder {
	// orientation is corrected by the renderer, never here
	return &JpegnDecoder{jpegn.Options{AutoRotate: false}}
}

func (d *JpegnDecoder) Decode(ctx context.Context, img photo.SourceImage) (Decoded, error) {
	if err := ctx.Err(); err != nil {
		return Decoded{}, err
	}

	if !bytes.HasPrefix(img.Data, jpegSignature) {
		return Decoded{}, ErrFastPathUnavailable
	}

	decoded, err := jpegn.Decode(bytes.NewReader(img.Data), &d.options)
	if err != nil {
		if errors.Is(err, jpegn.ErrNoJPEG) {
			return Decoded{}, ErrFastPathUnavailable
		}

		return Decoded{}, &DecodeError{img.Filename, err}
	}

	return newDecoded(img, decoded)
}

func newDecoded(img photo.SourceImage, decoded image.Image) (Decoded, error) {
	bounds := decoded.Bounds()
	if bounds.Empty() {
		return Decoded{}, &DecodeError{img.Filename, ErrEmptyImage}
	}

	return Decoded{
		Image:  decoded,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}

var jpegSignature = []byte{0xFF, 0xD8, 0xFF}
