package decoder

import (
	"bytes"
	"context"
	"image"

	// formats understood by the fallback path
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/thebartekbanach/inspectphoto/pkg/photo"
)

// StdDecoder decodes any format registered with the image package.
type StdDecoder struct{}

var _ Decoder = (*StdDecoder)(nil)

func NewStdDecoder() *StdDecoder {
	return &StdDecoder{}
}

func (d *StdDecoder) Decode(ctx context.Context, img photo.SourceImage) (Decoded, error) {
	if err := ctx.Err(); err != nil {
		return Decoded{}, err
	}

	decoded, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return Decoded{}, &DecodeError{img.Filename, err}
	}

	return newDecoded(img, decoded)
}
