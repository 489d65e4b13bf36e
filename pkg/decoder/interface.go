// Package decoder turns raw photographs into drawable pixel sources.
package decoder

import (
	"context"
	"image"

	"github.com/thebartekbanach/inspectphoto/pkg/photo"
)

// Decoded is a pixel source with its natural dimensions, that is, before any
// orientation correction.
type Decoded struct {
	Image  image.Image
	Width  int
	Height int
}

type Decoder interface {
	Decode(ctx context.Context, img photo.SourceImage) (Decoded, error)
}
