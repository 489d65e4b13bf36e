// Package compression transcodes photographs into upright artifacts that fit
// a byte budget.
package compression

import (
	"context"

	"github.com/thebartekbanach/inspectphoto/pkg/photo"
)

type Compressor interface {
	Compress(ctx context.Context, img photo.SourceImage, opts Options) (Artifact, error)
}

type Outcome string

const (
	// OutcomePassthrough means the original bytes were returned as is.
	OutcomePassthrough Outcome = "passthrough"
	// OutcomeBudget means a quality search candidate fit the budget.
	OutcomeBudget Outcome = "budget"
	// OutcomeFallback means no candidate fit and the baseline format was
	// encoded at FallbackQuality.
	OutcomeFallback Outcome = "fallback"
)

// Artifact is an encoded, upright photograph ready for upload.
type Artifact struct {
	Data      []byte
	Extension string
	MimeType  string

	Outcome Outcome
	// Quality is the encoder quality in [0,1]; zero for passthrough.
	Quality float64
	// Width and Height are zero for passthrough.
	Width  int
	Height int
	// BudgetExceeded is set when the fallback still produced more bytes than
	// Options.TargetMaxBytes.
	BudgetExceeded bool
}

func (a Artifact) Size() int {
	return len(a.Data)
}
