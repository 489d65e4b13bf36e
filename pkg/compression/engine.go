package compression

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/sirupsen/logrus"
	"github.com/thebartekbanach/inspectphoto/pkg/decoder"
	"github.com/thebartekbanach/inspectphoto/pkg/metrics"
	"github.com/thebartekbanach/inspectphoto/pkg/orientation"
	"github.com/thebartekbanach/inspectphoto/pkg/photo"
)

type Engine struct {
	decoder   decoder.Decoder
	preferred func() Encoder
	baseline  Encoder
	log       logrus.FieldLogger
	metrics   *metrics.Pipeline
}

var _ Compressor = (*Engine)(nil)

type EngineOption func(*Engine)

func WithDecoder(d decoder.Decoder) EngineOption {
	return func(e *Engine) { e.decoder = d }
}

// WithPreferredEncoder bypasses the process wide capability probe.
func WithPreferredEncoder(enc Encoder) EngineOption {
	return func(e *Engine) { e.preferred = func() Encoder { return enc } }
}

func WithLogger(log logrus.FieldLogger) EngineOption {
	return func(e *Engine) { e.log = log }
}

func WithMetrics(m *metrics.Pipeline) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

func NewEngine(options ...EngineOption) *Engine {
	engine := &Engine{
		decoder:   decoder.New(),
		preferred: PreferredEncoder,
		baseline:  JPEG,
		log:       logrus.StandardLogger(),
	}

	for _, option := range options {
		option(engine)
	}

	return engine
}

// Compress returns img unchanged when it is upright and already within the
// budget. Otherwise it redraws img upright, within MaxWidth x MaxHeight, and
// searches the highest probed quality that fits TargetMaxBytes, shrinking
// the canvas between rounds. When nothing fits, the baseline format is
// encoded at FallbackQuality; that artifact may exceed the budget and says so.
func (e *Engine) Compress(ctx context.Context, img photo.SourceImage, opts Options) (Artifact, error) {
	opts = opts.withDefaults()
	log := e.log.WithField("filename", img.Filename)

	orient := orientation.Read(img)
	if img.Size() <= opts.TargetMaxBytes && orient == orientation.Upright {
		artifact := passthrough(img)
		e.metrics.ObserveCompression(string(artifact.Outcome), artifact.Size())
		log.WithField("bytes", artifact.Size()).Debug("photo already within budget")
		return artifact, nil
	}

	decoded, err := e.decoder.Decode(ctx, img)
	if err != nil {
		return Artifact{}, err
	}

	baseWidth, baseHeight := decoded.Width, decoded.Height
	if orient.Transposed() {
		baseWidth, baseHeight = baseHeight, baseWidth
	}

	width, height := fitWithin(baseWidth, baseHeight, opts.MaxWidth, opts.MaxHeight)
	encoder := e.preferred()

	for round := 0; round < dimensionRounds; round++ {
		if round > 0 {
			width, height = shrink(width, height)
		}

		canvas := Render(decoded.Image, orient, width, height)
		data, quality, err := e.searchQuality(ctx, canvas, encoder, opts)
		if err != nil {
			return Artifact{}, err
		}

		if data != nil {
			artifact := Artifact{
				Data:      data,
				Extension: encoder.Extension(),
				MimeType:  encoder.MimeType(),
				Outcome:   OutcomeBudget,
				Quality:   quality,
				Width:     width,
				Height:    height,
			}

			e.metrics.ObserveCompression(string(artifact.Outcome), artifact.Size())
			log.WithFields(logrus.Fields{
				"bytes":       artifact.Size(),
				"quality":     quality,
				"width":       width,
				"height":      height,
				"orientation": orient.String(),
			}).Debug("photo compressed within budget")
			return artifact, nil
		}
	}

	return e.fallback(ctx, log, Render(decoded.Image, orient, width, height), opts)
}

// searchQuality binary searches [MinQuality, MaxQuality] with a fixed number of
// probes. It returns nil data when no probe fits the budget.
func (e *Engine) searchQuality(ctx context.Context, canvas image.Image, encoder Encoder, opts Options) ([]byte, float64, error) {
	low, high := opts.MinQuality, opts.MaxQuality

	var best []byte
	var bestQuality float64
	for probe := 0; probe < qualityProbes; probe++ {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}

		quality := (low + high) / 2
		data, err := encode(encoder, canvas, quality)
		if err != nil {
			return nil, 0, err
		}

		if len(data) <= opts.TargetMaxBytes {
			best, bestQuality = data, quality
			low = quality
		} else {
			high = quality
		}
	}

	return best, bestQuality, nil
}

func (e *Engine) fallback(ctx context.Context, log logrus.FieldLogger, canvas *image.RGBA, opts Options) (Artifact, error) {
	if err := ctx.Err(); err != nil {
		return Artifact{}, err
	}

	data, err := encode(e.baseline, canvas, FallbackQuality)
	if err != nil {
		return Artifact{}, err
	}

	bounds := canvas.Bounds()
	artifact := Artifact{
		Data:           data,
		Extension:      e.baseline.Extension(),
		MimeType:       e.baseline.MimeType(),
		Outcome:        OutcomeFallback,
		Quality:        FallbackQuality,
		Width:          bounds.Dx(),
		Height:         bounds.Dy(),
		BudgetExceeded: len(data) > opts.TargetMaxBytes,
	}

	e.metrics.ObserveCompression(string(artifact.Outcome), artifact.Size())
	log.WithFields(logrus.Fields{
		"bytes":          artifact.Size(),
		"targetMaxBytes": opts.TargetMaxBytes,
		"budgetExceeded": artifact.BudgetExceeded,
	}).Warn("no quality fits the byte budget, used fallback encoding")
	return artifact, nil
}

func encode(encoder Encoder, img image.Image, quality float64) ([]byte, error) {
	buff := bytes.Buffer{}
	if err := encoder.Encode(&buff, img, quality); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrEncodingFailed, encoder.MimeType(), err)
	}

	if buff.Len() == 0 {
		return nil, fmt.Errorf("%w: %s produced no bytes", ErrEncodingFailed, encoder.MimeType())
	}

	return buff.Bytes(), nil
}

func passthrough(img photo.SourceImage) Artifact {
	mimeType := img.DetectMimeType()
	if mimeType == unknownMimeType {
		mimeType = img.ResolvedMimeType()
	}

	extension := photo.ExtensionForMimeType(mimeType)
	if extension == "" {
		extension = img.Extension()
	}

	return Artifact{
		Data:      img.Data,
		Extension: extension,
		MimeType:  mimeType,
		Outcome:   OutcomePassthrough,
	}
}

// fitWithin returns the largest size with the aspect ratio of w x h that fits
// maxWidth x maxHeight, never upscaling.
func fitWithin(w, h, maxWidth, maxHeight int) (int, int) {
	if w <= maxWidth && h <= maxHeight {
		return w, h
	}

	scale := math.Min(float64(maxWidth)/float64(w), float64(maxHeight)/float64(h))
	return scaled(w, scale), scaled(h, scale)
}

func shrink(w, h int) (int, int) {
	return scaled(w, shrinkFactor), scaled(h, shrinkFactor)
}

func scaled(v int, scale float64) int {
	result := int(math.Round(float64(v) * scale))
	if result < 1 {
		return 1
	}

	return result
}

const unknownMimeType = "application/octet-stream"

var (
	ErrEncodingFailed = errors.New("encoding failed")
)
