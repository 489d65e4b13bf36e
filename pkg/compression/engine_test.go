package compression

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"io"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/thebartekbanach/inspectphoto/pkg/decoder"
	"github.com/thebartekbanach/inspectphoto/pkg/photo"
	testutils "github.com/thebartekbanach/inspectphoto/test/utils"
)

// sizedEncoder writes quality*1000 bytes, which makes search results exact.
type sizedEncoder struct {
	mimeType string
	calls    []float64
}

func (e *sizedEncoder) MimeType() string  { return e.mimeType }
func (e *sizedEncoder) Extension() string { return "bin" }

func (e *sizedEncoder) Encode(w io.Writer, img image.Image, quality float64) error {
	e.calls = append(e.calls, quality)
	_, err := w.Write(make([]byte, int(quality*1000)))
	return err
}

// relabeledJPEG stands in for a modern format encoder.
type relabeledJPEG struct{}

func (relabeledJPEG) MimeType() string  { return "image/webp" }
func (relabeledJPEG) Extension() string { return "webp" }
func (relabeledJPEG) Encode(w io.Writer, img image.Image, quality float64) error {
	return JPEG.Encode(w, img, quality)
}

type failingEncoder struct{}

func (failingEncoder) MimeType() string  { return "image/webp" }
func (failingEncoder) Extension() string { return "webp" }
func (failingEncoder) Encode(w io.Writer, img image.Image, quality float64) error {
	return errors.New("encoder crashed")
}

func quietEngine(options ...EngineOption) (*Engine, *logrustest.Hook) {
	logger, hook := logrustest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	return NewEngine(append([]EngineOption{WithLogger(logger), WithPreferredEncoder(JPEG)}, options...)...), hook
}

func jpegSource(t *testing.T, img image.Image, orientationValue uint16) photo.SourceImage {
	data := testutils.EncodeJPEG(t, img, 92)
	if orientationValue != 0 {
		data = testutils.WithExif(data, true, testutils.OrientationEntry(orientationValue))
	}

	return photo.SourceImage{Data: data, MimeType: "image/jpeg", Filename: "photo.jpg"}
}

func TestEngine_ShouldReturnUprightImagesWithinBudgetUnchanged(t *testing.T) {
	engine, _ := quietEngine()
	source := jpegSource(t, testutils.QuadrantImage(64, 32), 0)

	artifact, err := engine.Compress(context.Background(), source, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !bytes.Equal(artifact.Data, source.Data) {
		t.Fatal("expected original bytes")
	}
	if artifact.Outcome != OutcomePassthrough || artifact.MimeType != "image/jpeg" || artifact.Extension != "jpg" {
		t.Errorf("unexpected passthrough artifact: %+v", artifact.Outcome)
	}
}

func TestEngine_ShouldReencodeRotatedImagesEvenWhenWithinBudget(t *testing.T) {
	engine, _ := quietEngine()
	source := testutils.QuadrantImage(64, 32)

	artifact, err := engine.Compress(context.Background(), jpegSource(t, source, 6), DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if artifact.Outcome != OutcomeBudget {
		t.Fatalf("expected budget outcome, got %s", artifact.Outcome)
	}
	if artifact.Width != 32 || artifact.Height != 64 {
		t.Fatalf("expected transposed 32x64 artifact, got %dx%d", artifact.Width, artifact.Height)
	}

	decoded, err := jpeg.Decode(bytes.NewReader(artifact.Data))
	if err != nil {
		t.Fatalf("artifact is not a jpeg: %v", err)
	}

	reference := imaging.Rotate270(source)
	for _, p := range quadrantCenters(reference.Bounds()) {
		if !closeColors(decoded.At(p.X, p.Y), reference.At(p.X, p.Y), 48) {
			t.Errorf("pixel at %v is not upright: got %v, want %v", p, decoded.At(p.X, p.Y), reference.At(p.X, p.Y))
		}
	}
}

func TestEngine_ShouldDownscaleToMaxDimensionsAndRespectBudget(t *testing.T) {
	engine, _ := quietEngine()
	source := photo.SourceImage{
		Data:     testutils.EncodeJPEG(t, testutils.QuadrantImage(1200, 900), 100),
		MimeType: "image/jpeg",
		Filename: "big.jpg",
	}
	// one byte short of the source so the fast path cannot apply
	opts := Options{MaxWidth: 400, MaxHeight: 400, TargetMaxBytes: source.Size() - 1}

	artifact, err := engine.Compress(context.Background(), source, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if artifact.Outcome != OutcomeBudget {
		t.Fatalf("expected budget outcome, got %s", artifact.Outcome)
	}
	if artifact.Width != 400 || artifact.Height != 300 {
		t.Errorf("expected 400x300, got %dx%d", artifact.Width, artifact.Height)
	}
	if artifact.Size() > opts.TargetMaxBytes {
		t.Errorf("artifact of %d bytes exceeds budget of %d", artifact.Size(), opts.TargetMaxBytes)
	}
	if artifact.Quality < DefaultMinQuality || artifact.Quality > DefaultMaxQuality {
		t.Errorf("quality %v outside of the searched range", artifact.Quality)
	}
}

func TestEngine_ShouldUseBaselineFallbackWhenBudgetIsUnreachable(t *testing.T) {
	engine, hook := quietEngine(WithPreferredEncoder(relabeledJPEG{}))
	source := jpegSource(t, testutils.NoiseImage(256, 256, 7), 0)

	artifact, err := engine.Compress(context.Background(), source, Options{TargetMaxBytes: 500})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if artifact.Outcome != OutcomeFallback || artifact.Quality != FallbackQuality {
		t.Fatalf("expected fallback at %v, got %s at %v", FallbackQuality, artifact.Outcome, artifact.Quality)
	}
	if artifact.MimeType != "image/jpeg" || artifact.Extension != "jpg" {
		t.Errorf("fallback must use the baseline format, got %s", artifact.MimeType)
	}
	if !artifact.BudgetExceeded {
		t.Error("expected exceeded budget to be reported")
	}
	// two shrinking rounds after the initial size
	if artifact.Width != 207 || artifact.Height != 207 {
		t.Errorf("expected fallback at the last searched size 207x207, got %dx%d", artifact.Width, artifact.Height)
	}
	if entry := hook.LastEntry(); entry == nil || entry.Level != logrus.WarnLevel {
		t.Error("expected fallback to be logged as a warning")
	}
}

func TestEngine_ShouldPreferTheModernEncoder(t *testing.T) {
	engine, _ := quietEngine(WithPreferredEncoder(relabeledJPEG{}))

	artifact, err := engine.Compress(context.Background(), jpegSource(t, testutils.QuadrantImage(64, 32), 8), DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if artifact.MimeType != "image/webp" || artifact.Extension != "webp" {
		t.Errorf("expected preferred encoder output, got %s", artifact.MimeType)
	}
}

func TestEngine_ShouldPropagateEncodingFailures(t *testing.T) {
	engine, _ := quietEngine(WithPreferredEncoder(failingEncoder{}))

	_, err := engine.Compress(context.Background(), jpegSource(t, testutils.QuadrantImage(16, 16), 3), DefaultOptions())
	if !errors.Is(err, ErrEncodingFailed) {
		t.Errorf("expected ErrEncodingFailed, got %v", err)
	}
}

func TestEngine_ShouldPropagateDecodeErrors(t *testing.T) {
	engine, _ := quietEngine()
	source := photo.SourceImage{Data: bytes.Repeat([]byte{0x42}, 64), MimeType: "image/png", Filename: "broken.png"}

	_, err := engine.Compress(context.Background(), source, Options{TargetMaxBytes: 10})

	var decodeErr *decoder.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Errorf("expected DecodeError, got %v", err)
	}
}

func TestEngine_ShouldStopOnCancelledContext(t *testing.T) {
	engine, _ := quietEngine()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Compress(ctx, jpegSource(t, testutils.QuadrantImage(16, 16), 6), DefaultOptions())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestEngine_SearchQualityKeepsTheLastCandidateWithinBudget(t *testing.T) {
	encoder := &sizedEncoder{mimeType: "test/sized"}
	engine, _ := quietEngine()
	opts := Options{TargetMaxBytes: 800}.withDefaults()

	data, quality, err := engine.searchQuality(context.Background(), image.NewRGBA(image.Rect(0, 0, 1, 1)), encoder, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(encoder.calls) != qualityProbes {
		t.Errorf("expected %d probes, got %d", qualityProbes, len(encoder.calls))
	}
	if data == nil || len(data) > 800 {
		t.Fatalf("expected a candidate within budget, got %d bytes", len(data))
	}
	if quality < 0.79 || quality > 0.8 {
		t.Errorf("expected quality just below 0.8, got %v", quality)
	}
}

func TestEngine_SearchQualityReturnsNothingWhenEveryProbeIsTooLarge(t *testing.T) {
	encoder := &sizedEncoder{mimeType: "test/sized"}
	engine, _ := quietEngine()
	opts := Options{TargetMaxBytes: 100}.withDefaults()

	data, _, err := engine.searchQuality(context.Background(), image.NewRGBA(image.Rect(0, 0, 1, 1)), encoder, opts)
	if err != nil || data != nil {
		t.Errorf("expected no candidate and no error, got %d bytes, %v", len(data), err)
	}
}

func TestProbeEncoders_ShouldSkipEncodersThatCannotEncode(t *testing.T) {
	if probeEncoders([]Encoder{failingEncoder{}}, JPEG) != JPEG {
		t.Error("expected baseline when every candidate fails")
	}

	if _, ok := probeEncoders([]Encoder{failingEncoder{}, relabeledJPEG{}}, JPEG).(relabeledJPEG); !ok {
		t.Error("expected the first working candidate")
	}
}

func TestOptions_ShouldFillDefaults(t *testing.T) {
	opts := Options{MaxWidth: 800}.withDefaults()
	expected := DefaultOptions()
	expected.MaxWidth = 800

	if opts != expected {
		t.Errorf("expected %+v, got %+v", expected, opts)
	}
}
