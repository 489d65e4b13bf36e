package compression

// Options bound the produced artifact. Zero fields take the defaults, so
// Options{} is equivalent to DefaultOptions().
type Options struct {
	MaxWidth       int
	MaxHeight      int
	TargetMaxBytes int
	MinQuality     float64
	MaxQuality     float64
}

func DefaultOptions() Options {
	return Options{
		MaxWidth:       DefaultMaxWidth,
		MaxHeight:      DefaultMaxHeight,
		TargetMaxBytes: DefaultTargetMaxBytes,
		MinQuality:     DefaultMinQuality,
		MaxQuality:     DefaultMaxQuality,
	}
}

func (o Options) withDefaults() Options {
	if o.MaxWidth <= 0 {
		o.MaxWidth = DefaultMaxWidth
	}
	if o.MaxHeight <= 0 {
		o.MaxHeight = DefaultMaxHeight
	}
	if o.TargetMaxBytes <= 0 {
		o.TargetMaxBytes = DefaultTargetMaxBytes
	}
	if o.MinQuality <= 0 || o.MinQuality > 1 {
		o.MinQuality = DefaultMinQuality
	}
	if o.MaxQuality <= 0 || o.MaxQuality > 1 {
		o.MaxQuality = DefaultMaxQuality
	}
	if o.MinQuality > o.MaxQuality {
		o.MinQuality, o.MaxQuality = o.MaxQuality, o.MinQuality
	}

	return o
}

const (
	DefaultMaxWidth       = 1600
	DefaultMaxHeight      = 1600
	DefaultTargetMaxBytes = 800 * 1024
	DefaultMinQuality     = 0.6
	DefaultMaxQuality     = 0.95

	// FallbackQuality is used for the last unconditional encode.
	FallbackQuality = 0.7

	dimensionRounds = 3
	qualityProbes   = 6
	shrinkFactor    = 0.9
)
