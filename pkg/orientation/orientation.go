// Package orientation reads the EXIF orientation tag of JPEG photographs
// without decoding any pixels.
package orientation

// Orientation is an EXIF orientation value in the range 1-8.
type Orientation int

const (
	Upright Orientation = iota + 1
	MirrorHorizontal
	Rotate180
	MirrorVertical
	Transpose
	Rotate90
	Transverse
	Rotate270
)

func (o Orientation) Valid() bool {
	return o >= Upright && o <= Rotate270
}

// Transposed reports whether upright output swaps width and height.
func (o Orientation) Transposed() bool {
	return o >= Transpose && o <= Rotate270
}

func (o Orientation) String() string {
	if !o.Valid() {
		return "invalid"
	}

	return names[o-1]
}

var names = [...]string{
	"upright",
	"mirror-horizontal",
	"rotate-180",
	"mirror-vertical",
	"transpose",
	"rotate-90",
	"transverse",
	"rotate-270",
}
