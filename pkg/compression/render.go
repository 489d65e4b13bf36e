package compression

import (
	"image"

	"github.com/thebartekbanach/inspectphoto/pkg/orientation"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Render redraws src onto a fresh w x h canvas, baking the orientation in.
// Transparent areas end up white since the output formats are lossy raster
// formats without alpha.
func Render(src image.Image, o orientation.Orientation, w, h int) *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	bounds := src.Bounds()
	draw.CatmullRom.Transform(canvas, orientationTransform(o, bounds, w, h), src, bounds, draw.Over, nil)
	return canvas
}

// orientationTransform maps source coordinates to canvas coordinates: first
// the orientation (mirror, rotation, translation), then scaling to w x h.
func orientationTransform(o orientation.Orientation, src image.Rectangle, w, h int) f64.Aff3 {
	sw, sh := float64(src.Dx()), float64(src.Dy())

	var m f64.Aff3
	switch o {
	case orientation.MirrorHorizontal:
		m = f64.Aff3{-1, 0, sw, 0, 1, 0}
	case orientation.Rotate180:
		m = f64.Aff3{-1, 0, sw, 0, -1, sh}
	case orientation.MirrorVertical:
		m = f64.Aff3{1, 0, 0, 0, -1, sh}
	case orientation.Transpose:
		m = f64.Aff3{0, 1, 0, 1, 0, 0}
	case orientation.Rotate90:
		m = f64.Aff3{0, -1, sh, 1, 0, 0}
	case orientation.Transverse:
		m = f64.Aff3{0, -1, sh, -1, 0, sw}
	case orientation.Rotate270:
		m = f64.Aff3{0, 1, 0, -1, 0, sw}
	default:
		m = f64.Aff3{1, 0, 0, 0, 1, 0}
	}

	upW, upH := sw, sh
	if o.Transposed() {
		upW, upH = sh, sw
	}

	kx, ky := float64(w)/upW, float64(h)/upH
	m[0], m[1], m[2] = m[0]*kx, m[1]*kx, m[2]*kx
	m[3], m[4], m[5] = m[3]*ky, m[4]*ky, m[5]*ky

	// source rectangles need not start at the origin
	minX, minY := float64(src.Min.X), float64(src.Min.Y)
	m[2] -= m[0]*minX + m[1]*minY
	m[5] -= m[3]*minX + m[4]*minY

	return m
}
