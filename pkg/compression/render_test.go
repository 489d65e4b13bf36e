package compression

import (
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/franela/goblin"
	"github.com/thebartekbanach/inspectphoto/pkg/orientation"
	testutils "github.com/thebartekbanach/inspectphoto/test/utils"
)

// references undo the stored orientation the way a viewer would
var references = map[orientation.Orientation]func(image.Image) *image.NRGBA{
	orientation.Upright:          imaging.Clone,
	orientation.MirrorHorizontal: imaging.FlipH,
	orientation.Rotate180:        imaging.Rotate180,
	orientation.MirrorVertical:   imaging.FlipV,
	orientation.Transpose:        imaging.Transpose,
	orientation.Rotate90:         imaging.Rotate270,
	orientation.Transverse:       imaging.Transverse,
	orientation.Rotate270:        imaging.Rotate90,
}

func closeColors(a, b color.Color, tolerance int) bool {
	ca := color.RGBAModel.Convert(a).(color.RGBA)
	cb := color.RGBAModel.Convert(b).(color.RGBA)

	for _, diff := range []int{
		int(ca.R) - int(cb.R),
		int(ca.G) - int(cb.G),
		int(ca.B) - int(cb.B),
	} {
		if diff > tolerance || diff < -tolerance {
			return false
		}
	}

	return true
}

// quadrantCenters samples the middle of each quadrant of bounds.
func quadrantCenters(bounds image.Rectangle) []image.Point {
	w, h := bounds.Dx(), bounds.Dy()
	return []image.Point{
		{bounds.Min.X + w/4, bounds.Min.Y + h/4},
		{bounds.Min.X + 3*w/4, bounds.Min.Y + h/4},
		{bounds.Min.X + w/4, bounds.Min.Y + 3*h/4},
		{bounds.Min.X + 3*w/4, bounds.Min.Y + 3*h/4},
	}
}

func assertMatchesReference(g *goblin.G, rendered, reference image.Image, tolerance int) {
	g.Assert(rendered.Bounds().Size()).Equal(reference.Bounds().Size())
	for _, p := range quadrantCenters(reference.Bounds()) {
		rp := p.Sub(reference.Bounds().Min).Add(rendered.Bounds().Min)
		g.Assert(closeColors(rendered.At(rp.X, rp.Y), reference.At(p.X, p.Y), tolerance)).IsTrue()
	}
}

func TestRender(t *testing.T) {
	g := goblin.Goblin(t)

	g.Describe("Render", func() {
		source := testutils.QuadrantImage(16, 8)

		g.It("Should bake every orientation into the pixels", func() {
			for o := orientation.Upright; o <= orientation.Rotate270; o++ {
				reference := references[o](source)
				size := reference.Bounds().Size()

				rendered := Render(source, o, size.X, size.Y)
				assertMatchesReference(g, rendered, reference, 2)
			}
		})

		g.It("Should scale while correcting orientation", func() {
			large := testutils.QuadrantImage(64, 32)
			reference := imaging.Resize(imaging.Rotate270(large), 16, 32, imaging.Lanczos)

			rendered := Render(large, orientation.Rotate90, 16, 32)
			assertMatchesReference(g, rendered, reference, 8)
		})

		g.It("Should handle sources that do not start at the origin", func() {
			padded := testutils.QuadrantImage(32, 16)
			sub := padded.SubImage(image.Rect(8, 4, 24, 12))
			reference := imaging.Rotate180(sub)

			rendered := Render(sub, orientation.Rotate180, 16, 8)
			assertMatchesReference(g, rendered, reference, 2)
		})

		g.It("Should flatten transparency onto white", func() {
			transparent := image.NewNRGBA(image.Rect(0, 0, 4, 4))
			rendered := Render(transparent, orientation.Upright, 4, 4)

			g.Assert(rendered.RGBAAt(2, 2)).Equal(color.RGBA{255, 255, 255, 255})
		})
	})

	g.Describe("fitWithin", func() {
		g.It("Should keep images that already fit", func() {
			w, h := fitWithin(1600, 900, 1600, 1600)
			g.Assert([]int{w, h}).Equal([]int{1600, 900})
		})

		g.It("Should apply the smallest ratio to both dimensions", func() {
			w, h := fitWithin(4000, 3000, 1600, 1600)
			g.Assert([]int{w, h}).Equal([]int{1600, 1200})

			w, h = fitWithin(1000, 4000, 1600, 1600)
			g.Assert([]int{w, h}).Equal([]int{400, 1600})
		})

		g.It("Should never produce an empty dimension", func() {
			w, h := fitWithin(10000, 2, 100, 100)
			g.Assert([]int{w, h}).Equal([]int{100, 1})
		})
	})

	g.Describe("shrink", func() {
		g.It("Should reduce both dimensions by ten percent", func() {
			w, h := shrink(1600, 1200)
			g.Assert([]int{w, h}).Equal([]int{1440, 1080})
		})
	})
}
