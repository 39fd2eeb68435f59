// Package annotate draws face rectangles and name labels onto frames.
package annotate

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/kozaktomas/facecam/internal/constants"
	"github.com/kozaktomas/facecam/internal/facematch"
	"golang.org/x/image/font"
	"golang.org/x/image/font/inconsolata"
	"golang.org/x/image/math/fixed"
)

var (
	BoxColor   = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	LabelColor = color.RGBA{R: 12, G: 255, B: 36, A: 255}
)

var labelFace font.Face = inconsolata.Bold8x16

// Box draws the outline of r with the given border width. Parts outside dst are clipped.
func Box(dst draw.Image, r image.Rectangle, c color.Color, thickness int) {
	r = r.Canon()
	if thickness <= 0 || r.Empty() {
		return
	}
	src := image.NewUniform(c)
	t := min(thickness, r.Dx(), r.Dy())

	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+t), // top
		image.Rect(r.Min.X, r.Max.Y-t, r.Max.X, r.Max.Y), // bottom
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+t, r.Max.Y), // left
		image.Rect(r.Max.X-t, r.Min.Y, r.Max.X, r.Max.Y), // right
	}
	for _, e := range edges {
		draw.Draw(dst, e, src, image.Point{}, draw.Src)
	}
}

// Label draws text with its baseline starting at origin.
func Label(dst draw.Image, origin image.Point, text string, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: labelFace,
		Dot:  fixed.P(origin.X, origin.Y),
	}
	d.DrawString(text)
}

// Face draws the rectangle of a recognized face and its name just above it.
func Face(dst draw.Image, r image.Rectangle, name string) {
	Box(dst, r, BoxColor, constants.BoxThickness)
	ascent := labelFace.Metrics().Ascent.Ceil()
	origin := facematch.LabelOrigin(r, constants.LabelOffset, ascent)
	Label(dst, origin, facematch.DisplayLabel(name), LabelColor)
}
