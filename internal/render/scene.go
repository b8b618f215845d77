// Package render rasterizes a meme scene: a base image scaled to the panel
// with caption layers on top.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/gogpu/gg"
	xdraw "golang.org/x/image/draw"
)

// ErrEmptyScene is returned when a scene has no drawable area.
var ErrEmptyScene = errors.New("render: empty scene")

// Scene is everything needed to rasterize the preview.
type Scene struct {
	// Size is the output size in pixels.
	Size image.Point
	// Base is stretched over the full output. Nil leaves Background showing.
	Base       image.Image
	Background color.Color
	Captions   []Caption
	// Indicators draws the dashed resize outlines. Exports leave it off.
	Indicators bool
	Halo       HaloOptions
}

// FitWidth returns the size base takes when scaled to width, keeping its
// aspect ratio. A nil base yields a square.
func FitWidth(base image.Image, width int) image.Point {
	if width <= 0 {
		return image.Point{}
	}
	if base == nil || base.Bounds().Dx() == 0 {
		return image.Pt(width, width)
	}
	b := base.Bounds()
	h := b.Dy() * width / b.Dx()
	if h < 1 {
		h = 1
	}
	return image.Pt(width, h)
}

// Compose rasterizes s.
func Compose(s Scene) (*image.RGBA, error) {
	if s.Size.X <= 0 || s.Size.Y <= 0 {
		return nil, ErrEmptyScene
	}
	dst := image.NewRGBA(image.Rectangle{Max: s.Size})
	if s.Background != nil {
		draw.Draw(dst, dst.Bounds(), image.NewUniform(s.Background), image.Point{}, draw.Src)
	}
	if s.Base != nil {
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), s.Base, s.Base.Bounds(), draw.Over, nil)
	}
	halo := s.Halo
	if halo == (HaloOptions{}) {
		halo = DefaultHaloOptions()
	}
	for i, c := range s.Captions {
		if err := DrawCaption(dst, c, halo); err != nil {
			return nil, fmt.Errorf("caption %d: %w", i, err)
		}
	}
	if s.Indicators {
		if err := drawIndicators(dst, s.Captions); err != nil {
			return nil, err
		}
	}
	return dst, nil
}

// drawIndicators strokes a dashed outline around every caption that asks
// for one.
func drawIndicators(dst *image.RGBA, captions []Caption) error {
	var wanted bool
	for _, c := range captions {
		if c.Indicator != nil {
			wanted = true
			break
		}
	}
	if !wanted {
		return nil
	}
	b := dst.Bounds()
	dc := gg.NewContext(b.Dx(), b.Dy())
	defer dc.Close()
	for _, c := range captions {
		if c.Indicator == nil {
			continue
		}
		w := c.IndicatorWidth
		if w <= 0 {
			w = 3
		}
		r := c.Rect.Canon()
		dc.SetColor(c.Indicator)
		dc.SetLineWidth(w)
		dc.SetDash(3*w, 2*w)
		dc.DrawRectangle(float64(r.Min.X)+w/2, float64(r.Min.Y)+w/2, float64(r.Dx())-w, float64(r.Dy())-w)
		if err := dc.Stroke(); err != nil {
			return fmt.Errorf("stroke indicator: %w", err)
		}
	}
	draw.Draw(dst, b, dc.Image(), image.Point{}, draw.Over)
	return nil
}
