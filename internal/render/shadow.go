package render

import (
	"image"
	"image/color"
	"image/draw"
)

// HaloOptions configures the outline painted behind caption glyphs.
type HaloOptions struct {
	Radius int
	Offset image.Point
	// Gain multiplies the blurred coverage so thin strokes still produce a
	// solid rim. Values below 1 are treated as 1.
	Gain  float64
	Color color.RGBA
}

// DefaultHaloOptions returns the black rim captions are drawn with.
func DefaultHaloOptions() HaloOptions {
	return HaloOptions{
		Radius: 2,
		Gain:   4,
		Color:  color.RGBA{A: 255},
	}
}

// scaleHalo grows the halo with the caption font so large text keeps a
// proportionate rim.
func scaleHalo(opts HaloOptions, px float64) HaloOptions {
	if r := int(px/16 + 0.5); r > opts.Radius {
		opts.Radius = r
	}
	return opts
}

// ApplyHalo paints a blurred copy of layer's alpha channel underneath its
// content. The result has the same bounds as layer; coverage pushed past the
// edges is dropped.
func ApplyHalo(layer *image.RGBA, opts HaloOptions) *image.RGBA {
	if layer == nil {
		return nil
	}
	b := layer.Bounds()
	if b.Empty() || opts.Color.A == 0 {
		return layer
	}
	radius := opts.Radius
	if radius < 0 {
		radius = 0
	}
	gain := opts.Gain
	if gain < 1 {
		gain = 1
	}

	// DrawMask reads coverage from the mask's alpha, so the mask must be an
	// alpha image. A gray mask reports every pixel as opaque.
	mask := image.NewAlpha(b.Sub(b.Min))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if a := layer.RGBAAt(x, y).A; a != 0 {
				mask.SetAlpha(x-b.Min.X, y-b.Min.Y, color.Alpha{A: a})
			}
		}
	}
	blurred := blurAlpha(mask, radius)
	if gain > 1 {
		for i, v := range blurred.Pix {
			boosted := float64(v) * gain
			if boosted > 255 {
				boosted = 255
			}
			blurred.Pix[i] = uint8(boosted)
		}
	}

	dst := image.NewRGBA(b)
	draw.DrawMask(dst, b.Add(opts.Offset), image.NewUniform(opts.Color), image.Point{}, blurred, image.Point{}, draw.Over)
	draw.Draw(dst, b, layer, b.Min, draw.Over)
	return dst
}

// blurAlpha is a separable box blur over src.
func blurAlpha(src *image.Alpha, radius int) *image.Alpha {
	if radius <= 0 {
		out := image.NewAlpha(src.Bounds())
		copy(out.Pix, src.Pix)
		return out
	}
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	tmp := image.NewAlpha(bounds)
	dst := image.NewAlpha(bounds)

	prefix := make([]int, max(w, h)+1)
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride:]
		for x := 0; x < w; x++ {
			prefix[x+1] = prefix[x] + int(row[x])
		}
		for x := 0; x < w; x++ {
			x0, x1 := max(x-radius, 0), min(x+radius, w-1)
			tmp.Pix[y*tmp.Stride+x] = uint8((prefix[x1+1] - prefix[x0]) / (x1 - x0 + 1))
		}
	}
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			prefix[y+1] = prefix[y] + int(tmp.Pix[y*tmp.Stride+x])
		}
		for y := 0; y < h; y++ {
			y0, y1 := max(y-radius, 0), min(y+radius, h-1)
			dst.Pix[y*dst.Stride+x] = uint8((prefix[y1+1] - prefix[y0]) / (y1 - y0 + 1))
		}
	}
	return dst
}
