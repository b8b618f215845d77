package render

import (
	"image"
	"image/color"
	"image/draw"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Caption is one text layer positioned inside a scene.
type Caption struct {
	Text  string
	Color color.Color
	// Rect is the caption box in scene pixels.
	Rect image.Rectangle
	// FontSize is in percent of BasePixelSize.
	FontSize float64
	// Indicator outlines the caption with a dashed border when set.
	Indicator color.Color
	// IndicatorWidth is the border width in pixels.
	IndicatorWidth float64
}

// WrapText splits text into lines no wider than width at px. Words longer
// than width get a line of their own.
func WrapText(text string, px float64, width int) ([]string, error) {
	face, err := faceForSize(px)
	if err != nil {
		return nil, err
	}
	d := &font.Drawer{Face: face}
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		cur := words[0]
		for _, w := range words[1:] {
			next := cur + " " + w
			if d.MeasureString(next).Ceil() <= width {
				cur = next
				continue
			}
			lines = append(lines, cur)
			cur = w
		}
		lines = append(lines, cur)
	}
	return lines, nil
}

// DrawCaption renders c onto dst. Lines are centred horizontally and the
// block is centred vertically inside c.Rect; glyphs get a halo so they stay
// legible on any background. Text overflowing the rect is clipped.
func DrawCaption(dst *image.RGBA, c Caption, halo HaloOptions) error {
	r := c.Rect.Canon()
	if r.Empty() || strings.TrimSpace(c.Text) == "" {
		return nil
	}
	px := PixelSize(c.FontSize)
	face, err := faceForSize(px)
	if err != nil {
		return err
	}
	lines, err := WrapText(c.Text, px, r.Dx())
	if err != nil {
		return err
	}
	col := c.Color
	if col == nil {
		col = color.White
	}

	layer := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	m := face.Metrics()
	lineH := m.Height.Ceil()
	if lineH <= 0 {
		lineH = m.Ascent.Ceil() + m.Descent.Ceil()
	}
	top := (r.Dy() - lineH*len(lines)) / 2
	d := &font.Drawer{Dst: layer, Src: image.NewUniform(col), Face: face}
	for i, line := range lines {
		w := d.MeasureString(line).Ceil()
		d.Dot = fixed.P((r.Dx()-w)/2, top+i*lineH+m.Ascent.Ceil())
		d.DrawString(line)
	}

	out := ApplyHalo(layer, scaleHalo(halo, px))
	draw.Draw(dst, r, out, image.Point{}, draw.Over)
	return nil
}
