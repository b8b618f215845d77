package render

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"testing"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{"#ffffff", color.RGBA{255, 255, 255, 255}, false},
		{"#F00", color.RGBA{255, 0, 0, 255}, false},
		{" #4c8ade ", color.RGBA{0x4c, 0x8a, 0xde, 255}, false},
		{"black", color.RGBA{0, 0, 0, 255}, false},
		{"#12345", color.RGBA{}, true},
		{"#zzzzzz", color.RGBA{}, true},
		{"nope", color.RGBA{}, true},
	}
	for _, tc := range tests {
		got, err := ParseColor(tc.in)
		if (err != nil) != tc.wantErr {
			t.Fatalf("ParseColor(%q) err = %v", tc.in, err)
		}
		if !tc.wantErr && got != tc.want {
			t.Fatalf("ParseColor(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestFitWidth(t *testing.T) {
	base := image.NewRGBA(image.Rect(0, 0, 200, 100))
	if got := FitWidth(base, 500); got != image.Pt(500, 250) {
		t.Fatalf("FitWidth = %v", got)
	}
	if got := FitWidth(nil, 300); got != image.Pt(300, 300) {
		t.Fatalf("FitWidth(nil) = %v", got)
	}
	if got := FitWidth(base, 0); got != (image.Point{}) {
		t.Fatalf("FitWidth(0) = %v", got)
	}
}

func TestComposeEmptyScene(t *testing.T) {
	if _, err := Compose(Scene{}); !errors.Is(err, ErrEmptyScene) {
		t.Fatalf("err = %v, want ErrEmptyScene", err)
	}
}

func TestComposeScalesBase(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}
	img, err := Compose(Scene{Size: image.Pt(40, 20), Base: solid(4, 2, red)})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 40, 20) {
		t.Fatalf("bounds %v", img.Bounds())
	}
	if got := img.RGBAAt(20, 10); got.R < 250 || got.G > 5 || got.B > 5 {
		t.Fatalf("center pixel %+v, want red", got)
	}
}

func TestComposeDrawsCaptionInsideRect(t *testing.T) {
	gray := color.RGBA{R: 128, G: 128, B: 128, A: 255}
	yellow := color.RGBA{R: 255, G: 255, A: 255}
	rect := image.Rect(0, 0, 200, 60)
	img, err := Compose(Scene{
		Size:       image.Pt(200, 200),
		Background: gray,
		Captions:   []Caption{{Text: "HI", Color: yellow, Rect: rect, FontSize: 100}},
	})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	var inside, outside int
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.RGBAAt(x, y) == gray {
				continue
			}
			if image.Pt(x, y).In(rect) {
				inside++
			} else {
				outside++
			}
		}
	}
	if inside == 0 {
		t.Fatal("caption left no pixels")
	}
	if outside != 0 {
		t.Fatalf("%d caption pixels outside its rect", outside)
	}
}

func TestComposeIndicators(t *testing.T) {
	white := color.RGBA{255, 255, 255, 255}
	blue := color.RGBA{0x4c, 0x8a, 0xde, 255}
	caption := Caption{Rect: image.Rect(10, 10, 110, 60), Indicator: blue, IndicatorWidth: 3}
	scene := Scene{Size: image.Pt(120, 80), Background: white, Captions: []Caption{caption}}

	plain, err := Compose(scene)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	scene.Indicators = true
	marked, err := Compose(scene)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}

	changed := func(img *image.RGBA) int {
		n := 0
		for x := 10; x < 110; x++ {
			for y := 10; y < 14; y++ {
				if img.RGBAAt(x, y) != white {
					n++
				}
			}
		}
		return n
	}
	if n := changed(plain); n != 0 {
		t.Fatalf("indicator drawn without Indicators: %d pixels", n)
	}
	if changed(marked) == 0 {
		t.Fatal("expected a dashed border along the top edge")
	}
	if got := marked.RGBAAt(60, 35); got != white {
		t.Fatalf("indicator bled into the caption body: %+v", got)
	}
}

func TestWrapText(t *testing.T) {
	lines, err := WrapText("one does not simply walk into mordor", PixelSize(100), 120)
	if err != nil {
		t.Fatalf("WrapText: %v", err)
	}
	if len(lines) < 2 {
		t.Fatalf("expected wrapping, got %q", lines)
	}
	for _, l := range lines {
		w, _, _ := MeasureText(l, PixelSize(100))
		if w > 120 && len(strings.Fields(l)) > 1 {
			t.Fatalf("line %q is %dpx wide", l, w)
		}
	}
}

func TestPixelSize(t *testing.T) {
	if got := PixelSize(100); got != BasePixelSize {
		t.Fatalf("PixelSize(100) = %v", got)
	}
	if got := PixelSize(175); got != 56 {
		t.Fatalf("PixelSize(175) = %v", got)
	}
	if got := PixelSize(0); got != BasePixelSize {
		t.Fatalf("PixelSize(0) = %v", got)
	}
}

func TestComposeCaptionKeepsBaseVisible(t *testing.T) {
	white := color.RGBA{255, 255, 255, 255}
	img, err := Compose(Scene{
		Size:     image.Pt(500, 500),
		Base:     solid(500, 500, white),
		Captions: []Caption{{Text: "HI", Color: white, Rect: image.Rect(0, 0, 500, 80)}},
	})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	for _, p := range []image.Point{{2, 2}, {497, 77}, {2, 200}} {
		if got := img.RGBAAt(p.X, p.Y); got != white {
			t.Fatalf("pixel %v = %+v, want base showing through", p, got)
		}
	}
}
