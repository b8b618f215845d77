package render

import (
	"image"
	"image/color"
	"testing"
)

func TestApplyHaloKeepsBounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	img.Set(5, 5, color.RGBA{R: 255, A: 255})

	out := ApplyHalo(img, HaloOptions{Radius: 2, Gain: 4, Color: color.RGBA{A: 255}})
	if out == nil {
		t.Fatal("expected output image")
	}
	if !out.Bounds().Eq(img.Bounds()) {
		t.Fatalf("bounds %v, want %v", out.Bounds(), img.Bounds())
	}
	if got := out.RGBAAt(5, 5); got.R != 255 {
		t.Fatalf("content pixel overwritten: %+v", got)
	}
	if out.RGBAAt(6, 5).A == 0 {
		t.Fatal("expected halo next to the content pixel")
	}
	if out.RGBAAt(0, 0).A != 0 {
		t.Fatal("halo spread further than its radius")
	}
}

func TestApplyHaloLeavesEmptyAreaClear(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	img.Set(20, 10, color.RGBA{R: 255, A: 255})
	out := ApplyHalo(img, DefaultHaloOptions())
	for _, p := range []image.Point{{0, 0}, {39, 0}, {2, 18}, {30, 10}} {
		if got := out.RGBAAt(p.X, p.Y); got.A != 0 {
			t.Fatalf("pixel %v = %+v, want transparent", p, got)
		}
	}
}

func TestApplyHaloTransparentColorIsNoop(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	fill := color.RGBA{R: 200, G: 100, B: 50, A: 255}
	img.Set(1, 1, fill)
	out := ApplyHalo(img, HaloOptions{Radius: 3, Color: color.RGBA{}})
	if out != img {
		t.Fatal("expected the layer to be returned unchanged")
	}
}

func TestApplyHaloOffset(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	img.Set(1, 1, color.RGBA{G: 255, A: 255})
	out := ApplyHalo(img, HaloOptions{Radius: 0, Offset: image.Pt(3, 2), Color: color.RGBA{A: 255}})
	if got := out.RGBAAt(4, 3); got.A != 255 || got.G != 0 {
		t.Fatalf("expected solid shadow at offset, got %+v", got)
	}
}

func TestBlurAlphaSpreads(t *testing.T) {
	src := image.NewAlpha(image.Rect(0, 0, 5, 1))
	src.Pix[2] = 255
	out := blurAlpha(src, 1)
	for x, want := range []uint8{0, 85, 85, 85, 0} {
		if got := out.Pix[x]; got != want {
			t.Fatalf("pix[%d] = %d, want %d", x, got, want)
		}
	}
}
