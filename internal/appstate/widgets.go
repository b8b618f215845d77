package appstate

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/mobile/event/key"

	"github.com/example/memepanel/internal/overlay"
	"github.com/example/memepanel/internal/theme"
)

// Form bar geometry, in window pixels before scrolling.
const (
	margin      = 8
	rowHeight   = 24
	labelWidth  = 128
	buttonWidth = 112
)

// PaletteColor is a named entry of the caption color palette.
type PaletteColor struct {
	Name  string
	Color color.RGBA
}

var palette = []PaletteColor{
	{"Black", color.RGBA{0, 0, 0, 255}},
	{"White", color.RGBA{255, 255, 255, 255}},
	{"Red", color.RGBA{255, 0, 0, 255}},
	{"Lime", color.RGBA{0, 255, 0, 255}},
	{"Blue", color.RGBA{0, 0, 255, 255}},
	{"Yellow", color.RGBA{255, 255, 0, 255}},
	{"Cyan", color.RGBA{0, 255, 255, 255}},
	{"Magenta", color.RGBA{255, 0, 255, 255}},
	{"Maroon", color.RGBA{128, 0, 0, 255}},
	{"Green", color.RGBA{0, 128, 0, 255}},
	{"Navy", color.RGBA{0, 0, 128, 255}},
	{"Olive", color.RGBA{128, 128, 0, 255}},
	{"Teal", color.RGBA{0, 128, 128, 255}},
	{"Purple", color.RGBA{128, 0, 128, 255}},
	{"Silver", color.RGBA{192, 192, 192, 255}},
	{"Gray", color.RGBA{128, 128, 128, 255}},
}

// PaletteColors returns a copy of the caption palette.
func PaletteColors() []PaletteColor {
	out := make([]PaletteColor, len(palette))
	copy(out, palette)
	return out
}

func hexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// cyclePalette returns the palette entry step places away from hex. Colors
// outside the palette start from the first entry.
func cyclePalette(hex string, step int) PaletteColor {
	idx := -1
	for i, p := range palette {
		if strings.EqualFold(hexColor(p.Color), hex) {
			idx = i
			break
		}
	}
	if idx < 0 {
		if step > 0 {
			return palette[0]
		}
		return palette[len(palette)-1]
	}
	n := len(palette)
	return palette[((idx+step)%n+n)%n]
}

var (
	fieldFace   font.Face
	messageFace font.Face
)

func init() {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		log.Fatalf("parse font: %v", err)
	}
	fieldFace, err = opentype.NewFace(f, &opentype.FaceOptions{Size: 14, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		log.Fatalf("font face: %v", err)
	}
	messageFace, err = opentype.NewFace(f, &opentype.FaceOptions{Size: 24, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		log.Fatalf("font face: %v", err)
	}
}

// KeyShortcut describes a keyboard combination that triggers an action.
type KeyShortcut struct {
	Rune      rune
	Code      key.Code
	Modifiers key.Modifiers
}

// KeyboardShortcuts returns the shortcuts associated with an action.
type KeyboardShortcuts interface {
	KeyboardShortcuts() []KeyShortcut
}

// shortcutList is a helper to easily satisfy the KeyboardShortcuts interface.
type shortcutList []KeyShortcut

func (s shortcutList) KeyboardShortcuts() []KeyShortcut { return []KeyShortcut(s) }

// ButtonState describes the visual state of a button.
type ButtonState int

const (
	StateDefault ButtonState = iota
	StateHover
	StatePressed
	StateDisabled
)

// Button represents an interactive UI element.
// Activate performs the button's action when clicked.
type Button interface {
	Draw(dst *image.RGBA, state ButtonState)
	Rect() image.Rectangle
	SetRect(r image.Rectangle)
	Label() string
	Enabled() bool
	Activate()
}

// CacheButton wraps another Button and caches its rendered states. The
// cache is dropped when the rect or the label changes.
type CacheButton struct {
	Button
	cache [4]*image.RGBA
	label string
}

var _ Button = (*CacheButton)(nil)

func (cb *CacheButton) Draw(dst *image.RGBA, state ButtonState) {
	if l := cb.Button.Label(); l != cb.label {
		cb.label = l
		cb.cache = [4]*image.RGBA{}
	}
	if cb.cache[state] == nil {
		rect := cb.Button.Rect()
		img := image.NewRGBA(rect)
		cb.Button.Draw(img, state)
		cb.cache[state] = img
	}
	draw.Draw(dst, cb.Button.Rect(), cb.cache[state], cb.Button.Rect().Min, draw.Src)
}

func (cb *CacheButton) SetRect(r image.Rectangle) {
	if r != cb.Button.Rect() {
		cb.Button.SetRect(r)
		cb.cache = [4]*image.RGBA{}
	}
}

// ActionButton is a form bar button running onActivate when clicked.
type ActionButton struct {
	label      func() string
	enabled    func() bool
	onActivate func()
	theme      *theme.Theme
	rect       image.Rectangle
}

func (b *ActionButton) Draw(dst *image.RGBA, state ButtonState) {
	th := b.theme
	bg, fg := th.ButtonBackground, th.ButtonText
	switch state {
	case StateHover:
		bg = th.ButtonBackgroundHover
	case StatePressed:
		bg = th.ButtonBackgroundPress
	case StateDisabled:
		bg, fg = th.ButtonDisabled, th.ButtonTextDisabled
	}
	draw.Draw(dst, b.rect, &image.Uniform{bg}, image.Point{}, draw.Src)
	drawRect(dst, b.rect, th.ButtonBorder, 1)
	label := b.Label()
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(fg), Face: basicfont.Face7x13}
	w := d.MeasureString(label).Ceil()
	d.Dot = fixed.P(b.rect.Min.X+(b.rect.Dx()-w)/2, b.rect.Min.Y+16)
	d.DrawString(label)
}

func (b *ActionButton) Rect() image.Rectangle     { return b.rect }
func (b *ActionButton) SetRect(r image.Rectangle) { b.rect = r }

func (b *ActionButton) Label() string {
	if b.label == nil {
		return ""
	}
	return b.label()
}

func (b *ActionButton) Enabled() bool { return b.enabled == nil || b.enabled() }

func (b *ActionButton) Activate() {
	if b.Enabled() && b.onActivate != nil {
		b.onActivate()
	}
}

// messageBox is the transient notice drawn over the window. Presses on it
// never reach the captions beneath.
type messageBox struct {
	rect image.Rectangle
}

func (m *messageBox) HasMarker(name string) bool { return name == overlay.NoPointerEvent }

func drawRect(img *image.RGBA, rect image.Rectangle, col color.Color, thick int) {
	u := image.NewUniform(col)
	for t := 0; t < thick; t++ {
		r := rect.Inset(t)
		if r.Empty() {
			return
		}
		draw.Draw(img, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), u, image.Point{}, draw.Src)
		draw.Draw(img, image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), u, image.Point{}, draw.Src)
		draw.Draw(img, image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), u, image.Point{}, draw.Src)
		draw.Draw(img, image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), u, image.Point{}, draw.Src)
	}
}

// drawString draws s with its baseline at (x, y), clipped to clip.
func drawString(dst *image.RGBA, clip image.Rectangle, face font.Face, x, y int, s string, col color.Color) {
	sub, ok := dst.SubImage(clip.Intersect(dst.Bounds())).(*image.RGBA)
	if !ok || sub.Bounds().Empty() {
		return
	}
	d := &font.Drawer{Dst: sub, Src: image.NewUniform(col), Face: face, Dot: fixed.P(x, y)}
	d.DrawString(s)
}
