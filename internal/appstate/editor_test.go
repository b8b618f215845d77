package appstate

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/example/memepanel/internal/catalog"
	"github.com/example/memepanel/internal/imagesource"
	"github.com/example/memepanel/internal/kvstore"
	"github.com/example/memepanel/internal/memestate"
	"github.com/example/memepanel/internal/overlay"
	"github.com/example/memepanel/internal/panel"
	"github.com/example/memepanel/internal/theme"
)

type countingEncoder struct {
	calls atomic.Int64
	data  []byte
}

func (c *countingEncoder) Encode(context.Context, string) (string, error) {
	c.calls.Add(1)
	return imagesource.EncodeBytes(c.data)
}

type chanSaver chan string

func (c chanSaver) Save(_ context.Context, name string, _ []byte) (string, error) {
	c <- name
	return "/out/" + name, nil
}

type fixture struct {
	ed    *Editor
	panel *panel.Panel
	store *kvstore.Memory
	enc   *countingEncoder
	saved chanSaver
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	store := kvstore.NewMemory()
	form := memestate.NewForm(store)
	if err := form.Load(); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 10, 10))); err != nil {
		t.Fatal(err)
	}
	f := &fixture{store: store, enc: &countingEncoder{data: buf.Bytes()}, saved: make(chanSaver, 4)}
	f.panel = panel.New(form, imagesource.NewStatic(imagesource.Selection{}),
		panel.WithOrigin(PreviewOrigin),
		panel.WithEncoder(f.enc),
		panel.WithSaver(f.saved),
	)
	t.Cleanup(f.panel.Close)
	clock := time.Unix(100, 0)
	opts = append([]Option{WithClock(func() time.Time { return clock }), WithClipboard(func([]byte) error { return nil })}, opts...)
	f.ed = NewEditor(f.panel, opts...)
	return f
}

func press(k key.Code, r rune, mods key.Modifiers) key.Event {
	return key.Event{Rune: r, Code: k, Modifiers: mods, Direction: key.DirPress}
}

func typeText(ed *Editor, s string) {
	for _, r := range s {
		ed.HandleKey(press(key.CodeUnknown, r, 0))
	}
}

func backspace(ed *Editor, n int) {
	for i := 0; i < n; i++ {
		ed.HandleKey(press(key.CodeDeleteBackspace, -1, 0))
	}
}

// point is a window position in pixels.
type point struct{ x, y float32 }

func click(ed *Editor, p point) {
	ed.HandleMouse(mouse.Event{X: p.x, Y: p.y, Button: mouse.ButtonLeft, Direction: mouse.DirPress})
	ed.HandleMouse(mouse.Event{X: p.x, Y: p.y, Button: mouse.ButtonLeft, Direction: mouse.DirRelease})
}

// rowPoint returns a window point inside input row i.
func rowPoint(i int) point {
	return point{margin + labelWidth + 20, float32(margin + i*rowHeight + 10)}
}

func buttonPoint(i int) point {
	return point{float32(margin + i*(buttonWidth+4) + 10), float32(margin + inputRows*rowHeight + 10)}
}

func TestTypingPersistsEachKeystroke(t *testing.T) {
	f := newFixture(t)
	click(f.ed, rowPoint(0))
	if f.ed.Focused() != panel.FieldTopText {
		t.Fatalf("focus %q", f.ed.Focused())
	}
	backspace(f.ed, len("TOP TEXT"))
	typeText(f.ed, "hi")
	if got := f.store.Writes(memestate.StorageKey); got != 10 {
		t.Fatalf("writes = %d, want one per keystroke", got)
	}
	if got := f.panel.Form().Settings().TopText; got != "hi" {
		t.Fatalf("top text %q", got)
	}
	if f.ed.Value(panel.FieldBottomText) != "BOTTOM TEXT" {
		t.Fatal("other fields changed")
	}
}

func TestFocusCycling(t *testing.T) {
	f := newFixture(t)
	steps := []struct {
		ev   key.Event
		want string
	}{
		{press(key.CodeTab, '\t', 0), panel.FieldTopText},
		{press(key.CodeTab, '\t', 0), panel.FieldTopTextColor},
		{press(key.CodeTab, '\t', key.ModShift), panel.FieldTopText},
		{press(key.CodeTab, '\t', key.ModShift), imageInput},
		{press(key.CodeEscape, -1, 0), ""},
	}
	for i, s := range steps {
		f.ed.HandleKey(s.ev)
		if got := f.ed.Focused(); got != s.want {
			t.Fatalf("step %d: focus %q, want %q", i, got, s.want)
		}
	}
}

func TestColorField(t *testing.T) {
	f := newFixture(t)
	click(f.ed, rowPoint(1))
	backspace(f.ed, 7)
	typeText(f.ed, "zzz")
	if f.store.Writes(memestate.StorageKey) != 0 {
		t.Fatal("color stored before commit")
	}
	f.ed.HandleKey(press(key.CodeReturnEnter, '\r', 0))
	if !strings.Contains(f.ed.Message(), "invalid color") {
		t.Fatalf("message %q", f.ed.Message())
	}
	if got := f.ed.Value(panel.FieldTopTextColor); got != "#ffffff" {
		t.Fatalf("value %q, want the stored color back", got)
	}

	f.ed.HandleKey(press(key.CodeDownArrow, -1, 0))
	if got := f.panel.Form().Settings().TopTextColor; got != "#ff0000" {
		t.Fatalf("after down: %q", got)
	}
	f.ed.HandleKey(press(key.CodeUpArrow, -1, 0))
	f.ed.HandleKey(press(key.CodeUpArrow, -1, 0))
	if got := f.panel.Form().Settings().TopTextColor; got != "#000000" {
		t.Fatalf("after up: %q", got)
	}

	backspace(f.ed, 7)
	typeText(f.ed, "#00f")
	f.ed.HandleKey(press(key.CodeTab, '\t', 0))
	if got := f.panel.Form().Settings().TopTextColor; got != "#0000ff" {
		t.Fatalf("committed %q", got)
	}
}

func waitSaved(t *testing.T, c chanSaver) string {
	t.Helper()
	select {
	case name := <-c:
		return name
	case <-time.After(5 * time.Second):
		t.Fatal("export never saved")
	}
	return ""
}

func TestSaveShortcutAndButton(t *testing.T) {
	f := newFixture(t)
	f.ed.HandleKey(press(key.CodeS, 's', key.ModControl))
	if name := waitSaved(t, f.saved); !strings.HasPrefix(name, "meme-") {
		t.Fatalf("saved %q", name)
	}
	for f.panel.Trigger().Disabled() {
		time.Sleep(time.Millisecond)
	}
	click(f.ed, buttonPoint(0))
	waitSaved(t, f.saved)
}

func TestCopy(t *testing.T) {
	var copied []byte
	f := newFixture(t, WithClipboard(func(b []byte) error { copied = b; return nil }))
	f.ed.HandleKey(press(key.CodeC, 'c', key.ModControl))
	img, err := png.Decode(bytes.NewReader(copied))
	if err != nil {
		t.Fatalf("clipboard data: %v", err)
	}
	if img.Bounds().Size() != f.panel.Size() {
		t.Fatalf("copied %v", img.Bounds())
	}
	if f.ed.Message() != "meme copied to clipboard" {
		t.Fatalf("message %q", f.ed.Message())
	}

	failing := newFixture(t, WithClipboard(func([]byte) error { return errors.New("no display") }))
	click(failing.ed, buttonPoint(1))
	if !strings.Contains(failing.ed.Message(), "no display") {
		t.Fatalf("message %q", failing.ed.Message())
	}
}

func drag(ed *Editor, x, y, dx, dy float32) {
	ed.HandleMouse(mouse.Event{X: x, Y: y, Button: mouse.ButtonLeft, Direction: mouse.DirPress})
	ed.HandleMouse(mouse.Event{X: x + dx, Y: y + dy, Direction: mouse.DirNone})
	ed.HandleMouse(mouse.Event{X: x + dx, Y: y + dy, Button: mouse.ButtonLeft, Direction: mouse.DirRelease})
}

func TestDragCaption(t *testing.T) {
	f := newFixture(t)
	o := PreviewOrigin
	drag(f.ed, float32(o.X+250), float32(o.Y+40), 0, 20)
	if got := f.panel.Top().Offset; got != (overlay.Point{Y: 20}) {
		t.Fatalf("offset %+v", got)
	}
}

func TestMessageSwallowsPress(t *testing.T) {
	f := newFixture(t)
	f.ed.Resize(516, 430)
	f.ed.HandleKey(press(key.CodeC, 'c', key.ModControl))
	box := f.ed.msgBox.rect
	if box.Empty() || f.ed.Message() == "" {
		t.Fatal("message not shown")
	}
	x, y := float32(box.Min.X+box.Dx()/2), float32(box.Min.Y+box.Dy()/2)
	if f.panel.Controller().HitTest(f.ed.pointer(mouse.Event{X: x, Y: y}).Pos) != f.panel.Top() {
		t.Fatal("message should cover the top caption for this test")
	}
	drag(f.ed, x, y, 0, 30)
	if f.panel.Top().Offset != (overlay.Point{}) {
		t.Fatal("press on the message moved the caption")
	}
	if f.ed.Message() != "" {
		t.Fatal("press should dismiss the message")
	}
	drag(f.ed, x, y, 0, 30)
	if f.panel.Top().Offset.Y != 30 {
		t.Fatalf("offset %+v after the message closed", f.panel.Top().Offset)
	}
}

func TestWheelScroll(t *testing.T) {
	f := newFixture(t)
	f.ed.Resize(516, 400)
	wheel := func(b mouse.Button) {
		f.ed.HandleMouse(mouse.Event{Button: b, Direction: mouse.DirStep})
	}
	for i := 0; i < 20; i++ {
		wheel(mouse.ButtonWheelDown)
	}
	want := PreviewOrigin.Y + f.panel.Size().Y + margin - 400
	if f.ed.scroll != want {
		t.Fatalf("scroll %d, want %d", f.ed.scroll, want)
	}
	wheel(mouse.ButtonWheelUp)
	if f.ed.scroll != want-wheelStep {
		t.Fatalf("scroll %d", f.ed.scroll)
	}
	for i := 0; i < 20; i++ {
		wheel(mouse.ButtonWheelUp)
	}
	if f.ed.scroll != 0 {
		t.Fatalf("scroll %d", f.ed.scroll)
	}
}

func TestOpenTypedImage(t *testing.T) {
	f := newFixture(t)
	f.ed.HandleKey(press(key.CodeO, 'o', key.ModControl))
	if f.ed.Focused() != imageInput || !strings.Contains(f.ed.Message(), "type an image") {
		t.Fatalf("focus %q message %q", f.ed.Focused(), f.ed.Message())
	}
	typeText(f.ed, "cat.png")
	f.ed.HandleKey(press(key.CodeReturnEnter, '\r', 0))
	f.panel.WaitDerived()
	if f.enc.calls.Load() != 1 {
		t.Fatalf("encoder calls %d", f.enc.calls.Load())
	}
	if f.ed.Focused() != "" || f.ed.Value(imageInput) != "cat.png" {
		t.Fatalf("focus %q value %q", f.ed.Focused(), f.ed.Value(imageInput))
	}
	click(f.ed, buttonPoint(2))
	if !strings.Contains(f.ed.Message(), "already showing") {
		t.Fatalf("message %q", f.ed.Message())
	}
}

func TestTemplateCycling(t *testing.T) {
	tmpls := []catalog.Template{
		{Name: "a", Title: "A", URL: "https://example.com/a.png"},
		{Name: "b", Title: "B", URL: "https://example.com/b.png"},
	}
	f := newFixture(t, WithTemplates(tmpls))
	for _, want := range []string{tmpls[0].URL, tmpls[1].URL, tmpls[0].URL} {
		f.ed.HandleKey(press(key.CodeT, 't', key.ModControl))
		f.panel.WaitDerived()
		if got := f.panel.Controls().ImageURL; got != want {
			t.Fatalf("selected %q, want %q", got, want)
		}
	}
}

func TestQuitKey(t *testing.T) {
	f := newFixture(t)
	click(f.ed, rowPoint(2))
	typeText(f.ed, "q")
	if f.ed.Quit() {
		t.Fatal("typing q into a field should not quit")
	}
	if got := f.panel.Form().Settings().BottomText; got != "BOTTOM TEXTq" {
		t.Fatalf("bottom text %q", got)
	}
	f.ed.HandleKey(press(key.CodeEscape, -1, 0))
	typeText(f.ed, "q")
	if !f.ed.Quit() {
		t.Fatal("q should quit with no field focused")
	}
}

func TestRender(t *testing.T) {
	th := theme.Default()
	f := newFixture(t, WithTheme(th))
	click(f.ed, rowPoint(0))
	img := f.ed.Render()
	w, h := f.ed.Size()
	if img.Bounds() != image.Rect(0, 0, w, h) {
		t.Fatalf("bounds %v", img.Bounds())
	}
	edge := func(row int) color.RGBA {
		r := f.ed.rowRect(row)
		return img.RGBAAt(r.Max.X-40, r.Max.Y-3)
	}
	if got := edge(0); got != th.FieldBackgroundFocus {
		t.Fatalf("focused field %+v", got)
	}
	if got := edge(2); got != th.FieldBackground {
		t.Fatalf("idle field %+v", got)
	}
	mid := PreviewOrigin.Add(f.panel.Size().Div(2))
	if got := img.RGBAAt(mid.X, mid.Y); got != (color.RGBA{A: 255}) {
		t.Fatalf("preview background %+v", got)
	}
}

func TestCyclePalette(t *testing.T) {
	tests := []struct {
		hex  string
		step int
		want string
	}{
		{"#ffffff", 1, "Red"},
		{"#FFFFFF", -1, "Black"},
		{"#000000", -1, "Gray"},
		{"#123456", 1, "Black"},
		{"#123456", -1, "Gray"},
	}
	for _, tc := range tests {
		if got := cyclePalette(tc.hex, tc.step).Name; got != tc.want {
			t.Errorf("cyclePalette(%q, %d) = %s, want %s", tc.hex, tc.step, got, tc.want)
		}
	}
}
