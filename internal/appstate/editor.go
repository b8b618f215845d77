package appstate

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"log"
	"path"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/example/memepanel/internal/capture"
	"github.com/example/memepanel/internal/catalog"
	"github.com/example/memepanel/internal/clipboard"
	"github.com/example/memepanel/internal/imagesource"
	"github.com/example/memepanel/internal/notify"
	"github.com/example/memepanel/internal/overlay"
	"github.com/example/memepanel/internal/panel"
	"github.com/example/memepanel/internal/render"
	"github.com/example/memepanel/internal/theme"
)

const (
	imageInput = "image"
	// inputRows is the four caption fields plus the image field.
	inputRows  = 5
	formHeight = margin + (inputRows+1)*rowHeight + 16

	maxWindowHeight = 900
	wheelStep       = 40
	messageDuration = 2 * time.Second
)

// PreviewOrigin is where the preview sits in page coordinates. Panels shown
// in the editor should be built with panel.WithOrigin(PreviewOrigin).
var PreviewOrigin = image.Pt(margin, formHeight+margin)

type input struct {
	name  string
	label string
	kind  panel.FieldKind
	buf   string
}

// Editor is the window model: the form bar, the buttons and the preview,
// driven by shiny key and mouse events. It is not safe for concurrent use;
// the event loop owns it.
type Editor struct {
	panel     *panel.Panel
	theme     *theme.Theme
	copyPNG   func([]byte) error
	notifier  *notify.Notifier
	templates []catalog.Template
	tmplIdx   int
	capture   bool
	now       func() time.Time
	ctx       context.Context
	onClose   func()

	width, height int
	scroll        int

	inputs  []*input
	focus   int
	buttons []*CacheButton
	hover   int
	pressed int
	drag    bool

	message      string
	messageUntil time.Time
	msgBox       messageBox

	actions        map[string]func()
	keyboardAction map[KeyShortcut]string
	quit           bool
}

// Option configures the editor.
type Option func(*Editor)

// WithTheme sets the window colors.
func WithTheme(t *theme.Theme) Option { return func(e *Editor) { e.theme = t } }

// WithClipboard replaces the PNG clipboard writer.
func WithClipboard(fn func([]byte) error) Option { return func(e *Editor) { e.copyPNG = fn } }

// WithNotifier announces clipboard copies.
func WithNotifier(n *notify.Notifier) Option { return func(e *Editor) { e.notifier = n } }

// WithTemplates enables Ctrl+T cycling through meme templates.
func WithTemplates(t []catalog.Template) Option { return func(e *Editor) { e.templates = t } }

// WithCapture enables Ctrl+P screen capture. The panel's encoder must
// understand capture URLs.
func WithCapture(on bool) Option { return func(e *Editor) { e.capture = on } }

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(e *Editor) { e.now = now } }

// WithContext sets the context exports run under.
func WithContext(ctx context.Context) Option { return func(e *Editor) { e.ctx = ctx } }

// WithOnClose registers a callback invoked when the window closes.
func WithOnClose(fn func()) Option { return func(e *Editor) { e.onClose = fn } }

// NewEditor builds the window model around p.
func NewEditor(p *panel.Panel, opts ...Option) *Editor {
	e := &Editor{
		panel:   p,
		theme:   theme.Default(),
		copyPNG: clipboard.WritePNG,
		now:     time.Now,
		ctx:     context.Background(),
		focus:   -1,
		hover:   -1,
		pressed: -1,
	}
	for _, o := range opts {
		o(e)
	}
	for _, f := range p.Controls().Fields {
		e.inputs = append(e.inputs, &input{name: f.Name, label: f.Label, kind: f.Kind})
	}
	e.inputs = append(e.inputs, &input{name: imageInput, label: "Image", kind: panel.TextField})
	e.sync()

	e.buttons = []*CacheButton{
		{Button: &ActionButton{theme: e.theme, label: func() string { return e.panel.Trigger().Label() }, enabled: func() bool { return !e.panel.Trigger().Disabled() }, onActivate: e.save}},
		{Button: &ActionButton{theme: e.theme, label: func() string { return "Copy" }, onActivate: e.copy}},
		{Button: &ActionButton{theme: e.theme, label: func() string { return "Open" }, onActivate: e.open}},
		{Button: &ActionButton{theme: e.theme, label: func() string { return "Reset Layout" }, onActivate: e.resetLayout}},
	}
	e.registerShortcuts()

	size := p.Size()
	e.Resize(size.X+2*margin, min(PreviewOrigin.Y+size.Y+margin, maxWindowHeight))
	return e
}

func (e *Editor) registerShortcuts() {
	e.actions = map[string]func(){}
	e.keyboardAction = map[KeyShortcut]string{}
	register := func(name string, keys KeyboardShortcuts, fn func()) {
		e.actions[name] = fn
		for _, sc := range keys.KeyboardShortcuts() {
			e.keyboardAction[sc] = name
		}
	}
	ctrl := func(r rune, code key.Code) shortcutList {
		return shortcutList{{Rune: r, Modifiers: key.ModControl}, {Code: code, Modifiers: key.ModControl}}
	}
	register("save", ctrl('s', key.CodeS), e.save)
	register("copy", ctrl('c', key.CodeC), e.copy)
	register("open", ctrl('o', key.CodeO), e.open)
	register("reset", ctrl('r', key.CodeR), e.resetLayout)
	register("template", ctrl('t', key.CodeT), e.nextTemplate)
	register("quit", ctrl('q', key.CodeQ), func() { e.quit = true })
	if e.capture {
		register("capture", ctrl('p', key.CodeP), e.captureScreen)
	}
	register("next", shortcutList{{Code: key.CodeTab}}, func() { e.cycleFocus(1) })
	register("prev", shortcutList{{Code: key.CodeTab, Modifiers: key.ModShift}}, func() { e.cycleFocus(-1) })
	register("blur", shortcutList{{Code: key.CodeEscape}}, func() { e.setFocus(-1) })
}

// Size returns the window size the editor lays out for.
func (e *Editor) Size() (int, int) { return e.width, e.height }

// Resize lays the editor out for a w by h window.
func (e *Editor) Resize(w, h int) {
	e.width, e.height = w, h
	e.scrollBy(0)
	e.layout()
}

// Quit reports whether the user asked to close the window.
func (e *Editor) Quit() bool { return e.quit }

// Focused returns the name of the focused input, or "".
func (e *Editor) Focused() string {
	if e.focus < 0 {
		return ""
	}
	return e.inputs[e.focus].name
}

// Value returns the text shown in the named input.
func (e *Editor) Value(name string) string {
	e.sync()
	for _, in := range e.inputs {
		if in.name == name {
			return in.buf
		}
	}
	return ""
}

// Message returns the notice currently shown, if any.
func (e *Editor) Message() string {
	if e.messageVisible() {
		return e.message
	}
	return ""
}

func (e *Editor) messageVisible() bool {
	return e.message != "" && e.now().Before(e.messageUntil)
}

func (e *Editor) flash(format string, args ...any) {
	e.message = fmt.Sprintf(format, args...)
	e.messageUntil = e.now().Add(messageDuration)
	log.Print(e.message)
	e.layoutMessage()
}

// sync refreshes unfocused inputs from the panel.
func (e *Editor) sync() {
	c := e.panel.Controls()
	for i, f := range c.Fields {
		if i != e.focus && i < len(e.inputs) {
			e.inputs[i].buf = f.Value
		}
	}
	if img := len(e.inputs) - 1; img >= 0 && e.focus != img {
		e.inputs[img].buf = c.ImageURL
	}
}

func (e *Editor) rowRect(i int) image.Rectangle {
	y := margin + i*rowHeight - e.scroll
	return image.Rect(margin+labelWidth, y, max(e.width-margin, margin+labelWidth+200), y+rowHeight-4)
}

func (e *Editor) statusRect() image.Rectangle {
	y := margin + (inputRows+1)*rowHeight - e.scroll
	return image.Rect(margin, y, e.width-margin, y+16)
}

func (e *Editor) layout() {
	y := margin + inputRows*rowHeight - e.scroll
	for i, b := range e.buttons {
		x := margin + i*(buttonWidth+4)
		b.SetRect(image.Rect(x, y, x+buttonWidth, y+rowHeight-4))
	}
	e.layoutMessage()
}

func (e *Editor) layoutMessage() {
	if e.message == "" {
		e.msgBox.rect = image.Rectangle{}
		return
	}
	d := &font.Drawer{Face: messageFace}
	wmsg := d.MeasureString(e.message).Ceil()
	m := messageFace.Metrics()
	ascent, descent := m.Ascent.Ceil(), m.Descent.Ceil()
	px := (e.width - wmsg) / 2
	py := (e.height-ascent-descent)/2 + ascent
	e.msgBox.rect = image.Rect(px-8, py-ascent-8, px+wmsg+8, py+descent+8)
}

// viewport is the visible part of the page.
func (e *Editor) viewport() image.Rectangle {
	return image.Rect(0, e.scroll, e.width, e.scroll+e.height)
}

func (e *Editor) pageHeight() int {
	return e.panel.Bounds().Max.Y + margin
}

func (e *Editor) scrollBy(dy int) bool {
	prev := e.scroll
	e.scroll = max(0, min(e.scroll+dy, e.pageHeight()-e.height))
	if e.scroll != prev {
		e.layout()
		return true
	}
	return false
}

func (e *Editor) setFocus(i int) {
	if i == e.focus {
		return
	}
	if e.focus >= 0 {
		e.commitColor(e.inputs[e.focus])
	}
	e.focus = i
	e.sync()
}

func (e *Editor) cycleFocus(step int) {
	n := len(e.inputs)
	next := e.focus + step
	if e.focus < 0 && step < 0 {
		next = n - 1
	}
	e.setFocus((next%n + n) % n)
}

// commitColor stores a typed color. Invalid input is reverted.
func (e *Editor) commitColor(in *input) {
	if in.kind != panel.ColorField {
		return
	}
	if e.panel.SetField(in.name, in.buf) {
		return
	}
	e.flash("invalid color %q", in.buf)
	for _, f := range e.panel.Controls().Fields {
		if f.Name == in.name {
			in.buf = f.Value
		}
	}
}

// HandleKey applies a key event and reports whether the window needs a
// repaint.
func (e *Editor) HandleKey(ev key.Event) bool {
	if ev.Direction == key.DirRelease {
		return false
	}
	if action, ok := e.lookup(ev); ok {
		e.actions[action]()
		return true
	}
	if e.focus >= 0 {
		return e.editKey(ev)
	}
	switch {
	case ev.Rune == 'q' || ev.Rune == 'Q':
		e.quit = true
		return false
	case ev.Code == key.CodePageDown:
		return e.scrollBy(e.height / 2)
	case ev.Code == key.CodePageUp:
		return e.scrollBy(-e.height / 2)
	}
	return false
}

func (e *Editor) lookup(ev key.Event) (string, bool) {
	mods := ev.Modifiers & (key.ModShift | key.ModControl | key.ModAlt | key.ModMeta)
	if ev.Rune > 0 {
		if action, ok := e.keyboardAction[KeyShortcut{Rune: unicode.ToLower(ev.Rune), Modifiers: mods}]; ok {
			return action, true
		}
	}
	action, ok := e.keyboardAction[KeyShortcut{Code: ev.Code, Modifiers: mods}]
	return action, ok
}

func (e *Editor) editKey(ev key.Event) bool {
	in := e.inputs[e.focus]
	switch ev.Code {
	case key.CodeReturnEnter:
		switch {
		case in.name == imageInput:
			e.open()
		case in.kind == panel.ColorField:
			e.commitColor(in)
		}
		return true
	case key.CodeDeleteBackspace:
		if in.buf != "" {
			_, size := utf8.DecodeLastRuneInString(in.buf)
			in.buf = in.buf[:len(in.buf)-size]
			e.edited(in)
		}
		return true
	case key.CodeUpArrow, key.CodeDownArrow:
		if in.kind != panel.ColorField {
			return false
		}
		step := 1
		if ev.Code == key.CodeUpArrow {
			step = -1
		}
		pc := cyclePalette(in.buf, step)
		in.buf = hexColor(pc.Color)
		e.panel.SetField(in.name, in.buf)
		return true
	}
	if ev.Modifiers&(key.ModControl|key.ModAlt|key.ModMeta) != 0 || !unicode.IsPrint(ev.Rune) {
		return false
	}
	in.buf += string(ev.Rune)
	e.edited(in)
	return true
}

// edited pushes caption text on every keystroke. Colors wait for a commit.
func (e *Editor) edited(in *input) {
	if in.kind == panel.TextField && in.name != imageInput {
		e.panel.SetField(in.name, in.buf)
	}
}

// HandleMouse applies a mouse event and reports whether the window needs a
// repaint.
func (e *Editor) HandleMouse(ev mouse.Event) bool {
	switch ev.Button {
	case mouse.ButtonWheelUp:
		return ev.Direction != mouse.DirRelease && e.scrollBy(-wheelStep)
	case mouse.ButtonWheelDown:
		return ev.Direction != mouse.DirRelease && e.scrollBy(wheelStep)
	}
	pt := image.Pt(int(ev.X), int(ev.Y))
	switch ev.Direction {
	case mouse.DirPress:
		if ev.Button != mouse.ButtonLeft {
			return false
		}
		return e.press(pt, ev)
	case mouse.DirRelease:
		if ev.Button != mouse.ButtonLeft {
			return false
		}
		e.pressed = -1
		if e.drag {
			e.drag = false
			e.panel.PointerUp(e.pointer(ev))
		}
		return true
	}
	if e.drag {
		return e.panel.PointerMove(e.pointer(ev))
	}
	hover := -1
	for i, b := range e.buttons {
		if pt.In(b.Rect()) {
			hover = i
			break
		}
	}
	if hover != e.hover {
		e.hover = hover
		return true
	}
	return false
}

func (e *Editor) press(pt image.Point, ev mouse.Event) bool {
	var under overlay.Target
	if e.messageVisible() {
		if pt.In(e.msgBox.rect) {
			under = &e.msgBox
		}
		e.messageUntil = time.Time{}
	}
	if under == nil {
		for i, b := range e.buttons {
			if pt.In(b.Rect()) {
				e.pressed = i
				b.Activate()
				return true
			}
		}
		for i := range e.inputs {
			if pt.In(e.rowRect(i)) {
				e.setFocus(i)
				return true
			}
		}
	}
	e.setFocus(-1)
	if pt.Add(image.Pt(0, e.scroll)).In(e.panel.Bounds()) {
		e.drag = e.panel.PointerDown(e.pointer(ev), under) != overlay.ActionNone
	}
	return true
}

// pointer converts window coordinates to preview coordinates.
func (e *Editor) pointer(ev mouse.Event) overlay.Pointer {
	o := e.panel.Bounds().Min
	return overlay.Pointer{
		Pos:  overlay.Point{X: float64(ev.X) - float64(o.X), Y: float64(ev.Y) + float64(e.scroll) - float64(o.Y)},
		Time: e.now(),
	}
}

func (e *Editor) save() {
	e.setFocus(-1)
	e.panel.Save(e.ctx)
}

func (e *Editor) copy() {
	img, err := e.panel.Snapshot()
	if err != nil {
		e.flash("copy failed: %v", err)
		return
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		e.flash("copy failed: %v", err)
		return
	}
	if err := e.copyPNG(buf.Bytes()); err != nil {
		e.flash("copy failed: %v", err)
		return
	}
	e.flash("meme copied to clipboard")
	e.notifier.Copy("meme", buf.Bytes())
}

func (e *Editor) open() {
	in := e.inputs[len(e.inputs)-1]
	url := strings.TrimSpace(in.buf)
	if url == "" {
		e.setFocus(len(e.inputs) - 1)
		e.flash("type an image path or URL first")
		return
	}
	e.selectImage(imagesource.Selection{URL: url, Title: path.Base(url)})
}

func (e *Editor) selectImage(sel imagesource.Selection) {
	e.focus = -1
	if !e.panel.SelectImage(sel) {
		e.flash("already showing %s", sel.Title)
	}
	e.sync()
}

func (e *Editor) nextTemplate() {
	if len(e.templates) == 0 {
		e.flash("no templates loaded")
		return
	}
	t := e.templates[e.tmplIdx%len(e.templates)]
	e.tmplIdx++
	e.selectImage(imagesource.Selection{URL: t.URL, Title: t.Title})
	e.flash("template: %s", t.Title)
}

func (e *Editor) captureScreen() {
	e.selectImage(capture.Selection(true, e.now()))
}

func (e *Editor) resetLayout() {
	e.panel.ResetLayout()
}

// Render draws the whole window.
func (e *Editor) Render() *image.RGBA {
	e.sync()
	th := e.theme
	dst := image.NewRGBA(image.Rect(0, 0, e.width, e.height))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{th.Background}, image.Point{}, draw.Src)

	off := image.Pt(0, -e.scroll)
	if preview, err := e.panel.Preview(e.viewport()); err != nil {
		log.Printf("preview: %v", err)
	} else {
		r := e.panel.Bounds().Add(off)
		draw.Draw(dst, r, preview, preview.Bounds().Min, draw.Src)
	}

	for i, in := range e.inputs {
		e.drawInput(dst, i, in)
	}
	for i, b := range e.buttons {
		state := StateDefault
		switch {
		case !b.Enabled():
			state = StateDisabled
		case i == e.pressed:
			state = StatePressed
		case i == e.hover:
			state = StateHover
		}
		b.Draw(dst, state)
	}

	c := e.panel.Controls()
	status := c.Status
	if c.Degraded {
		status = strings.TrimSpace(status + "  (settings are not being saved)")
	}
	sr := e.statusRect()
	drawString(dst, sr, basicfont.Face7x13, sr.Min.X, sr.Min.Y+12, status, th.StatusText)

	if e.messageVisible() {
		r := e.msgBox.rect
		draw.Draw(dst, r, &image.Uniform{th.FieldBackground}, image.Point{}, draw.Over)
		drawRect(dst, r, th.Foreground, 2)
		m := messageFace.Metrics()
		drawString(dst, r, messageFace, r.Min.X+8, r.Min.Y+8+m.Ascent.Ceil(), e.message, th.Foreground)
	}
	return dst
}

func (e *Editor) drawInput(dst *image.RGBA, i int, in *input) {
	th := e.theme
	box := e.rowRect(i)
	focused := i == e.focus
	label := image.Rect(margin, box.Min.Y, box.Min.X, box.Max.Y)
	drawString(dst, label, basicfont.Face7x13, label.Min.X, label.Min.Y+15, in.label, th.Foreground)

	bg, border := th.FieldBackground, th.FieldBorder
	if focused {
		bg, border = th.FieldBackgroundFocus, th.FieldBorderFocus
	}
	draw.Draw(dst, box, &image.Uniform{bg}, image.Point{}, draw.Src)
	drawRect(dst, box, border, 1)

	text := box.Inset(3)
	if in.kind == panel.ColorField {
		sw := image.Rect(box.Max.X-box.Dy(), box.Min.Y, box.Max.X, box.Max.Y).Inset(3)
		if col, err := render.ParseColor(in.buf); err == nil {
			draw.Draw(dst, sw, &image.Uniform{col}, image.Point{}, draw.Src)
		}
		drawRect(dst, sw, th.FieldBorder, 1)
		text.Max.X = sw.Min.X - 3
	}
	value := in.buf
	if focused {
		value += "|"
	}
	drawString(dst, text, fieldFace, text.Min.X+1, text.Min.Y+13, value, th.FieldText)
}
