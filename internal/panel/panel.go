// Package panel composes the meme editor: the preview with its two caption
// overlays and the form area with the export trigger.
package panel

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log"
	"math"
	"sync"

	"github.com/example/memepanel/internal/export"
	"github.com/example/memepanel/internal/imagesource"
	"github.com/example/memepanel/internal/memestate"
	"github.com/example/memepanel/internal/overlay"
	"github.com/example/memepanel/internal/render"
)

const (
	// DefaultWidth is the preview width in pixels.
	DefaultWidth = 500
	// CaptionHeight is the initial height of both captions.
	CaptionHeight = 80
)

// Panel wires the form state, the overlay controller, image derivation and
// the exporter together. Pointer and form handlers are meant to be called
// from a single goroutine; derivation results arrive on their own
// goroutine and only go through the form.
type Panel struct {
	form     *memestate.Form
	provider imagesource.Provider
	deriver  *imagesource.Deriver
	exporter *export.Exporter
	ctrl     *overlay.Controller

	top, bottom *overlay.Element
	pressed     *overlay.Element

	width      int
	height     int
	origin     image.Point
	lazyMargin int
	background color.Color
	repaint    func()

	encoder    imagesource.Encoder
	saver      export.Saver
	exportOpts []export.Option

	base   lazyImage
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	status string
	closed bool
}

// Option configures a Panel.
type Option func(*Panel)

// WithWidth sets the preview width.
func WithWidth(w int) Option { return func(p *Panel) { p.width = w } }

// WithOrigin places the preview in page coordinates for lazy loading.
func WithOrigin(pt image.Point) Option { return func(p *Panel) { p.origin = pt } }

// WithLazyMargin overrides DefaultLazyMargin.
func WithLazyMargin(m int) Option { return func(p *Panel) { p.lazyMargin = m } }

// WithEncoder replaces the image encoder used for derivation.
func WithEncoder(enc imagesource.Encoder) Option { return func(p *Panel) { p.encoder = enc } }

// WithSaver replaces where exports are written.
func WithSaver(s export.Saver) Option { return func(p *Panel) { p.saver = s } }

// WithExportOptions passes options through to the exporter.
func WithExportOptions(opts ...export.Option) Option {
	return func(p *Panel) { p.exportOpts = append(p.exportOpts, opts...) }
}

// WithBackground sets the color shown where no base image is drawn.
func WithBackground(c color.Color) Option { return func(p *Panel) { p.background = c } }

// WithRepaint registers fn to run whenever the preview changed. It may be
// called from any goroutine.
func WithRepaint(fn func()) Option { return func(p *Panel) { p.repaint = fn } }

// New builds a panel around form and provider. The form should already be
// loaded.
func New(form *memestate.Form, provider imagesource.Provider, opts ...Option) *Panel {
	p := &Panel{
		form:       form,
		provider:   provider,
		width:      DefaultWidth,
		lazyMargin: DefaultLazyMargin,
		background: color.Black,
		encoder:    imagesource.DataURIEncoder{},
		saver:      export.DirSaver{},
	}
	for _, o := range opts {
		o(p)
	}
	if p.width <= 0 {
		p.width = DefaultWidth
	}
	if p.provider == nil {
		p.provider = imagesource.NewStatic(imagesource.Selection{})
	}
	p.ctx, p.cancel = context.WithCancel(context.Background())
	p.height = p.width

	p.ctrl = overlay.NewController(p.parentSize(), overlay.WithMoveHook(func(*overlay.Element) { p.changed() }))
	w := float64(p.width)
	p.top = overlay.NewElement("top", overlay.Point{}, overlay.Size{W: w, H: CaptionHeight})
	p.bottom = overlay.NewElement("bottom", overlay.Point{Y: float64(p.height - CaptionHeight)}, overlay.Size{W: w, H: CaptionHeight})
	p.ctrl.Attach(p.top)
	p.ctrl.Attach(p.bottom)

	p.exporter = export.New(export.NewTrigger(), export.RasterizerFunc(p.rasterize), p.saver, p.exportOpts...)
	p.exporter.Trigger().OnChange(func(string, bool) { p.changed() })
	p.deriver = imagesource.NewDeriver(p.encoder, p.applyDerived)

	p.base.set(form.Settings().BaseImage)
	form.Subscribe(func(s memestate.Settings) {
		p.base.set(s.BaseImage)
		p.changed()
	})
	if n, ok := provider.(interface {
		OnChange(func(imagesource.Selection))
	}); ok {
		n.OnChange(func(sel imagesource.Selection) { p.deriver.Derive(p.ctx, sel) })
	}
	return p
}

// Start derives the base image for the current selection. A selection with
// no URL keeps the stored image.
func (p *Panel) Start() {
	if sel := p.provider.Selected(); sel.URL != "" {
		p.deriver.Derive(p.ctx, sel)
	}
}

func (p *Panel) parentSize() overlay.Size {
	return overlay.Size{W: float64(p.width), H: float64(p.height)}
}

func (p *Panel) changed() {
	if p.repaint != nil {
		p.repaint()
	}
}

func (p *Panel) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *Panel) setStatus(format string, args ...any) {
	p.mu.Lock()
	p.status = fmt.Sprintf(format, args...)
	p.mu.Unlock()
	p.changed()
}

// Status returns the last derivation or export message.
func (p *Panel) Status() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Form returns the underlying form state.
func (p *Panel) Form() *memestate.Form { return p.form }

// Controller returns the overlay controller driving the captions.
func (p *Panel) Controller() *overlay.Controller { return p.ctrl }

// Top and Bottom return the caption elements.
func (p *Panel) Top() *overlay.Element    { return p.top }
func (p *Panel) Bottom() *overlay.Element { return p.bottom }

// Trigger returns the export trigger.
func (p *Panel) Trigger() *export.Trigger { return p.exporter.Trigger() }

// Size returns the preview size.
func (p *Panel) Size() image.Point { return image.Pt(p.width, p.height) }

// Bounds returns the preview rectangle in page coordinates.
func (p *Panel) Bounds() image.Rectangle {
	return image.Rectangle{Min: p.origin, Max: p.origin.Add(p.Size())}
}

func (p *Panel) SetTopText(v string) bool {
	if p.isClosed() {
		return false
	}
	p.form.SetTopText(v)
	return true
}

func (p *Panel) SetBottomText(v string) bool {
	if p.isClosed() {
		return false
	}
	p.form.SetBottomText(v)
	return true
}

func (p *Panel) SetTopTextColor(v string) bool {
	return !p.isClosed() && p.form.SetTopTextColor(v)
}

func (p *Panel) SetBottomTextColor(v string) bool {
	return !p.isClosed() && p.form.SetBottomTextColor(v)
}

// SelectImage changes the provider's selection. The base image is derived
// again only when the URL changed, which is what the result reports.
func (p *Panel) SelectImage(sel imagesource.Selection) bool {
	if p.isClosed() {
		return false
	}
	before := p.deriver.Generation()
	p.provider.SetSelected(sel)
	p.deriver.Derive(p.ctx, p.provider.Selected())
	return p.deriver.Generation() != before
}

// WaitDerived blocks until running derivations finished.
func (p *Panel) WaitDerived() { p.deriver.Wait() }

func (p *Panel) applyDerived(d imagesource.Derived) {
	if d.Err != nil {
		log.Printf("derive image %s: %v", d.Selection.URL, d.Err)
		p.setStatus("could not load %s: %v", d.Selection.URL, d.Err)
		return
	}
	p.form.SetBaseImage(d.DataURI)
	if d.Selection.Title != "" {
		p.setStatus("loaded %s", d.Selection.Title)
	}
}

// relayout resizes the preview to the aspect ratio of img, keeps the
// bottom caption anchored to the bottom edge and pulls moved captions back
// inside the new bounds.
func (p *Panel) relayout(img image.Image) {
	size := render.FitWidth(img, p.width)
	if size.Y == p.height {
		return
	}
	p.height = size.Y
	p.ctrl.SetParent(p.parentSize())
	p.bottom.Origin.Y = math.Max(0, float64(p.height-CaptionHeight))
	p.ctrl.Contain()
	p.changed()
}

// PointerDown starts a drag or resize on the caption under the pointer.
// under is the target actually hit, which may carry the no-pointer-event
// marker.
func (p *Panel) PointerDown(pt overlay.Pointer, under overlay.Target) overlay.Action {
	if p.isClosed() {
		return overlay.ActionNone
	}
	el := p.ctrl.HitTest(pt.Pos)
	if el == nil {
		return overlay.ActionNone
	}
	act := p.ctrl.Press(el, under, pt)
	if act != overlay.ActionNone {
		p.pressed = el
	}
	return act
}

// PointerMove continues the active interaction.
func (p *Panel) PointerMove(pt overlay.Pointer) bool {
	if p.pressed == nil {
		return false
	}
	return p.ctrl.Move(p.pressed, pt)
}

// PointerUp ends the active interaction.
func (p *Panel) PointerUp(pt overlay.Pointer) bool {
	if p.pressed == nil {
		return false
	}
	el := p.pressed
	p.pressed = nil
	return p.ctrl.Release(el, pt)
}

// ResetLayout puts both captions back to their initial placement.
func (p *Panel) ResetLayout() {
	w := float64(p.width)
	for _, el := range []*overlay.Element{p.top, p.bottom} {
		el.Offset = overlay.Point{}
		el.Size = overlay.Size{W: w, H: CaptionHeight}
		el.FontSize = 100
		el.Border = overlay.IdleBorder
	}
	p.changed()
}

// Scene builds the render scene from the current state. The base image is
// included only when it has already been decoded.
func (p *Panel) Scene(indicators bool) render.Scene {
	s := p.form.Settings()
	img, _ := p.base.cached()
	return render.Scene{
		Size:       p.Size(),
		Base:       img,
		Background: p.background,
		Captions: []render.Caption{
			caption(p.top, s.TopText, s.TopTextColor),
			caption(p.bottom, s.BottomText, s.BottomTextColor),
		},
		Indicators: indicators,
	}
}

func caption(el *overlay.Element, text, col string) render.Caption {
	r := el.Rect()
	c := render.Caption{
		Text:     text,
		Color:    render.MustColor(col),
		Rect:     image.Rect(int(math.Round(r.X)), int(math.Round(r.Y)), int(math.Round(r.Right())), int(math.Round(r.Bottom()))),
		FontSize: el.FontSize,
	}
	if el.Border.Visible() {
		c.Indicator = render.MustColor(el.Border.Color)
		c.IndicatorWidth = el.Border.Width
	}
	return c
}

// Preview rasterizes the on-screen view. The base image is decoded only
// once the preview comes within the lazy margin of viewport, given in page
// coordinates.
func (p *Panel) Preview(viewport image.Rectangle) (*image.RGBA, error) {
	if nearViewport(p.Bounds(), viewport, p.lazyMargin) {
		if err := p.ensureBase(); err != nil {
			log.Printf("decode base image: %v", err)
		}
	}
	return render.Compose(p.Scene(true))
}

func (p *Panel) ensureBase() error {
	img, err := p.base.resolve()
	if err != nil {
		return err
	}
	if img != nil {
		p.relayout(img)
	}
	return nil
}

func (p *Panel) rasterize(context.Context) (image.Image, error) {
	return p.Snapshot()
}

// Snapshot composes the view as it would be exported, decoding the base
// image if needed.
func (p *Panel) Snapshot() (*image.RGBA, error) {
	if err := p.ensureBase(); err != nil {
		return nil, err
	}
	return render.Compose(p.Scene(false))
}

// Save exports the current view. The scene is captured before Save returns
// so later edits do not leak into the file.
func (p *Panel) Save(ctx context.Context) *export.Job {
	if p.isClosed() {
		return p.exporter.Export(ctx)
	}
	if err := p.ensureBase(); err != nil {
		log.Printf("decode base image: %v", err)
	}
	scene := p.Scene(false)
	job := p.exporter.ExportWith(ctx, export.RasterizerFunc(func(context.Context) (image.Image, error) {
		return render.Compose(scene)
	}))
	go func() {
		res := job.Wait()
		switch {
		case errors.Is(res.Err, export.ErrStale):
		case res.Err != nil:
			p.setStatus("save failed: %v", res.Err)
		case res.PublishErr != nil:
			p.setStatus("saved %s (%v)", res.Path, res.PublishErr)
		default:
			p.setStatus("saved %s", res.Path)
		}
	}()
	return job
}

// Close tears the panel down. Pending exports and derivations are dropped
// and further handler calls are ignored.
func (p *Panel) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()
	p.exporter.Close()
	p.deriver.Close()
	p.cancel()
}
