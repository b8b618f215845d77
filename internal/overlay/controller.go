// Package overlay makes caption elements draggable and resizable inside
// their container.
package overlay

import (
	"math"
	"time"
)

// Pointer is a pointer sample.
type Pointer struct {
	Pos  Point
	Time time.Time
}

// Action identifies what a pointer press started.
type Action int

const (
	ActionNone Action = iota
	ActionDrag
	ActionResize
)

// DragEvent is delivered for every drag move after snapping and
// restriction.
type DragEvent struct {
	DX, DY float64
}

// ResizeEvent is delivered for every resize move.
type ResizeEvent struct {
	Rect      Rect
	DeltaRect DeltaRect
}

// Inertia configures how a resize keeps going after release.
type Inertia struct {
	Enabled    bool
	Resistance float64 // exponential decay rate, 1/s
	MinSpeed   float64 // release speed needed to start, px/s
	EndSpeed   float64 // speed at which the throw stops, px/s
	Step       time.Duration
	// MaxHold is how long the pointer may rest before release and still
	// throw. A longer pause releases at rest.
	MaxHold time.Duration
}

// DefaultInertia mirrors the usual throw feel.
func DefaultInertia() Inertia {
	return Inertia{Enabled: true, Resistance: 10, MinSpeed: 100, EndSpeed: 10, Step: time.Second / 60, MaxHold: 100 * time.Millisecond}
}

type interaction struct {
	action    Action
	edges     Edges
	start     Pointer
	startRect Rect
	last      Rect
	prev      Pointer
	velocity  Point
}

// Controller tracks drag and resize interactions for attached elements.
// It is not safe for concurrent use; front-ends drive it from their event
// loop.
type Controller struct {
	parent    Size
	grid      Point
	fontScale float64
	margin    float64
	inertia   Inertia
	onChange  func(*Element)

	order  []*Element
	active map[*Element]*interaction
}

// Option configures a Controller.
type Option func(*Controller)

// WithGrid sets the drag snap grid.
func WithGrid(x, y float64) Option { return func(c *Controller) { c.grid = Point{x, y} } }

// WithFontScale sets the font size to width ratio applied while resizing.
func WithFontScale(scale float64) Option { return func(c *Controller) { c.fontScale = scale } }

// WithEdgeMargin sets how close to an edge a press must land to resize.
func WithEdgeMargin(m float64) Option { return func(c *Controller) { c.margin = m } }

// WithInertia replaces the resize inertia settings.
func WithInertia(in Inertia) Option { return func(c *Controller) { c.inertia = in } }

// WithMoveHook registers fn to run after any element changes.
func WithMoveHook(fn func(*Element)) Option { return func(c *Controller) { c.onChange = fn } }

// NewController returns a controller for elements living inside a parent of
// the given size.
func NewController(parent Size, opts ...Option) *Controller {
	c := &Controller{
		parent:    parent,
		grid:      Point{10, 10},
		fontScale: 0.35,
		margin:    8,
		inertia:   DefaultInertia(),
		active:    map[*Element]*interaction{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SetParent updates the container size, e.g. after the base image changed.
// Call Contain afterwards to pull elements back inside.
func (c *Controller) SetParent(s Size) { c.parent = s }

// Contain moves every attached element back inside the parent, shrinking
// any that no longer fit.
func (c *Controller) Contain() {
	for _, el := range c.order {
		before := el.Rect()
		if el.Size.W > c.parent.W {
			el.Size.W = math.Max(1, c.parent.W)
		}
		if el.Size.H > c.parent.H {
			el.Size.H = math.Max(1, c.parent.H)
		}
		r := el.Rect()
		el.Offset.X += clamp(r.X, 0, c.parent.W-r.W) - r.X
		el.Offset.Y += clamp(r.Y, 0, c.parent.H-r.H) - r.Y
		if el.Rect() != before {
			c.changed(el)
		}
	}
}

// Parent returns the container size.
func (c *Controller) Parent() Size { return c.parent }

// Attach registers el. Later attachments sit on top for hit testing.
func (c *Controller) Attach(el *Element) {
	if el == nil || c.attached(el) {
		return
	}
	c.order = append(c.order, el)
}

// Detach forgets el and any interaction in progress.
func (c *Controller) Detach(el *Element) {
	for i, e := range c.order {
		if e == el {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	delete(c.active, el)
}

func (c *Controller) attached(el *Element) bool {
	for _, e := range c.order {
		if e == el {
			return true
		}
	}
	return false
}

// Active reports the interaction running on el.
func (c *Controller) Active(el *Element) Action {
	if in, ok := c.active[el]; ok {
		return in.action
	}
	return ActionNone
}

// HitTest returns the topmost attached element under p, including its resize
// margin.
func (c *Controller) HitTest(p Point) *Element {
	for i := len(c.order) - 1; i >= 0; i-- {
		el := c.order[i]
		if el.Rect().Inset(-c.margin).Contains(p) {
			return el
		}
	}
	return nil
}

// EdgesAt returns the edges of el within the resize margin of p.
func (c *Controller) EdgesAt(el *Element, p Point) Edges {
	if el == nil {
		return 0
	}
	r := el.Rect()
	if !r.Inset(-c.margin).Contains(p) {
		return 0
	}
	var e Edges
	if math.Abs(p.X-r.X) <= c.margin {
		e |= EdgeLeft
	}
	if math.Abs(p.X-r.Right()) <= c.margin {
		e |= EdgeRight
	}
	if math.Abs(p.Y-r.Y) <= c.margin {
		e |= EdgeTop
	}
	if math.Abs(p.Y-r.Bottom()) <= c.margin {
		e |= EdgeBottom
	}
	return e
}

// Press starts a resize when p is on an edge of el, otherwise a drag.
// Presses landing on a target marked NoPointerEvent are ignored; under may
// be nil when the press hit el itself.
func (c *Controller) Press(el *Element, under Target, p Pointer) Action {
	if el == nil || !c.attached(el) {
		return ActionNone
	}
	if under != nil && under.HasMarker(NoPointerEvent) {
		return ActionNone
	}
	if el.HasMarker(NoPointerEvent) {
		return ActionNone
	}
	if edges := c.EdgesAt(el, p.Pos); edges != 0 {
		c.BeginResize(el, edges, p)
		return ActionResize
	}
	if el.Rect().Contains(p.Pos) {
		c.BeginDrag(el, p)
		return ActionDrag
	}
	return ActionNone
}

// Move routes a pointer move to the interaction running on el.
func (c *Controller) Move(el *Element, p Pointer) bool {
	switch c.Active(el) {
	case ActionDrag:
		_, ok := c.DragTo(el, p)
		return ok
	case ActionResize:
		_, ok := c.ResizeTo(el, p)
		return ok
	}
	return false
}

// Release ends the interaction running on el.
func (c *Controller) Release(el *Element, p Pointer) bool {
	switch c.Active(el) {
	case ActionDrag:
		c.DragTo(el, p)
		return c.EndDrag(el)
	case ActionResize:
		return c.EndResize(el, p)
	}
	return false
}

// BeginDrag starts dragging el from p.
func (c *Controller) BeginDrag(el *Element, p Pointer) bool {
	if el == nil || !c.attached(el) {
		return false
	}
	r := el.Rect()
	c.active[el] = &interaction{action: ActionDrag, start: p, startRect: r, last: r, prev: p}
	return true
}

// DragTo moves the drag to p. The element's top-left corner snaps to the
// grid and is then restricted so the element stays inside the parent.
func (c *Controller) DragTo(el *Element, p Pointer) (DragEvent, bool) {
	in, ok := c.active[el]
	if !ok || in.action != ActionDrag {
		return DragEvent{}, false
	}
	target := Point{in.startRect.X, in.startRect.Y}.Add(p.Pos.Sub(in.start.Pos))
	target.X = snapTo(target.X, c.grid.X)
	target.Y = snapTo(target.Y, c.grid.Y)
	target.X = clamp(target.X, 0, c.parent.W-in.startRect.W)
	target.Y = clamp(target.Y, 0, c.parent.H-in.startRect.H)

	ev := DragEvent{DX: target.X - in.last.X, DY: target.Y - in.last.Y}
	in.last.X, in.last.Y = target.X, target.Y
	in.prev = p
	if ev.DX == 0 && ev.DY == 0 {
		return ev, true
	}
	c.ApplyDrag(el, ev)
	return ev, true
}

// EndDrag finishes the drag on el.
func (c *Controller) EndDrag(el *Element) bool {
	in, ok := c.active[el]
	if !ok || in.action != ActionDrag {
		return false
	}
	delete(c.active, el)
	return true
}

// ApplyDrag adds the event displacement to el's cumulative offset.
func (c *Controller) ApplyDrag(el *Element, ev DragEvent) {
	if el == nil {
		return
	}
	el.Offset.X += ev.DX
	el.Offset.Y += ev.DY
	c.changed(el)
}

// BeginResize starts resizing el from the given edges.
func (c *Controller) BeginResize(el *Element, edges Edges, p Pointer) bool {
	if el == nil || edges == 0 || !c.attached(el) {
		return false
	}
	r := el.Rect()
	c.active[el] = &interaction{action: ActionResize, edges: edges, start: p, startRect: r, last: r, prev: p}
	return true
}

// ResizeTo moves the active edges of el by the pointer displacement since
// the resize started. The rect is not restricted until the resize ends.
func (c *Controller) ResizeTo(el *Element, p Pointer) (ResizeEvent, bool) {
	in, ok := c.active[el]
	if !ok || in.action != ActionResize {
		return ResizeEvent{}, false
	}
	if dt := p.Time.Sub(in.prev.Time).Seconds(); dt > 0 {
		d := p.Pos.Sub(in.prev.Pos)
		in.velocity = Point{d.X / dt, d.Y / dt}
	}
	in.prev = p
	return c.resizeRect(el, in, resized(in.startRect, in.edges, p.Pos.Sub(in.start.Pos))), true
}

func (c *Controller) resizeRect(el *Element, in *interaction, r Rect) ResizeEvent {
	ev := ResizeEvent{Rect: r, DeltaRect: deltaOf(in.last, r)}
	in.last = r
	c.ApplyResize(el, ev)
	return ev
}

// EndResize releases the resize at p. Inertia may continue the resize
// before the final rect is restricted to the parent, after which the resize
// indicator is cleared.
func (c *Controller) EndResize(el *Element, p Pointer) bool {
	in, ok := c.active[el]
	if !ok || in.action != ActionResize {
		return false
	}
	if p.Pos != in.prev.Pos {
		c.ResizeTo(el, p)
	} else if c.inertia.MaxHold > 0 && p.Time.Sub(in.prev.Time) > c.inertia.MaxHold {
		in.velocity = Point{}
	}
	c.throw(el, in)

	final := c.restrictEdges(in.last, in.edges)
	if final != in.last {
		c.resizeRect(el, in, final)
	}
	delete(c.active, el)
	c.ApplyResizeEnd(el)
	return true
}

func (c *Controller) throw(el *Element, in *interaction) {
	cfg := c.inertia
	if !cfg.Enabled || cfg.Resistance <= 0 || cfg.Step <= 0 {
		return
	}
	v0 := in.velocity
	speed := math.Hypot(v0.X, v0.Y)
	if speed < cfg.MinSpeed {
		return
	}
	release := in.prev.Pos
	base := release.Sub(in.start.Pos)
	k := cfg.Resistance
	step := cfg.Step.Seconds()
	for i := 1; i <= 600; i++ {
		t := float64(i) * step
		decay := math.Exp(-k * t)
		travel := (1 - decay) / k
		d := base.Add(Point{v0.X * travel, v0.Y * travel})
		c.resizeRect(el, in, resized(in.startRect, in.edges, d))
		if speed*decay < cfg.EndSpeed {
			break
		}
	}
}

// restrictEdges keeps the moving edges of r inside the parent.
func (c *Controller) restrictEdges(r Rect, edges Edges) Rect {
	left, top, right, bottom := r.X, r.Y, r.Right(), r.Bottom()
	if edges.Has(EdgeLeft) {
		left = clamp(left, 0, right-1)
	}
	if edges.Has(EdgeTop) {
		top = clamp(top, 0, bottom-1)
	}
	if edges.Has(EdgeRight) {
		right = clamp(right, left+1, c.parent.W)
	}
	if edges.Has(EdgeBottom) {
		bottom = clamp(bottom, top+1, c.parent.H)
	}
	return Rect{X: left, Y: top, W: right - left, H: bottom - top}
}

// ApplyResize applies a resize move: size is set directly, moves of the top
// and left edges shift the offset so the opposite edge stays put, the
// resize indicator is shown and the font is rescaled to the new width.
func (c *Controller) ApplyResize(el *Element, ev ResizeEvent) {
	if el == nil {
		return
	}
	el.Size = Size{W: ev.Rect.W, H: ev.Rect.H}
	el.Offset.X += ev.DeltaRect.Left
	el.Offset.Y += ev.DeltaRect.Top
	el.Border = ResizeBorder
	el.FontSize = c.fontScale * el.Size.W
	c.changed(el)
}

// ApplyResizeEnd clears the resize indicator.
func (c *Controller) ApplyResizeEnd(el *Element) {
	if el == nil {
		return
	}
	el.Border = IdleBorder
	c.changed(el)
}

func (c *Controller) changed(el *Element) {
	if c.onChange != nil {
		c.onChange(el)
	}
}

// resized moves the selected edges of start by d. Edges never cross: the
// rect keeps at least one pixel in each dimension.
func resized(start Rect, edges Edges, d Point) Rect {
	left, top, right, bottom := start.X, start.Y, start.Right(), start.Bottom()
	if edges.Has(EdgeLeft) {
		left = math.Min(left+d.X, right-1)
	}
	if edges.Has(EdgeRight) {
		right = math.Max(right+d.X, left+1)
	}
	if edges.Has(EdgeTop) {
		top = math.Min(top+d.Y, bottom-1)
	}
	if edges.Has(EdgeBottom) {
		bottom = math.Max(bottom+d.Y, top+1)
	}
	return Rect{X: left, Y: top, W: right - left, H: bottom - top}
}
