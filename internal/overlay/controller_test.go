package overlay

import (
	"testing"
	"time"
)

func at(x, y float64) Pointer { return Pointer{Pos: Point{x, y}} }

func newTestController(opts ...Option) (*Controller, *Element) {
	opts = append([]Option{WithInertia(Inertia{})}, opts...)
	c := NewController(Size{W: 500, H: 400}, opts...)
	el := NewElement("top", Point{0, 0}, Size{W: 100, H: 50})
	c.Attach(el)
	return c, el
}

func TestDragOffsetsAreCumulative(t *testing.T) {
	c, el := newTestController()
	if !c.BeginDrag(el, at(50, 25)) {
		t.Fatal("BeginDrag failed")
	}
	steps := []struct {
		to     Point
		wantEv DragEvent
		want   Point
	}{
		{Point{70, 45}, DragEvent{20, 20}, Point{20, 20}},
		{Point{60, 25}, DragEvent{-10, -20}, Point{10, 0}},
		{Point{150, 125}, DragEvent{90, 100}, Point{100, 100}},
	}
	for i, s := range steps {
		ev, ok := c.DragTo(el, Pointer{Pos: s.to})
		if !ok {
			t.Fatalf("step %d: DragTo failed", i)
		}
		if ev != s.wantEv {
			t.Fatalf("step %d: event %+v, want %+v", i, ev, s.wantEv)
		}
		if el.Offset != s.want {
			t.Fatalf("step %d: offset %+v, want %+v", i, el.Offset, s.want)
		}
	}
	if !c.EndDrag(el) {
		t.Fatal("EndDrag failed")
	}
	if c.Active(el) != ActionNone {
		t.Fatal("drag should be over")
	}
}

func TestApplyDragAddsExactDelta(t *testing.T) {
	c, el := newTestController()
	el.Offset = Point{3.5, -2}
	moves := []DragEvent{{1.25, 0}, {-7, 4}, {0, 0.5}, {100, -100}}
	want := el.Offset
	for _, m := range moves {
		c.ApplyDrag(el, m)
		want = want.Add(Point{m.DX, m.DY})
		if el.Offset != want {
			t.Fatalf("offset %+v, want %+v", el.Offset, want)
		}
	}
}

func TestDragSnapsToGrid(t *testing.T) {
	c, el := newTestController()
	c.BeginDrag(el, at(50, 25))

	ev, _ := c.DragTo(el, at(54, 28))
	if ev.DX != 0 || ev.DY != 0 || el.Offset != (Point{}) {
		t.Fatalf("small move should snap back, got %+v offset %+v", ev, el.Offset)
	}
	c.DragTo(el, at(56, 41))
	if el.Offset != (Point{10, 20}) {
		t.Fatalf("offset %+v, want {10 20}", el.Offset)
	}
}

func TestDragRestrictedToParent(t *testing.T) {
	c, el := newTestController()
	c.BeginDrag(el, at(50, 25))
	c.DragTo(el, at(5000, 5000))
	if want := (Point{400, 350}); el.Offset != want {
		t.Fatalf("offset %+v, want %+v", el.Offset, want)
	}
	c.DragTo(el, at(-5000, -5000))
	if el.Offset != (Point{}) {
		t.Fatalf("offset %+v, want origin", el.Offset)
	}
}

func TestResizeScalesFont(t *testing.T) {
	for _, w := range []float64{1, 37, 120, 200, 333.5} {
		c, el := newTestController()
		r := el.Rect()
		c.BeginResize(el, EdgeRight, at(r.Right(), 25))
		c.ResizeTo(el, at(r.X+w, 25))
		if el.Size.W != w {
			t.Fatalf("width %v, want %v", el.Size.W, w)
		}
		if el.FontSize != 0.35*w {
			t.Fatalf("font size %v, want %v", el.FontSize, 0.35*w)
		}
	}
}

func TestContainAfterParentShrinks(t *testing.T) {
	tests := []struct {
		name   string
		offset Point
		size   Size
		parent Size
		want   Rect
	}{
		{"below new bottom", Point{0, 340}, Size{W: 100, H: 50}, Size{W: 500, H: 200}, Rect{X: 0, Y: 150, W: 100, H: 50}},
		{"past right edge", Point{450, 0}, Size{W: 100, H: 50}, Size{W: 300, H: 400}, Rect{X: 200, Y: 0, W: 100, H: 50}},
		{"taller than parent", Point{0, 100}, Size{W: 100, H: 50}, Size{W: 500, H: 30}, Rect{X: 0, Y: 0, W: 100, H: 30}},
		{"already inside", Point{20, 20}, Size{W: 100, H: 50}, Size{W: 500, H: 200}, Rect{X: 20, Y: 20, W: 100, H: 50}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var changes int
			c, el := newTestController(WithMoveHook(func(*Element) { changes++ }))
			el.Offset = tt.offset
			el.Size = tt.size
			c.SetParent(tt.parent)
			c.Contain()
			if got := el.Rect(); got != tt.want {
				t.Fatalf("rect %+v, want %+v", got, tt.want)
			}
			moved := tt.want != (Rect{X: tt.offset.X, Y: tt.offset.Y, W: tt.size.W, H: tt.size.H})
			if moved != (changes == 1) {
				t.Fatalf("changes = %d, moved = %v", changes, moved)
			}
		})
	}
}

func TestResizeFromTopLeftShiftsOffset(t *testing.T) {
	c := NewController(Size{W: 500, H: 400}, WithInertia(Inertia{}))
	el := NewElement("bottom", Point{100, 200}, Size{W: 100, H: 50})
	c.Attach(el)

	c.BeginDrag(el, at(150, 225))
	c.DragTo(el, at(160, 235))
	c.EndDrag(el)
	dragged := el.Offset
	if dragged != (Point{10, 10}) {
		t.Fatalf("drag offset %+v", dragged)
	}

	before := el.Rect()
	c.BeginResize(el, EdgeLeft|EdgeTop, at(before.X, before.Y))
	ev, ok := c.ResizeTo(el, at(before.X-20, before.Y-30))
	if !ok {
		t.Fatal("ResizeTo failed")
	}
	if ev.DeltaRect.Left != -20 || ev.DeltaRect.Top != -30 {
		t.Fatalf("delta %+v", ev.DeltaRect)
	}
	if want := dragged.Add(Point{-20, -30}); el.Offset != want {
		t.Fatalf("offset %+v, want %+v", el.Offset, want)
	}
	after := el.Rect()
	if after.Right() != before.Right() || after.Bottom() != before.Bottom() {
		t.Fatalf("opposite corner moved: %+v -> %+v", before, after)
	}
	if el.Size != (Size{W: 120, H: 80}) {
		t.Fatalf("size %+v", el.Size)
	}
}

func TestResizeIndicatorLifecycle(t *testing.T) {
	c, el := newTestController()
	if el.Border.Visible() {
		t.Fatal("indicator visible before resize")
	}
	c.BeginResize(el, EdgeBottom, at(50, 50))
	c.ResizeTo(el, at(50, 70))
	if el.Border != ResizeBorder {
		t.Fatalf("border %+v during resize", el.Border)
	}
	c.EndResize(el, at(50, 70))
	if el.Border != IdleBorder {
		t.Fatalf("border %+v after resize", el.Border)
	}
}

func TestResizeRestrictionIsEndOnly(t *testing.T) {
	c, el := newTestController()
	c.BeginResize(el, EdgeRight, at(100, 25))
	c.ResizeTo(el, at(700, 25))
	if el.Size.W != 700 {
		t.Fatalf("intermediate width %v, want 700", el.Size.W)
	}
	c.EndResize(el, at(700, 25))
	if el.Size.W != 500 {
		t.Fatalf("final width %v, want 500", el.Size.W)
	}
	if el.FontSize != 0.35*500 {
		t.Fatalf("font size %v after clamp", el.FontSize)
	}
}

func TestResizeInertiaContinuesAfterRelease(t *testing.T) {
	c := NewController(Size{W: 2000, H: 400})
	el := NewElement("top", Point{0, 0}, Size{W: 100, H: 50})
	c.Attach(el)

	t0 := time.Unix(0, 0)
	c.BeginResize(el, EdgeRight, Pointer{Pos: Point{100, 25}, Time: t0})
	c.ResizeTo(el, Pointer{Pos: Point{110, 25}, Time: t0.Add(10 * time.Millisecond)})
	released := el.Size.W
	c.EndResize(el, Pointer{Pos: Point{110, 25}, Time: t0.Add(10 * time.Millisecond)})

	// 1000 px/s with resistance 10 throws roughly 100px further.
	if el.Size.W < released+80 || el.Size.W > released+101 {
		t.Fatalf("width after throw %v, released at %v", el.Size.W, released)
	}
	if el.Border.Visible() {
		t.Fatal("indicator should be cleared after the throw")
	}
}

func TestSlowReleaseHasNoInertia(t *testing.T) {
	c := NewController(Size{W: 2000, H: 400})
	el := NewElement("top", Point{0, 0}, Size{W: 100, H: 50})
	c.Attach(el)
	t0 := time.Unix(0, 0)
	c.BeginResize(el, EdgeRight, Pointer{Pos: Point{100, 25}, Time: t0})
	c.ResizeTo(el, Pointer{Pos: Point{110, 25}, Time: t0.Add(time.Second)})
	c.EndResize(el, Pointer{Pos: Point{110, 25}, Time: t0.Add(time.Second)})
	if el.Size.W != 110 {
		t.Fatalf("width %v, want 110", el.Size.W)
	}
}

func TestReleaseAfterPauseHasNoInertia(t *testing.T) {
	tests := []struct {
		name string
		hold time.Duration
		want float64
	}{
		{"held two seconds", 2 * time.Second, 150},
		{"held just past the limit", 150 * time.Millisecond, 150},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController(Size{W: 2000, H: 400})
			el := NewElement("top", Point{0, 0}, Size{W: 100, H: 50})
			c.Attach(el)
			t0 := time.Unix(0, 0)
			c.BeginResize(el, EdgeRight, Pointer{Pos: Point{100, 25}, Time: t0})
			moved := t0.Add(50 * time.Millisecond)
			c.ResizeTo(el, Pointer{Pos: Point{150, 25}, Time: moved})
			c.EndResize(el, Pointer{Pos: Point{150, 25}, Time: moved.Add(tt.hold)})
			if el.Size.W != tt.want {
				t.Fatalf("width %v, want %v", el.Size.W, tt.want)
			}
		})
	}
}

func TestPressRoutesToResizeOrDrag(t *testing.T) {
	c, el := newTestController()
	if got := c.Press(el, nil, at(99, 25)); got != ActionResize {
		t.Fatalf("press on right edge = %v, want resize", got)
	}
	c.Release(el, at(99, 25))
	if got := c.Press(el, nil, at(50, 25)); got != ActionDrag {
		t.Fatalf("press in the middle = %v, want drag", got)
	}
	c.Move(el, at(70, 25))
	c.Release(el, at(70, 25))
	if el.Offset != (Point{20, 0}) {
		t.Fatalf("offset %+v", el.Offset)
	}
}

func TestPressIgnoresMarkedTargets(t *testing.T) {
	c, el := newTestController()
	child := NewElement("button", Point{}, Size{W: 10, H: 10})
	child.SetMarker(NoPointerEvent, true)
	if got := c.Press(el, child, at(50, 25)); got != ActionNone {
		t.Fatalf("press on marked target = %v", got)
	}
	if c.Active(el) != ActionNone {
		t.Fatal("no interaction should start")
	}
}

func TestDetachedElementIsNoOp(t *testing.T) {
	c, _ := newTestController()
	stray := NewElement("stray", Point{}, Size{W: 10, H: 10})
	if c.BeginDrag(stray, at(1, 1)) {
		t.Fatal("BeginDrag on unattached element")
	}
	if _, ok := c.DragTo(stray, at(5, 5)); ok {
		t.Fatal("DragTo on unattached element")
	}
	if c.EndResize(stray, at(5, 5)) {
		t.Fatal("EndResize on unattached element")
	}
	if c.Press(nil, nil, at(0, 0)) != ActionNone {
		t.Fatal("Press on nil element")
	}
}

func TestHitTestPrefersTopmost(t *testing.T) {
	c, el := newTestController()
	top := NewElement("later", Point{50, 0}, Size{W: 100, H: 50})
	c.Attach(top)
	if got := c.HitTest(Point{75, 20}); got != top {
		t.Fatalf("HitTest = %v", got)
	}
	if got := c.HitTest(Point{10, 20}); got != el {
		t.Fatalf("HitTest = %v", got)
	}
	if got := c.HitTest(Point{300, 300}); got != nil {
		t.Fatalf("HitTest = %v, want nil", got)
	}
}

func TestEdgesAt(t *testing.T) {
	c, el := newTestController()
	tests := []struct {
		p    Point
		want Edges
	}{
		{Point{0, 0}, EdgeLeft | EdgeTop},
		{Point{100, 50}, EdgeRight | EdgeBottom},
		{Point{50, 25}, 0},
		{Point{50, 48}, EdgeBottom},
		{Point{300, 300}, 0},
	}
	for _, tc := range tests {
		if got := c.EdgesAt(el, tc.p); got != tc.want {
			t.Errorf("EdgesAt(%v) = %b, want %b", tc.p, got, tc.want)
		}
	}
}

func TestMoveHookFires(t *testing.T) {
	var calls int
	c, el := newTestController(WithMoveHook(func(*Element) { calls++ }))
	c.BeginDrag(el, at(50, 25))
	c.DragTo(el, at(70, 25))
	if calls != 1 {
		t.Fatalf("hook calls = %d, want 1", calls)
	}
}
