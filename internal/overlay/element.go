package overlay

// NoPointerEvent marks targets whose presses must not start a drag or resize.
const NoPointerEvent = "no-pointer-event"

// Border is the visual outline of a caption.
type Border struct {
	Width float64
	Style string
	Color string
}

// Visible reports whether the border paints anything.
func (b Border) Visible() bool {
	return b.Width > 0 && b.Color != "" && b.Color != "transparent"
}

var (
	// ResizeBorder is shown while a resize is in progress.
	ResizeBorder = Border{Width: 3, Style: "dashed", Color: "#4c8ade"}
	// IdleBorder replaces ResizeBorder once the resize ends.
	IdleBorder = Border{Width: 3, Style: "dashed", Color: "transparent"}
)

// Target is anything a pointer can land on.
type Target interface {
	HasMarker(name string) bool
}

// Element is the view-layer handle for one caption. Its placement is
// ephemeral and never persisted.
type Element struct {
	Name string
	// Origin is the element's static position inside the parent.
	Origin Point
	// Offset is the cumulative translation applied on top of Origin.
	Offset Point
	Size   Size
	// FontSize is expressed in percent of the caption's base font size.
	FontSize float64
	Border   Border

	markers map[string]bool
}

// NewElement returns an element laid out at origin with the given size.
func NewElement(name string, origin Point, size Size) *Element {
	return &Element{Name: name, Origin: origin, Size: size, FontSize: 100, Border: IdleBorder}
}

// Rect returns the element's current rectangle in parent coordinates.
func (e *Element) Rect() Rect {
	return Rect{
		X: e.Origin.X + e.Offset.X,
		Y: e.Origin.Y + e.Offset.Y,
		W: e.Size.W,
		H: e.Size.H,
	}
}

// SetMarker adds or removes a marker attribute.
func (e *Element) SetMarker(name string, on bool) {
	if e.markers == nil {
		e.markers = map[string]bool{}
	}
	if on {
		e.markers[name] = true
	} else {
		delete(e.markers, name)
	}
}

func (e *Element) HasMarker(name string) bool {
	return e != nil && e.markers[name]
}
