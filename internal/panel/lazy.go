package panel

import (
	"image"
	"sync"

	"github.com/example/memepanel/internal/imagesource"
)

// DefaultLazyMargin is how close, in pixels, the panel must come to the
// viewport before its base image is decoded.
const DefaultLazyMargin = 250

// lazyImage decodes a data URI on first use.
type lazyImage struct {
	mu      sync.Mutex
	uri     string
	img     image.Image
	err     error
	decoded bool
	decodes int
}

// set replaces the source. The previous decode is dropped when the URI
// changed.
func (l *lazyImage) set(uri string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if uri == l.uri {
		return
	}
	l.uri, l.img, l.err, l.decoded = uri, nil, nil, false
}

// cached returns the decoded image without decoding.
func (l *lazyImage) cached() (image.Image, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.img, l.decoded
}

// resolve decodes the image if needed. An empty URI resolves to nil.
func (l *lazyImage) resolve() (image.Image, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.decoded {
		return l.img, l.err
	}
	l.decoded = true
	if l.uri == "" {
		return nil, nil
	}
	l.decodes++
	l.img, l.err = imagesource.Decode(l.uri)
	return l.img, l.err
}

// nearViewport reports whether bounds lies within margin pixels, measured
// vertically, of viewport.
func nearViewport(bounds, viewport image.Rectangle, margin int) bool {
	if viewport.Empty() {
		return false
	}
	grown := image.Rect(viewport.Min.X, viewport.Min.Y-margin, viewport.Max.X, viewport.Max.Y+margin)
	return bounds.Overlaps(grown)
}
