package render

import (
	"container/list"
	"fmt"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
)

// BasePixelSize is the caption font size, in pixels, at 100%.
const BasePixelSize = 32.0

var (
	captionFontOnce sync.Once
	captionFont     *opentype.Font
	captionFontErr  error

	faces = newFaceCache(faceCacheSize)
)

// faceCacheSize bounds how many sizes keep a face. A resize drag walks
// through many sizes; only the recent ones are worth keeping.
const faceCacheSize = 32

type faceEntry struct {
	px   float64
	face font.Face
}

// faceCache is an LRU of faces keyed by pixel size.
type faceCache struct {
	mu    sync.Mutex
	size  int
	items map[float64]*list.Element
	order *list.List
}

func newFaceCache(size int) *faceCache {
	return &faceCache{
		size:  size,
		items: make(map[float64]*list.Element, size),
		order: list.New(),
	}
}

func (c *faceCache) get(px float64) (font.Face, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	elem, ok := c.items[px]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(faceEntry).face, true
}

// put stores face unless another goroutine got there first, and returns
// the face callers should use.
func (c *faceCache) put(px float64, face font.Face) font.Face {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.items[px]; ok {
		c.order.MoveToFront(elem)
		return elem.Value.(faceEntry).face
	}
	for c.order.Len() >= c.size {
		back := c.order.Back()
		c.order.Remove(back)
		delete(c.items, back.Value.(faceEntry).px)
	}
	c.items[px] = c.order.PushFront(faceEntry{px: px, face: face})
	return face
}

func (c *faceCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func loadCaptionFont() (*opentype.Font, error) {
	captionFontOnce.Do(func() {
		captionFont, captionFontErr = opentype.Parse(gobold.TTF)
		if captionFontErr != nil {
			captionFontErr = fmt.Errorf("parse caption font: %w", captionFontErr)
		}
	})
	return captionFont, captionFontErr
}

// PixelSize converts a percent font size to pixels.
func PixelSize(percent float64) float64 {
	if percent <= 0 {
		percent = 100
	}
	return BasePixelSize * percent / 100
}

// faceForSize returns a cached face for px. Sizes are rounded to a quarter
// pixel so a resize drag does not fill the cache with near duplicates.
func faceForSize(px float64) (font.Face, error) {
	if px < 1 {
		px = 1
	}
	px = math.Round(px*4) / 4
	if face, ok := faces.get(px); ok {
		return face, nil
	}
	f, err := loadCaptionFont()
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: px, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, err
	}
	return faces.put(px, face), nil
}

// MeasureText returns the advance width and line height of text at px.
func MeasureText(text string, px float64) (width, height int, err error) {
	face, err := faceForSize(px)
	if err != nil {
		return 0, 0, err
	}
	d := &font.Drawer{Face: face}
	m := face.Metrics()
	return d.MeasureString(text).Ceil(), m.Ascent.Ceil() + m.Descent.Ceil(), nil
}
