// Package imagesource selects the base picture and turns it into the data URI
// stored with the meme settings.
package imagesource

import "sync"

// Selection is the picture the user picked.
type Selection struct {
	// URL is a file path, file://, http(s):// or data: URL.
	URL   string
	Title string
}

// Provider exposes the current selection.
type Provider interface {
	Selected() Selection
	SetSelected(Selection)
}

// Static is an in-memory Provider that reports changes to subscribers.
type Static struct {
	mu        sync.Mutex
	sel       Selection
	listeners []func(Selection)
}

// NewStatic returns a provider holding sel.
func NewStatic(sel Selection) *Static {
	return &Static{sel: sel}
}

func (s *Static) Selected() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel
}

// SetSelected replaces the selection. Listeners run only when the URL
// changed.
func (s *Static) SetSelected(sel Selection) {
	s.mu.Lock()
	changed := sel.URL != s.sel.URL
	s.sel = sel
	fns := append([]func(Selection){}, s.listeners...)
	s.mu.Unlock()
	if !changed {
		return
	}
	for _, fn := range fns {
		fn(sel)
	}
}

// OnChange registers fn for selection changes.
func (s *Static) OnChange(fn func(Selection)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}
