package memestate

import (
	"log"
	"sync"
)

// Store is the key-value storage the form mirrors itself into.
type Store interface {
	Available() bool
	Get(key string) ([]byte, bool)
	Set(key string, value []byte) error
}

// Form owns the current Settings and writes the full record back to the
// store after every mutation.
type Form struct {
	store    Store
	key      string
	defaults Settings

	mu        sync.Mutex
	settings  Settings
	listeners []func(Settings)
}

// Option configures a Form.
type Option func(*Form)

// WithKey overrides the storage key.
func WithKey(key string) Option { return func(f *Form) { f.key = key } }

// WithDefaults replaces the built-in default record.
func WithDefaults(s Settings) Option { return func(f *Form) { f.defaults = s } }

// NewForm returns a form initialised with defaults. Call Load to restore a
// stored record. store may be nil, which behaves like unavailable storage.
func NewForm(store Store, opts ...Option) *Form {
	f := &Form{store: store, key: StorageKey, defaults: Defaults()}
	for _, o := range opts {
		o(f)
	}
	f.settings = f.defaults
	return f
}

// Degraded reports whether persistence is being skipped because storage is
// unavailable.
func (f *Form) Degraded() bool {
	return f.store == nil || !f.store.Available()
}

// Load restores the stored record, if any. A malformed record leaves the
// defaults in place and the decode error is returned.
func (f *Form) Load() error {
	if f.Degraded() {
		return nil
	}
	data, ok := f.store.Get(f.key)
	if !ok {
		return nil
	}
	f.mu.Lock()
	s, err := Decode(data, f.defaults)
	f.settings = s
	f.mu.Unlock()
	f.notify(s)
	return err
}

// Settings returns a copy of the current record.
func (f *Form) Settings() Settings {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.settings
}

// Subscribe registers fn to run after every change.
func (f *Form) Subscribe(fn func(Settings)) {
	f.mu.Lock()
	f.listeners = append(f.listeners, fn)
	f.mu.Unlock()
}

func (f *Form) SetTopText(v string) {
	f.update(func(s *Settings) { s.TopText = v })
}

func (f *Form) SetBottomText(v string) {
	f.update(func(s *Settings) { s.BottomText = v })
}

// SetTopTextColor accepts a #rgb or #rrggbb color. Invalid values are ignored
// and reported as false.
func (f *Form) SetTopTextColor(v string) bool {
	c, ok := NormalizeColor(v)
	if !ok {
		return false
	}
	f.update(func(s *Settings) { s.TopTextColor = c })
	return true
}

// SetBottomTextColor behaves like SetTopTextColor for the bottom caption.
func (f *Form) SetBottomTextColor(v string) bool {
	c, ok := NormalizeColor(v)
	if !ok {
		return false
	}
	f.update(func(s *Settings) { s.BottomTextColor = c })
	return true
}

// SetBaseImage stores the encoded base image. It is driven by image
// derivation, never by direct user input.
func (f *Form) SetBaseImage(dataURI string) {
	f.update(func(s *Settings) { s.BaseImage = dataURI })
}

// Reset restores the defaults and persists them.
func (f *Form) Reset() {
	f.update(func(s *Settings) { *s = f.defaults })
}

func (f *Form) update(mut func(*Settings)) {
	f.mu.Lock()
	mut(&f.settings)
	s := f.settings
	f.persistLocked(s)
	f.mu.Unlock()
	f.notify(s)
}

// persistLocked runs under f.mu so writes land in mutation order.
func (f *Form) persistLocked(s Settings) {
	if f.Degraded() {
		return
	}
	data, err := Encode(s)
	if err != nil {
		log.Printf("encode %s: %v", f.key, err)
		return
	}
	if err := f.store.Set(f.key, data); err != nil {
		log.Printf("persist %s: %v", f.key, err)
	}
}

func (f *Form) notify(s Settings) {
	f.mu.Lock()
	listeners := append([]func(Settings){}, f.listeners...)
	f.mu.Unlock()
	for _, fn := range listeners {
		fn(s)
	}
}
