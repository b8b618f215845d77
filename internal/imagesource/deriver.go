package imagesource

import (
	"context"
	"sync"
)

// Derived is the outcome of one derivation.
type Derived struct {
	Selection Selection
	DataURI   string
	Err       error
}

// Deriver re-encodes the selection whenever its URL changes. Only the
// result of the most recent change is delivered; earlier ones still in
// flight are dropped.
type Deriver struct {
	enc   Encoder
	apply func(Derived)

	mu      sync.Mutex
	gen     uint64
	lastURL string
	started bool
	closed  bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewDeriver returns a deriver that hands results to apply. apply runs on
// the deriving goroutine.
func NewDeriver(enc Encoder, apply func(Derived)) *Deriver {
	return &Deriver{enc: enc, apply: apply}
}

// Derive starts a derivation for sel unless its URL matches the last one
// that is in flight or succeeded. A failed URL is derived again on the next
// call. It reports whether a derivation was started.
func (d *Deriver) Derive(ctx context.Context, sel Selection) bool {
	d.mu.Lock()
	if d.closed || (d.started && sel.URL == d.lastURL) {
		d.mu.Unlock()
		return false
	}
	d.started = true
	d.lastURL = sel.URL
	d.gen++
	gen := d.gen
	if d.cancel != nil {
		d.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.wg.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.wg.Done()
		defer cancel()
		uri, err := d.enc.Encode(ctx, sel.URL)
		d.mu.Lock()
		current := !d.closed && d.gen == gen
		if current && err != nil {
			d.started = false
			d.lastURL = ""
		}
		d.mu.Unlock()
		if !current {
			return
		}
		d.apply(Derived{Selection: sel, DataURI: uri, Err: err})
	}()
	return true
}

// Generation returns the number of derivations started.
func (d *Deriver) Generation() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gen
}

// Wait blocks until every started derivation returned.
func (d *Deriver) Wait() { d.wg.Wait() }

// Close cancels the running derivation and drops its result.
func (d *Deriver) Close() {
	d.mu.Lock()
	d.closed = true
	d.gen++
	if d.cancel != nil {
		d.cancel()
	}
	d.mu.Unlock()
}
