// Package export turns the composed meme view into a PNG file.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrStale is returned for exports whose view was closed before they
	// finished.
	ErrStale = errors.New("export: view closed")
	// ErrBusy is returned when the trigger is already disabled.
	ErrBusy = errors.New("export: already in progress")
)

// Rasterizer produces the bitmap of the current view.
type Rasterizer interface {
	Rasterize(ctx context.Context) (image.Image, error)
}

// RasterizerFunc adapts a function to Rasterizer.
type RasterizerFunc func(ctx context.Context) (image.Image, error)

func (f RasterizerFunc) Rasterize(ctx context.Context) (image.Image, error) { return f(ctx) }

// Publisher receives a saved export, e.g. to copy it to the clipboard.
type Publisher func(ctx context.Context, res Result) error

// Result describes a finished export.
type Result struct {
	Name string
	Path string
	PNG  []byte
	Err  error
	// PublishErr collects publisher failures. The file is saved regardless.
	PublishErr error
}

// Job is an export in flight.
type Job struct {
	done chan struct{}
	res  Result
}

// Done is closed once the job finished.
func (j *Job) Done() <-chan struct{} { return j.done }

// Wait blocks until the job finished and returns its result.
func (j *Job) Wait() Result {
	<-j.done
	return j.res
}

func finished(res Result) *Job {
	j := &Job{done: make(chan struct{}), res: res}
	close(j.done)
	return j
}

// FileName returns the export name for t.
func FileName(t time.Time) string {
	return fmt.Sprintf("meme-%d.png", t.UnixMilli())
}

// Exporter runs exports against one trigger.
type Exporter struct {
	trigger    *Trigger
	raster     Rasterizer
	saver      Saver
	now        func() time.Time
	publishers []Publisher

	mu     sync.Mutex
	gen    uint64
	closed bool
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(e *Exporter) { e.now = now } }

// WithPublisher adds a sink run after every successful save.
func WithPublisher(p Publisher) Option {
	return func(e *Exporter) { e.publishers = append(e.publishers, p) }
}

// New returns an exporter. A nil trigger gets a fresh one.
func New(trigger *Trigger, raster Rasterizer, saver Saver, opts ...Option) *Exporter {
	if trigger == nil {
		trigger = NewTrigger()
	}
	e := &Exporter{trigger: trigger, raster: raster, saver: saver, now: time.Now}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Trigger returns the exporter's trigger.
func (e *Exporter) Trigger() *Trigger { return e.trigger }

// Export disables and relabels the trigger before returning, then
// rasterizes on another goroutine. The trigger is restored as soon as
// rasterization completes, whether or not it succeeded; the PNG is then
// saved under a name taken from the clock at the time of this call.
func (e *Exporter) Export(ctx context.Context) *Job {
	return e.ExportWith(ctx, e.raster)
}

// ExportWith is Export using r instead of the exporter's rasterizer, for
// callers that snapshot the view at invocation.
func (e *Exporter) ExportWith(ctx context.Context, r Rasterizer) *Job {
	if r == nil {
		return finished(Result{Err: errors.New("export: no rasterizer")})
	}
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return finished(Result{Err: ErrStale})
	}
	gen := e.gen
	e.mu.Unlock()

	name := FileName(e.now())
	if !e.trigger.acquire() {
		return finished(Result{Name: name, Err: ErrBusy})
	}
	j := &Job{done: make(chan struct{})}
	go func() {
		defer close(j.done)
		j.res = e.run(ctx, r, gen, name)
	}()
	return j
}

func (e *Exporter) run(ctx context.Context, r Rasterizer, gen uint64, name string) Result {
	res := Result{Name: name}
	img, err := r.Rasterize(ctx)

	e.mu.Lock()
	stale := e.closed || e.gen != gen
	e.mu.Unlock()
	if stale {
		res.Err = ErrStale
		return res
	}
	e.trigger.release()
	if err != nil {
		res.Err = fmt.Errorf("rasterize: %w", err)
		return res
	}
	if img == nil {
		res.Err = errors.New("rasterize: no image")
		return res
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		res.Err = fmt.Errorf("encode %s: %w", name, err)
		return res
	}
	res.PNG = buf.Bytes()
	path, err := e.saver.Save(ctx, name, res.PNG)
	if err != nil {
		res.Err = fmt.Errorf("save %s: %w", name, err)
		return res
	}
	res.Path = path

	if len(e.publishers) > 0 {
		g, gctx := errgroup.WithContext(ctx)
		for _, p := range e.publishers {
			g.Go(func() error { return p(gctx, res) })
		}
		res.PublishErr = g.Wait()
	}
	return res
}

// Close invalidates pending exports. Their results report ErrStale and the
// trigger is left alone. Later calls to Export fail with ErrStale.
func (e *Exporter) Close() {
	e.mu.Lock()
	e.closed = true
	e.gen++
	e.mu.Unlock()
}
