// Package appstate runs the interactive meme editor window.
package appstate

import (
	"context"
	"image"
	"image/draw"
	"log"
	"sync"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/memepanel/internal/panel"
)

// frameDropThreshold specifies how many consecutive frames can be canceled
// before an upload is allowed to complete to keep the UI responsive.
const frameDropThreshold = 10

// AppState owns the editor window.
type AppState struct {
	editor   *Editor
	updateCh chan struct{}

	closeOnce sync.Once
}

// New creates the window state for p.
func New(p *panel.Panel, opts ...Option) *AppState {
	return &AppState{
		editor:   NewEditor(p, opts...),
		updateCh: make(chan struct{}, 1),
	}
}

// Editor returns the window model.
func (a *AppState) Editor() *Editor { return a.editor }

// NotifyChanged requests a repaint. It is safe to call from any goroutine
// and is meant for panel.WithRepaint.
func (a *AppState) NotifyChanged() {
	if a == nil || a.updateCh == nil {
		return
	}
	select {
	case a.updateCh <- struct{}{}:
	default:
	}
}

func (a *AppState) notifyClose() {
	a.closeOnce.Do(func() {
		if a.editor.onClose != nil {
			a.editor.onClose()
		}
	})
}

// Run executes the UI loop using shiny's driver.
func (a *AppState) Run() { driver.Main(a.Main) }

// Main runs the event loop on s until the window closes.
func (a *AppState) Main(s screen.Screen) {
	ed := a.editor
	width, height := ed.Size()
	w, err := s.NewWindow(&screen.NewWindowOptions{Width: width, Height: height, Title: "memepanel"})
	if err != nil {
		log.Printf("new window: %v", err)
		return
	}
	defer w.Release()
	defer a.notifyClose()

	// The window is released only after the repaint and upload goroutines
	// stopped touching it.
	var workers sync.WaitGroup
	defer workers.Wait()

	done := make(chan struct{})
	defer close(done)
	workers.Add(1)
	go func() {
		defer workers.Done()
		for {
			select {
			case <-a.updateCh:
				w.Send(paint.Event{})
			case <-done:
				return
			}
		}
	}()

	var paintMu sync.Mutex
	var paintCancel context.CancelFunc
	var dropCount int
	paintCh := make(chan *image.RGBA, 1)
	defer close(paintCh)
	workers.Add(1)
	go func() {
		defer workers.Done()
		for frame := range paintCh {
			ctx, cancel := context.WithCancel(context.Background())
			paintMu.Lock()
			paintCancel = cancel
			paintMu.Unlock()
			uploadFrame(ctx, s, w, frame)
			paintMu.Lock()
			paintCancel = nil
			if ctx.Err() == nil {
				dropCount = 0
			}
			paintMu.Unlock()
			cancel()
		}
	}()
	stopPaint := func() {
		paintMu.Lock()
		if paintCancel != nil {
			paintCancel()
		}
		paintMu.Unlock()
	}

	for {
		switch e := w.NextEvent().(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				stopPaint()
				return
			}
		case size.Event:
			ed.Resize(e.WidthPx, e.HeightPx)
			w.Send(paint.Event{})
		case paint.Event:
			paintMu.Lock()
			if paintCancel != nil && dropCount < frameDropThreshold {
				paintCancel()
				dropCount++
			}
			paintMu.Unlock()
			frame := ed.Render()
			select {
			case paintCh <- frame:
			default:
				select {
				case <-paintCh:
				default:
				}
				paintCh <- frame
			}
		case mouse.Event:
			if ed.HandleMouse(e) {
				w.Send(paint.Event{})
			}
		case key.Event:
			repaint := ed.HandleKey(e)
			if ed.Quit() {
				stopPaint()
				return
			}
			if repaint {
				w.Send(paint.Event{})
			}
		case error:
			log.Printf("window: %v", e)
		}
	}
}

func uploadFrame(ctx context.Context, s screen.Screen, w screen.Window, frame *image.RGBA) {
	b, err := s.NewBuffer(frame.Bounds().Size())
	if err != nil {
		log.Printf("new buffer: %v", err)
		return
	}
	defer b.Release()
	draw.Draw(b.RGBA(), b.Bounds(), frame, frame.Bounds().Min, draw.Src)
	if ctx.Err() != nil {
		return
	}
	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}
