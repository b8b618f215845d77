package export

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type recordingSaver struct {
	mu    sync.Mutex
	names []string
	data  [][]byte
	// trigger, when set, is inspected during Save.
	trigger *Trigger
	sawBusy bool
	err     error
}

func (s *recordingSaver) Save(_ context.Context, name string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.trigger != nil && s.trigger.Disabled() {
		s.sawBusy = true
	}
	if s.err != nil {
		return "", s.err
	}
	s.names = append(s.names, name)
	s.data = append(s.data, data)
	return "/saved/" + name, nil
}

func tinyImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	return img
}

// gatedRasterizer blocks until release is closed.
func gatedRasterizer(release <-chan struct{}, err error) Rasterizer {
	return RasterizerFunc(func(ctx context.Context) (image.Image, error) {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		if err != nil {
			return nil, err
		}
		return tinyImage(), nil
	})
}

func fixedClock(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

func TestExportLifecycle(t *testing.T) {
	release := make(chan struct{})
	trig := NewTrigger()
	saver := &recordingSaver{trigger: trig}
	var calls atomic.Int64
	clock := func() time.Time {
		// The first reading is at invocation; anything later must not be used.
		return time.UnixMilli(1700000000000 + calls.Add(1) - 1)
	}
	e := New(trig, gatedRasterizer(release, nil), saver, WithClock(clock))

	job := e.Export(context.Background())
	if label, disabled := trig.State(); label != LabelBusy || !disabled {
		t.Fatalf("after Export: label %q disabled %v", label, disabled)
	}
	select {
	case <-job.Done():
		t.Fatal("job finished before rasterization completed")
	default:
	}

	close(release)
	res := job.Wait()
	if res.Err != nil {
		t.Fatalf("Export: %v", res.Err)
	}
	if label, disabled := trig.State(); label != LabelIdle || disabled {
		t.Fatalf("after export: label %q disabled %v", label, disabled)
	}
	if saver.sawBusy {
		t.Fatal("trigger should be restored before saving")
	}
	if len(saver.names) != 1 || saver.names[0] != "meme-1700000000000.png" {
		t.Fatalf("saved %v", saver.names)
	}
	if res.Path != "/saved/meme-1700000000000.png" {
		t.Fatalf("path %q", res.Path)
	}
	if _, err := png.Decode(bytes.NewReader(saver.data[0])); err != nil {
		t.Fatalf("saved data is not a PNG: %v", err)
	}
}

func TestExportRasterFailureRestoresTrigger(t *testing.T) {
	release := make(chan struct{})
	close(release)
	boom := errors.New("boom")
	trig := NewTrigger()
	saver := &recordingSaver{}
	e := New(trig, gatedRasterizer(release, boom), saver, WithClock(fixedClock(1)))

	res := e.Export(context.Background()).Wait()
	if !errors.Is(res.Err, boom) {
		t.Fatalf("err = %v, want boom", res.Err)
	}
	if trig.Disabled() || trig.Label() != LabelIdle {
		t.Fatal("trigger should be restored after a failed rasterization")
	}
	if len(saver.names) != 0 {
		t.Fatal("nothing should be saved")
	}
	if res := e.Export(context.Background()).Wait(); !errors.Is(res.Err, boom) {
		t.Fatalf("second export err = %v", res.Err)
	}
}

func TestExportBusy(t *testing.T) {
	release := make(chan struct{})
	e := New(nil, gatedRasterizer(release, nil), &recordingSaver{}, WithClock(fixedClock(5)))
	first := e.Export(context.Background())
	if res := e.Export(context.Background()).Wait(); !errors.Is(res.Err, ErrBusy) {
		t.Fatalf("err = %v, want ErrBusy", res.Err)
	}
	close(release)
	if res := first.Wait(); res.Err != nil {
		t.Fatalf("first export: %v", res.Err)
	}
}

func TestCloseInvalidatesPendingExport(t *testing.T) {
	release := make(chan struct{})
	trig := NewTrigger()
	saver := &recordingSaver{}
	e := New(trig, gatedRasterizer(release, nil), saver, WithClock(fixedClock(9)))

	job := e.Export(context.Background())
	e.Close()
	close(release)
	res := job.Wait()
	if !errors.Is(res.Err, ErrStale) {
		t.Fatalf("err = %v, want ErrStale", res.Err)
	}
	if len(saver.names) != 0 {
		t.Fatal("stale export must not save")
	}
	if !trig.Disabled() {
		t.Fatal("stale export must not touch the trigger")
	}
	if res := e.Export(context.Background()).Wait(); !errors.Is(res.Err, ErrStale) {
		t.Fatalf("export after close err = %v", res.Err)
	}
}

func TestPublishersRunAfterSave(t *testing.T) {
	release := make(chan struct{})
	close(release)
	saver := &recordingSaver{}
	var mu sync.Mutex
	var seen []string
	pub := func(_ context.Context, res Result) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, res.Path)
		return nil
	}
	failing := errors.New("no clipboard")
	e := New(nil, gatedRasterizer(release, nil), saver,
		WithClock(fixedClock(42)),
		WithPublisher(pub),
		WithPublisher(pub),
		WithPublisher(func(context.Context, Result) error { return failing }),
	)
	res := e.Export(context.Background()).Wait()
	if res.Err != nil {
		t.Fatalf("Export: %v", res.Err)
	}
	if !errors.Is(res.PublishErr, failing) {
		t.Fatalf("PublishErr = %v", res.PublishErr)
	}
	if len(seen) != 2 || seen[0] != "/saved/meme-42.png" {
		t.Fatalf("publishers saw %v", seen)
	}
}

func TestSaveFailureIsReported(t *testing.T) {
	release := make(chan struct{})
	close(release)
	disk := errors.New("disk full")
	e := New(nil, gatedRasterizer(release, nil), &recordingSaver{err: disk}, WithClock(fixedClock(1)))
	res := e.Export(context.Background()).Wait()
	if !errors.Is(res.Err, disk) {
		t.Fatalf("err = %v", res.Err)
	}
	if e.Trigger().Disabled() {
		t.Fatal("trigger should be enabled")
	}
}

func TestTriggerOnChange(t *testing.T) {
	release := make(chan struct{})
	close(release)
	trig := NewTrigger()
	var labels []string
	trig.OnChange(func(label string, _ bool) { labels = append(labels, label) })
	e := New(trig, gatedRasterizer(release, nil), &recordingSaver{}, WithClock(fixedClock(1)))
	e.Export(context.Background()).Wait()
	if len(labels) != 2 || labels[0] != LabelBusy || labels[1] != LabelIdle {
		t.Fatalf("labels = %v", labels)
	}
}

func TestDirSaver(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out", "memes")
	path, err := DirSaver{Dir: dir}.Save(context.Background(), "meme-1.png", []byte("png"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if path != filepath.Join(dir, "meme-1.png") {
		t.Fatalf("path %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "png" {
		t.Fatalf("read back %q, %v", data, err)
	}
}

func TestDirSaverCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (DirSaver{Dir: t.TempDir()}).Save(ctx, "x.png", nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}

func TestFileName(t *testing.T) {
	if got := FileName(time.UnixMilli(1234)); got != "meme-1234.png" {
		t.Fatalf("FileName = %q", got)
	}
}

func TestExportWithUsesGivenRasterizer(t *testing.T) {
	used := false
	raster := RasterizerFunc(func(context.Context) (image.Image, error) {
		used = true
		return tinyImage(), nil
	})
	e := New(nil, nil, &recordingSaver{}, WithClock(fixedClock(3)))
	if res := e.ExportWith(context.Background(), raster).Wait(); res.Err != nil || !used {
		t.Fatalf("ExportWith: %v, used %v", res.Err, used)
	}
}
