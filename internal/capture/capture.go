// Package capture grabs the desktop through the XDG screenshot portal and
// offers the result as a meme base image.
package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"time"
)

// ErrCancelled is returned when the user dismissed the portal dialog.
var ErrCancelled = errors.New("screenshot cancelled")

// Options configures a screenshot.
type Options struct {
	// Interactive lets the user pick the area in the portal dialog.
	Interactive bool
	// IncludeCursor embeds the pointer in the image.
	IncludeCursor bool
	// Region crops the result, in screen coordinates. Empty keeps everything.
	Region image.Rectangle
}

// screenshot is the platform backend, replaced in tests.
var screenshot = portalScreenshot

// Screenshot captures the desktop.
func Screenshot(ctx context.Context, opts Options) (*image.RGBA, error) {
	img, err := screenshot(ctx, opts)
	if err != nil {
		return nil, err
	}
	if opts.Region.Empty() {
		return img, nil
	}
	return cropToRect(img, opts.Region)
}

func cropToRect(src *image.RGBA, rect image.Rectangle) (*image.RGBA, error) {
	rect = rect.Intersect(src.Bounds())
	if rect.Empty() {
		return nil, fmt.Errorf("requested region outside captured image")
	}
	dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(dst, dst.Bounds(), src, rect.Min, draw.Src)
	return dst, nil
}

// DefaultTimeout bounds how long a non-interactive capture waits for the
// portal to answer.
const DefaultTimeout = 30 * time.Second
