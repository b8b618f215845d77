//go:build !(linux || freebsd || openbsd || netbsd || dragonfly)

package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"runtime"
)

// The screenshot portal is a freedesktop interface.
func portalScreenshot(context.Context, Options) (*image.RGBA, error) {
	return nil, fmt.Errorf("screenshot on %s: %w", runtime.GOOS, errors.ErrUnsupported)
}
