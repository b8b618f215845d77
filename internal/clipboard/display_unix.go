//go:build linux || freebsd || openbsd || netbsd || dragonfly

package clipboard

import (
	"errors"
	"os"
)

var errNoDisplay = errors.New("clipboard: no X11 or Wayland display")

// displayAvailable reports whether a graphical session is reachable. The
// clipboard library aborts the process when it cannot open a display, so
// this runs before it is initialised.
func displayAvailable() bool {
	for _, name := range []string{"WAYLAND_DISPLAY", "DISPLAY"} {
		if os.Getenv(name) != "" {
			return true
		}
	}
	return false
}
