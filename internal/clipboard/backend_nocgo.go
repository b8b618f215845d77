//go:build (linux || freebsd || openbsd || netbsd || dragonfly) && !cgo

package clipboard

import "errors"

var errCGODisabled = errors.New("clipboard: built without cgo")

var initClipboard = initBackend

func initBackend() error {
	if !displayAvailable() {
		return errNoDisplay
	}
	return errCGODisabled
}

func platformWritePNG([]byte) error {
	return initClipboard()
}
