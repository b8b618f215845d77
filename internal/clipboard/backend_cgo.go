//go:build (linux || freebsd || openbsd || netbsd || dragonfly) && cgo

package clipboard

import (
	"fmt"
	"sync"

	"golang.design/x/clipboard"
)

// initClipboard runs initBackend once.
var initClipboard = sync.OnceValue(initBackend)

func initBackend() error {
	if !displayAvailable() {
		return errNoDisplay
	}
	if err := clipboard.Init(); err != nil {
		return fmt.Errorf("clipboard: init: %w", err)
	}
	return nil
}

func platformWritePNG(data []byte) error {
	if err := initClipboard(); err != nil {
		return err
	}
	clipboard.Write(clipboard.FmtImage, data)
	return nil
}
