// Package clipboard copies exported memes to the system clipboard.
package clipboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"

	"github.com/example/memepanel/internal/export"
)

// writePNG is the platform backend, replaced in tests.
var writePNG = platformWritePNG

// WritePNG publishes already encoded PNG data.
func WritePNG(data []byte) error {
	if len(data) == 0 {
		return errors.New("clipboard: empty image")
	}
	return writePNG(data)
}

// WriteImage encodes img as PNG and publishes it.
func WriteImage(img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("clipboard: encode: %w", err)
	}
	return WritePNG(buf.Bytes())
}

// Publisher returns an export.Publisher copying every saved meme. done, if
// non-nil, runs after a successful copy.
func Publisher(done func(res export.Result)) export.Publisher {
	return func(_ context.Context, res export.Result) error {
		if err := WritePNG(res.PNG); err != nil {
			return fmt.Errorf("copy %s: %w", res.Name, err)
		}
		if done != nil {
			done(res)
		}
		return nil
	}
}
