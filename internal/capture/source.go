package capture

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"strings"
	"time"

	"github.com/example/memepanel/internal/imagesource"
)

// Scheme prefixes selection URLs served by Encoder.
const Scheme = "screen:"

// URL returns a selection URL for a new capture. The timestamp keeps two
// captures from sharing a URL, so each one derives again.
func URL(interactive bool, t time.Time) string {
	kind := "full"
	if interactive {
		kind = "pick"
	}
	return fmt.Sprintf("%s%s#%d", Scheme, kind, t.UnixMilli())
}

// Selection wraps URL with a display title.
func Selection(interactive bool, t time.Time) imagesource.Selection {
	return imagesource.Selection{URL: URL(interactive, t), Title: "Screenshot " + t.Format("15:04:05")}
}

// Encoder captures the screen for screen: URLs and hands anything else to
// Next.
type Encoder struct {
	Next          imagesource.Encoder
	IncludeCursor bool
}

// Encode implements imagesource.Encoder.
func (e Encoder) Encode(ctx context.Context, url string) (string, error) {
	if !strings.HasPrefix(url, Scheme) {
		if e.Next == nil {
			return "", fmt.Errorf("%w: %s", imagesource.ErrUnsupportedURL, url)
		}
		return e.Next.Encode(ctx, url)
	}
	kind, _, _ := strings.Cut(strings.TrimPrefix(url, Scheme), "#")
	opts := Options{IncludeCursor: e.IncludeCursor}
	switch kind {
	case "", "full":
	case "pick":
		opts.Interactive = true
	default:
		return "", fmt.Errorf("%w: %s", imagesource.ErrUnsupportedURL, url)
	}
	img, err := Screenshot(ctx, opts)
	if err != nil {
		return "", fmt.Errorf("capture: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("capture: encode: %w", err)
	}
	return imagesource.EncodeBytes(buf.Bytes())
}
