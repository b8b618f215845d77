package imagesource

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
)

// ErrUnsupportedURL is returned for URLs no encoder can read.
var ErrUnsupportedURL = errors.New("imagesource: unsupported url")

// DefaultMaxBytes caps how much image data an encoder reads.
const DefaultMaxBytes = 32 << 20

// Encoder converts an image URL into a data URI.
type Encoder interface {
	Encode(ctx context.Context, rawURL string) (string, error)
}

// EncoderFunc adapts a function to Encoder.
type EncoderFunc func(ctx context.Context, rawURL string) (string, error)

func (f EncoderFunc) Encode(ctx context.Context, rawURL string) (string, error) { return f(ctx, rawURL) }

// DataURIEncoder reads local files and http(s) URLs. data: URLs are
// returned unchanged.
type DataURIEncoder struct {
	Client   *http.Client
	MaxBytes int64
	// Open opens local paths; nil uses os.Open.
	Open func(name string) (io.ReadCloser, error)
}

func (e DataURIEncoder) Encode(ctx context.Context, rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", nil
	}
	if strings.HasPrefix(rawURL, "data:") {
		if !strings.HasPrefix(rawURL, "data:image/") {
			return "", fmt.Errorf("%w: not an image data url", ErrUnsupportedURL)
		}
		return rawURL, nil
	}
	var (
		data []byte
		err  error
	)
	switch u, perr := url.Parse(rawURL); {
	case perr == nil && (u.Scheme == "http" || u.Scheme == "https"):
		data, err = e.fetch(ctx, rawURL)
	case perr == nil && u.Scheme == "file":
		data, err = e.readFile(u.Path)
	case perr != nil || u.Scheme == "" || len(u.Scheme) == 1:
		// Plain paths, including Windows drive letters.
		data, err = e.readFile(rawURL)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedURL, rawURL)
	}
	if err != nil {
		return "", err
	}
	return EncodeBytes(data)
}

// EncodeBytes wraps image bytes in a data URI. The mime type is sniffed.
func EncodeBytes(data []byte) (string, error) {
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return "", fmt.Errorf("%w: content is %s", ErrUnsupportedURL, mime)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func (e DataURIEncoder) limit() int64 {
	if e.MaxBytes > 0 {
		return e.MaxBytes
	}
	return DefaultMaxBytes
}

func (e DataURIEncoder) readFile(path string) ([]byte, error) {
	open := e.Open
	if open == nil {
		open = func(name string) (io.ReadCloser, error) { return os.Open(name) }
	}
	f, err := open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()
	return readLimited(f, e.limit())
}

func (e DataURIEncoder) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	client := e.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch image: %s", resp.Status)
	}
	return readLimited(resp.Body, e.limit())
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("image larger than %d bytes", limit)
	}
	return data, nil
}
