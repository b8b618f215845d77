package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Saver stores one encoded export and returns where it went.
type Saver interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
}

// SaverFunc adapts a function to Saver.
type SaverFunc func(ctx context.Context, name string, data []byte) (string, error)

func (f SaverFunc) Save(ctx context.Context, name string, data []byte) (string, error) {
	return f(ctx, name, data)
}

// DirSaver writes exports into Dir, creating it on demand. An empty Dir
// means the working directory.
type DirSaver struct {
	Dir string
}

func (s DirSaver) Save(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	path := filepath.Join(dir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
