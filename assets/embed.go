package assets

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
)

// Embedded data files for memepanel.
//
//go:embed templates.yaml themes/*.theme
var embedded embed.FS

var (
	loadThemesOnce sync.Once
	loadThemesErr  error

	themeData = map[string][]byte{}
)

func loadThemes() {
	entries, err := fs.ReadDir(embedded, "themes")
	if err != nil {
		loadThemesErr = err
		return
	}
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".theme") {
			continue
		}
		data, err := embedded.ReadFile(path.Join("themes", name))
		if err != nil {
			loadThemesErr = err
			return
		}
		themeData[strings.TrimSuffix(name, ".theme")] = data
	}
}

func ensureThemes() error {
	loadThemesOnce.Do(loadThemes)
	return loadThemesErr
}

// Templates returns a copy of the built-in template catalog.
func Templates() []byte {
	data, err := embedded.ReadFile("templates.yaml")
	if err != nil {
		// The file is embedded at build time.
		panic(err)
	}
	return data
}

// Theme returns a copy of the embedded theme called name.
func Theme(name string) ([]byte, error) {
	if err := ensureThemes(); err != nil {
		return nil, err
	}
	data, ok := themeData[strings.TrimSuffix(strings.ToLower(name), ".theme")]
	if !ok {
		return nil, fmt.Errorf("theme %q not embedded", name)
	}
	return append([]byte(nil), data...), nil
}

// ThemeNames lists the embedded themes.
func ThemeNames() []string {
	if err := ensureThemes(); err != nil {
		return nil
	}
	names := make([]string, 0, len(themeData))
	for name := range themeData {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
