package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/example/memepanel/internal/theme"
)

// Notify holds notification settings.
type Notify struct {
	Save bool
	Copy bool
}

// Captions holds the caption defaults used for a fresh record.
type Captions struct {
	TopText     string
	BottomText  string
	TopColor    string
	BottomColor string
}

// Config holds the application configuration.
type Config struct {
	Theme     string
	SaveDir   string
	Storage   string
	Templates string
	Width     int
	Captions  Captions
	Notify    Notify
	Themes    map[string]*theme.Theme
}

// New creates a new Config with defaults.
func New() *Config {
	return &Config{
		Theme:  "", // Default to empty to allow fallback to Env/Default
		Themes: make(map[string]*theme.Theme),
	}
}

// Environment variables read by ApplyEnv.
const (
	EnvTheme   = "MEMEPANEL_THEME"
	EnvSaveDir = "MEMEPANEL_SAVE_DIR"
	EnvStorage = "MEMEPANEL_STORAGE"
)

// ApplyEnv overrides file settings with the environment. lookup is usually
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvTheme); ok && v != "" {
		c.Theme = v
	}
	if v, ok := lookup(EnvSaveDir); ok && v != "" {
		c.SaveDir = v
	}
	if v, ok := lookup(EnvStorage); ok && v != "" {
		c.Storage = v
	}
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	// Root section
	if c.Theme != "" {
		fmt.Fprintf(&sb, "theme = %s\n", c.Theme)
	}
	if c.SaveDir != "" {
		fmt.Fprintf(&sb, "save_dir = %s\n", c.SaveDir)
	}
	if c.Storage != "" {
		fmt.Fprintf(&sb, "storage = %s\n", c.Storage)
	}
	if c.Templates != "" {
		fmt.Fprintf(&sb, "templates = %s\n", c.Templates)
	}
	if c.Width > 0 {
		fmt.Fprintf(&sb, "width = %d\n", c.Width)
	}
	sb.WriteString("\n")

	if c.Captions != (Captions{}) {
		sb.WriteString("[captions]\n")
		writeIf(&sb, "top_text", c.Captions.TopText)
		writeIf(&sb, "bottom_text", c.Captions.BottomText)
		writeIf(&sb, "top_color", c.Captions.TopColor)
		writeIf(&sb, "bottom_color", c.Captions.BottomColor)
		sb.WriteString("\n")
	}

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "save = %v\n", c.Notify.Save)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	sb.WriteString("\n")

	// Sort keys for deterministic output
	var themeNames []string
	for name := range c.Themes {
		themeNames = append(themeNames, name)
	}
	sort.Strings(themeNames)

	for _, name := range themeNames {
		fmt.Fprintf(&sb, "[theme.%s]\n", name)
		_ = c.Themes[name].Format(&sb, ":")
		sb.WriteString("\n")
	}

	return sb.String()
}

func writeIf(sb *strings.Builder, key, value string) {
	if value == "" {
		return
	}
	if strings.TrimSpace(value) != value {
		value = `"` + value + `"`
	}
	fmt.Fprintf(sb, "%s = %s\n", key, value)
}
