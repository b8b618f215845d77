package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/example/memepanel/internal/catalog"
	"github.com/example/memepanel/internal/config"
	"github.com/example/memepanel/internal/export"
	"github.com/example/memepanel/internal/kvstore"
	"github.com/example/memepanel/internal/memestate"
	"github.com/example/memepanel/internal/notify"
	"github.com/example/memepanel/internal/panel"
	"github.com/example/memepanel/internal/theme"
)

var (
	version            = "dev"
	commit             = ""
	date               = ""
	configPathOverride = ""
)

// stdout is where commands print their results.
var stdout io.Writer = os.Stdout

type runnable interface{ Run() error }

// store is the storage the CLI opens for the form.
type store interface {
	memestate.Store
	Delete(key string) error
}

type root struct {
	fs          *flag.FlagSet
	program     string
	notifier    *notify.Notifier
	config      *config.Config
	fileConfig  *config.Config
	saveAlerts  bool
	copyAlerts  bool
	ephemeral   bool
	themeName   string
	activeTheme *theme.Theme
}

func (r *root) Program() string {
	return r.program
}

func (r *root) FlagSet() *flag.FlagSet {
	return r.fs
}

func newRoot() *root {
	prefs := notify.LoadPreferences()
	loader := config.NewLoader(version, configPathOverride)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load config: %v\n", err)
		cfg = config.New()
	}
	effective := *cfg
	effective.ApplyEnv(os.LookupEnv)

	r := &root{
		fs:         flag.NewFlagSet("memepanel", flag.ExitOnError),
		program:    "memepanel",
		notifier:   notify.New(prefs),
		config:     &effective,
		fileConfig: cfg,
	}
	r.fs.BoolVar(&r.saveAlerts, "notify-save", cfg.Notify.Save, "show a desktop notification after saving a meme")
	r.fs.BoolVar(&r.copyAlerts, "notify-copy", cfg.Notify.Copy, "show a desktop notification after copying to the clipboard")
	r.fs.BoolVar(&r.ephemeral, "ephemeral", false, "keep the meme settings in memory only")

	// Precedence: CLI > Env > Config > Default. ApplyEnv already folded the
	// environment into the config, so an empty flag falls back to it.
	r.fs.StringVar(&r.themeName, "theme", "", "color theme to use (default, dark or a .theme file)")
	r.fs.Usage = usageFunc(r)
	return r
}

func (r *root) Run(args []string) error {
	if err := r.fs.Parse(args); err != nil {
		return err
	}
	if r.fs.NArg() < 1 {
		return &UsageError{of: r}
	}
	if r.notifier != nil {
		r.notifier.Enable(notify.EventSave, r.saveAlerts)
		r.notifier.Enable(notify.EventCopy, r.copyAlerts)
	}
	r.activeTheme = r.loadTheme()

	cmdName := r.fs.Arg(0)
	subArgs := r.fs.Args()[1:]

	var (
		cmd runnable
		err error
	)
	switch cmdName {
	case "edit":
		cmd, err = parseEditCmd(subArgs, r)
	case "render":
		cmd, err = parseRenderCmd(subArgs, r)
	case "state":
		cmd, err = parseStateCmd(subArgs, r)
	case "templates":
		cmd, err = parseTemplatesCmd(subArgs, r)
	case "config":
		cmd, err = parseConfigCmd(subArgs, r)
	case "version":
		cmd = &versionCmd{r: r}
		if len(subArgs) > 0 {
			err = &UsageError{of: &versionCmd{r: r}}
		}
	default:
		err = &UsageError{of: r}
	}
	if err != nil {
		return err
	}
	return cmd.Run()
}

func (r *root) loadTheme() *theme.Theme {
	name := r.themeName
	if name == "" {
		name = r.config.Theme
	}
	loader := theme.NewLoader()
	loader.Custom = r.config.Themes
	t, err := loader.Load(name)
	if err != nil {
		if name != "default" {
			fmt.Fprintf(os.Stderr, "warning: failed to load theme '%s': %v. using default.\n", name, err)
		}
		t = theme.Default()
	}
	return t
}

// openStore returns the storage backing the form. -ephemeral keeps
// everything in memory.
func (r *root) openStore() store {
	if r.ephemeral {
		return kvstore.NewMemory()
	}
	path := r.config.Storage
	if path == "" {
		path = kvstore.DefaultPath()
	}
	return kvstore.NewFileStore(path)
}

// captionDefaults is the record a fresh store starts from.
func (r *root) captionDefaults() memestate.Settings {
	s := memestate.Defaults()
	c := r.config.Captions
	if c.TopText != "" {
		s.TopText = c.TopText
	}
	if c.BottomText != "" {
		s.BottomText = c.BottomText
	}
	for _, col := range []struct {
		key   string
		value string
		dst   *string
	}{
		{"top_color", c.TopColor, &s.TopTextColor},
		{"bottom_color", c.BottomColor, &s.BottomTextColor},
	} {
		if col.value == "" {
			continue
		}
		norm, ok := memestate.NormalizeColor(col.value)
		if !ok {
			fmt.Fprintf(os.Stderr, "warning: ignoring invalid %s %q\n", col.key, col.value)
			continue
		}
		*col.dst = norm
	}
	return s
}

// openForm loads the persisted meme settings. A malformed record is
// reported once and replaced by the defaults.
func (r *root) openForm(st store) *memestate.Form {
	form := memestate.NewForm(st, memestate.WithDefaults(r.captionDefaults()))
	if err := form.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: stored meme settings unreadable, using defaults: %v\n", err)
	}
	return form
}

func (r *root) saveDir() string {
	return r.config.SaveDir
}

func (r *root) loadCatalog() (*catalog.Catalog, error) {
	return catalog.Load(r.config.Templates)
}

// panelOptions are shared by every command that builds a panel.
func (r *root) panelOptions(saveDir string) []panel.Option {
	opts := []panel.Option{
		panel.WithSaver(export.DirSaver{Dir: saveDir}),
		panel.WithExportOptions(export.WithPublisher(r.notifier.Saved)),
	}
	if r.config.Width > 0 {
		opts = append(opts, panel.WithWidth(r.config.Width))
	}
	if r.activeTheme != nil {
		opts = append(opts, panel.WithBackground(r.activeTheme.CanvasBackground))
	}
	return opts
}

func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: failed to load .env: %v\n", err)
	}
}

func main() {
	loadDotEnv()
	r := newRoot()
	if err := r.Run(os.Args[1:]); err != nil {
		var uerr *UsageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(os.Stderr, strings.TrimRight(uerr.Error(), "\n"))
		} else {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}
