package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/example/memepanel/internal/appstate"
	"github.com/example/memepanel/internal/capture"
	"github.com/example/memepanel/internal/catalog"
	"github.com/example/memepanel/internal/imagesource"
	"github.com/example/memepanel/internal/panel"
)

// runWindow blocks until the editor window closes.
var runWindow = func(app *appstate.AppState) { app.Run() }

type editCmd struct {
	*root
	fs          *flag.FlagSet
	src         sourceFlags
	capture     bool
	interactive bool
	cursor      bool
	saveDirFlag string
}

func (e *editCmd) FlagSet() *flag.FlagSet {
	return e.fs
}

func parseEditCmd(args []string, r *root) (*editCmd, error) {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	cmd := &editCmd{root: r, fs: fs}
	fs.Usage = usageFunc(cmd)
	cmd.src.register(fs)
	fs.BoolVar(&cmd.capture, "capture", false, "start from a screenshot of the desktop")
	fs.BoolVar(&cmd.interactive, "interactive", false, "let the desktop ask which area to capture")
	fs.BoolVar(&cmd.cursor, "cursor", false, "include the mouse pointer in captures")
	fs.StringVar(&cmd.saveDirFlag, "output", "", "directory saved memes are written to")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: cmd}
	}
	if cmd.capture && cmd.src.count() > 0 {
		return nil, fmt.Errorf("-capture cannot be combined with -file, -url or -template")
	}
	return cmd, nil
}

func (e *editCmd) Run() error {
	var templates []catalog.Template
	cat, catErr := e.loadCatalog()
	if catErr != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load templates: %v\n", catErr)
	} else {
		templates = cat.Templates
	}

	sel, _, err := e.src.selection(func() (*catalog.Catalog, error) { return cat, catErr })
	if err != nil {
		return fmt.Errorf("edit: %w", err)
	}
	if e.capture {
		sel = capture.Selection(e.interactive, time.Now())
	}

	saveDir := e.saveDirFlag
	if saveDir == "" {
		saveDir = e.saveDir()
	}

	var app *appstate.AppState
	opts := append(e.panelOptions(saveDir),
		panel.WithOrigin(appstate.PreviewOrigin),
		panel.WithRepaint(func() { app.NotifyChanged() }),
		panel.WithEncoder(capture.Encoder{Next: imagesource.DataURIEncoder{}, IncludeCursor: e.cursor}),
	)
	form := e.openForm(e.openStore())
	p := panel.New(form, imagesource.NewStatic(sel), opts...)
	defer func() {
		p.Close()
		// A cancelled derivation may still be returning from the encoder.
		p.WaitDerived()
	}()

	app = appstate.New(p,
		appstate.WithTheme(e.activeTheme),
		appstate.WithNotifier(e.notifier),
		appstate.WithTemplates(templates),
		appstate.WithCapture(true),
	)
	p.Start()
	runWindow(app)
	return nil
}
