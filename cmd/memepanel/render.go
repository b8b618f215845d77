package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/example/memepanel/internal/clipboard"
	"github.com/example/memepanel/internal/export"
	"github.com/example/memepanel/internal/imagesource"
	"github.com/example/memepanel/internal/panel"
)

type renderCmd struct {
	*root
	fs          *flag.FlagSet
	src         sourceFlags
	top         string
	bottom      string
	topColor    string
	bottomColor string
	output      string
	toClipboard bool
}

func (c *renderCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseRenderCmd(args []string, r *root) (*renderCmd, error) {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	cmd := &renderCmd{root: r, fs: fs}
	fs.Usage = usageFunc(cmd)
	cmd.src.register(fs)
	fs.StringVar(&cmd.top, "top", "", "top caption text")
	fs.StringVar(&cmd.bottom, "bottom", "", "bottom caption text")
	fs.StringVar(&cmd.topColor, "top-color", "", "top caption color (#rgb or #rrggbb)")
	fs.StringVar(&cmd.bottomColor, "bottom-color", "", "bottom caption color (#rgb or #rrggbb)")
	fs.StringVar(&cmd.output, "output", "", "directory the meme is written to")
	fs.BoolVar(&cmd.toClipboard, "to-clipboard", false, "also copy the meme to the clipboard")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: cmd}
	}
	if cmd.src.count() > 1 {
		return nil, errManySources
	}
	return cmd, nil
}

type fieldEdit struct {
	flag  string
	field string
	value string
}

// edits lists the caption flags given on the command line, in flag order.
// Template captions fill in texts that were not given.
func (c *renderCmd) edits(top, bottom string) []fieldEdit {
	set := map[string]bool{}
	c.fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	var out []fieldEdit
	add := func(name, field, value, fallback string) {
		switch {
		case set[name]:
			out = append(out, fieldEdit{name, field, value})
		case fallback != "":
			out = append(out, fieldEdit{name, field, fallback})
		}
	}
	add("top", panel.FieldTopText, c.top, top)
	add("top-color", panel.FieldTopTextColor, c.topColor, "")
	add("bottom", panel.FieldBottomText, c.bottom, bottom)
	add("bottom-color", panel.FieldBottomTextColor, c.bottomColor, "")
	return out
}

func (c *renderCmd) Run() error {
	sel, tmpl, err := c.src.selection(c.loadCatalog)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	var deriveErr error
	enc := imagesource.DataURIEncoder{}
	tracked := imagesource.EncoderFunc(func(ctx context.Context, url string) (string, error) {
		uri, err := enc.Encode(ctx, url)
		if err != nil {
			deriveErr = err
		}
		return uri, err
	})

	dir := c.output
	if dir == "" {
		dir = c.saveDir()
	}
	opts := append(c.panelOptions(dir), panel.WithEncoder(tracked))
	if c.toClipboard {
		opts = append(opts, panel.WithExportOptions(export.WithPublisher(clipboard.Publisher(func(res export.Result) {
			c.notifier.Copy(res.Name, res.PNG)
		}))))
	}
	p := panel.New(c.openForm(c.openStore()), imagesource.NewStatic(sel), opts...)
	defer p.Close()

	var top, bottom string
	if tmpl != nil {
		top, bottom = tmpl.Top, tmpl.Bottom
	}
	for _, e := range c.edits(top, bottom) {
		if !p.SetField(e.field, e.value) {
			return fmt.Errorf("render: invalid -%s %q", e.flag, e.value)
		}
	}

	p.Start()
	p.WaitDerived()
	if deriveErr != nil {
		return fmt.Errorf("render: load %s: %w", sel.URL, deriveErr)
	}

	res := p.Save(context.Background()).Wait()
	if res.Err != nil {
		return fmt.Errorf("render: %w", res.Err)
	}
	if res.PublishErr != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", res.PublishErr)
	}
	fmt.Fprintln(stdout, res.Path)
	return nil
}
