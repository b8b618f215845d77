package main

import (
	"flag"
	"fmt"
	"strings"
)

type templatesCmd struct {
	*root
	fs *flag.FlagSet
}

func (t *templatesCmd) FlagSet() *flag.FlagSet {
	return t.fs
}

func parseTemplatesCmd(args []string, r *root) (*templatesCmd, error) {
	fs := flag.NewFlagSet("templates", flag.ExitOnError)
	cmd := &templatesCmd{root: r, fs: fs}
	fs.Usage = usageFunc(cmd)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return cmd, nil
}

func (t *templatesCmd) Run() error {
	cat, err := t.loadCatalog()
	if err != nil {
		return fmt.Errorf("templates: %w", err)
	}
	query := strings.Join(t.fs.Args(), " ")
	found := cat.Find(query)
	if len(found) == 0 {
		fmt.Fprintf(stdout, "no templates match %q\n", query)
		return nil
	}
	for _, tmpl := range found {
		fmt.Fprintf(stdout, "%-24s %-28s %s\n", tmpl.Name, tmpl.Title, tmpl.URL)
	}
	return nil
}
