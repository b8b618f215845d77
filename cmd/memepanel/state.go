package main

import (
	"flag"
	"fmt"
	"strings"

	"github.com/example/memepanel/internal/kvstore"
	"github.com/example/memepanel/internal/memestate"
)

type stateCmd struct {
	*root
	fs     *flag.FlagSet
	asJSON bool
}

func (s *stateCmd) FlagSet() *flag.FlagSet {
	return s.fs
}

func parseStateCmd(args []string, r *root) (*stateCmd, error) {
	fs := flag.NewFlagSet("state", flag.ExitOnError)
	cmd := &stateCmd{root: r, fs: fs}
	fs.Usage = usageFunc(cmd)
	fs.BoolVar(&cmd.asJSON, "json", false, "print the stored record as JSON")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		return nil, &UsageError{of: cmd}
	}
	return cmd, nil
}

func (s *stateCmd) Run() error {
	st := s.openStore()
	switch sub := s.fs.Arg(0); sub {
	case "print":
		return s.runPrint(st)
	case "clear":
		if err := st.Delete(memestate.StorageKey); err != nil {
			return fmt.Errorf("state clear: %w", err)
		}
		fmt.Fprintln(stdout, "meme settings cleared")
		return nil
	default:
		return fmt.Errorf("unknown state command: %s", sub)
	}
}

func (s *stateCmd) runPrint(st store) error {
	form := s.openForm(st)
	settings := form.Settings()
	if s.asJSON {
		data, err := memestate.Encode(settings)
		if err != nil {
			return fmt.Errorf("state print: %w", err)
		}
		fmt.Fprintln(stdout, string(data))
		return nil
	}
	fmt.Fprintf(stdout, "top text:          %s\n", settings.TopText)
	fmt.Fprintf(stdout, "top text color:    %s\n", settings.TopTextColor)
	fmt.Fprintf(stdout, "bottom text:       %s\n", settings.BottomText)
	fmt.Fprintf(stdout, "bottom text color: %s\n", settings.BottomTextColor)
	fmt.Fprintf(stdout, "base image:        %s\n", describeImage(settings.BaseImage))
	fmt.Fprintf(stdout, "storage:           %s\n", describeStore(st, form.Degraded()))
	return nil
}

// describeImage summarises a data URI instead of dumping it.
func describeImage(uri string) string {
	if uri == "" {
		return "none"
	}
	head, _, _ := strings.Cut(uri, ",")
	head = strings.TrimSuffix(strings.TrimPrefix(head, "data:"), ";base64")
	return fmt.Sprintf("%s (%d bytes encoded)", head, len(uri))
}

func describeStore(st store, degraded bool) string {
	if degraded {
		return "unavailable, edits are not kept"
	}
	if fs, ok := st.(*kvstore.FileStore); ok {
		return fs.Path()
	}
	return "memory"
}
