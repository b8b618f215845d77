package main

import (
	"flag"
	"fmt"
)

type versionCmd struct{ r *root }

func (v *versionCmd) Program() string        { return v.r.program }
func (v *versionCmd) FlagSet() *flag.FlagSet { return nil }

func (v *versionCmd) Run() error {
	fmt.Fprintf(stdout, "%s version %s\n", v.r.program, version)
	if commit != "" {
		fmt.Fprintf(stdout, "commit %s", commit)
		if date != "" {
			fmt.Fprintf(stdout, " built %s", date)
		}
		fmt.Fprintln(stdout)
	}
	return nil
}
