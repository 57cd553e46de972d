package main

import (
	"fmt"
	"io"

	mcobra "github.com/muesli/mango-cobra"
	"github.com/muesli/roff"
	"github.com/spf13/cobra"
)

// printManPage writes a roff man page generated from cmd.
func printManPage(cmd *cobra.Command, w io.Writer) error {
	manPage, err := mcobra.NewManPage(1, cmd)
	if err != nil {
		return fmt.Errorf("unable to instantiate man page: %w", err)
	}
	manPage = manPage.WithSection("Configuration",
		"Defaults for every tunable can be read from a YAML file passed with --config. "+
			"Keys are the long flag names; flags given on the command line win.\n\n"+exampleConfig)
	if _, err := fmt.Fprint(w, manPage.Build(roff.NewDocument())); err != nil {
		return fmt.Errorf("unable to build man page: %w", err)
	}
	return nil
}
