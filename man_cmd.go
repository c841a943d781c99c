package main

import (
	"fmt"

	mcobra "github.com/muesli/mango-cobra"
	"github.com/muesli/roff"
	"github.com/spf13/cobra"
)

var manCmd = &cobra.Command{
	Use:                   "man",
	Short:                 "Generates manpages",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Hidden:                true,
	Args:                  cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		manPage, err := mcobra.NewManPage(1, rootCmd)
		if err != nil {
			return fmt.Errorf("unable to build man page: %w", err)
		}

		manPage = manPage.WithSection("Files", "Documents are read from and removed from\n"+
			"$XDG_STATE_HOME/lexicc/inbox. Synthesized audio is kept in\n"+
			"$XDG_STATE_HOME/lexicc/audio.")
		fmt.Println(manPage.Build(roff.NewDocument()))
		return nil
	},
}
