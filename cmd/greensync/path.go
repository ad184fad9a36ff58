package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/urlordjames/green-lib/gamedir"
)

func newPathCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the default game directory for this platform",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			_, err := fmt.Fprintln(a.stdout, gamedir.Default())
			return err
		},
	}
}
