package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/urlordjames/green-lib/packs"
)

func newPacksCmd(a *app) *cobra.Command {
	var registryURL string

	cmd := &cobra.Command{
		Use:   "packs",
		Short: "Browse and install packs from a registry",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cmd.Root().PersistentPreRunE(cmd, args); err != nil {
				return err
			}
			if registryURL == "" {
				return fmt.Errorf("--registry is required")
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&registryURL, "registry", "", "pack registry URL")

	cmd.AddCommand(
		newPacksListCmd(a, &registryURL),
		newPacksInstallCmd(a, &registryURL),
	)
	return cmd
}

func newPacksListCmd(a *app, registryURL *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the packs in the registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := packs.Fetch(cmd.Context(), a.source, *registryURL)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tFEATURED")
			for _, id := range reg.IDs() {
				m, _ := reg.Get(id)
				featured := ""
				if id == reg.FeaturedPack {
					featured = "*"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", id, m.DisplayName, featured)
			}
			return tw.Flush()
		},
	}
}

func newPacksInstallCmd(a *app, registryURL *string) *cobra.Command {
	var target targetOptions

	cmd := &cobra.Command{
		Use:   "install [pack-id]",
		Short: "Install a pack, or the featured pack if no id is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := packs.Fetch(cmd.Context(), a.source, *registryURL)
			if err != nil {
				return err
			}

			var meta packs.Metadata
			if len(args) == 1 {
				var ok bool
				if meta, ok = reg.Get(args[0]); !ok {
					return fmt.Errorf("pack %q is not in the registry", args[0])
				}
			} else if meta, err = reg.Featured(); err != nil {
				return err
			}

			root, err := target.resolve()
			if err != nil {
				return err
			}

			dir, err := meta.Fetch(cmd.Context(), a.source)
			if err != nil {
				return err
			}
			a.logger.Info("installing pack", "name", meta.DisplayName, "url", meta.ManifestURL)
			return a.reconcile(cmd.Context(), root, dir)
		},
	}

	target.register(cmd)
	return cmd
}
