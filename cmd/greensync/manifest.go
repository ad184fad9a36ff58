package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/urlordjames/green-lib/digest"
	"github.com/urlordjames/green-lib/fs"
	"github.com/urlordjames/green-lib/fs/billy"
	"github.com/urlordjames/green-lib/manifest"
)

func newManifestCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Work with manifests",
	}
	cmd.AddCommand(newManifestBuildCmd(a))
	return cmd
}

func newManifestBuildCmd(a *app) *cobra.Command {
	var (
		dir     string
		baseURL string
		output  string
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Describe a local directory as a manifest",
		Long: `Describe a local directory as a manifest.

Each file's source URL is --base-url followed by the file's path relative to
--dir. Upload the directory to that location and publish the manifest next to
it. The sha256 of the manifest text is what a pack registry lists as
manifest_sha.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if baseURL == "" {
				return fmt.Errorf("--base-url is required")
			}
			abs, err := fs.GetAbs(dir)
			if err != nil {
				return err
			}

			hasher := digest.NewHasher(0)
			defer hasher.Close()

			d, err := manifest.Build(cmd.Context(), billy.NewOSFS(abs), ".", baseURL, hasher)
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(d, "", "  ")
			if err != nil {
				return err
			}
			data = append(data, '\n')

			files, dirs := d.Count()
			a.logger.Info("built manifest", "path", abs, "files", files, "directories", dirs,
				"digest", digest.FromBytes(data))

			if output == "" {
				_, err = a.stdout.Write(data)
				return err
			}
			return os.WriteFile(output, data, 0o644)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "directory to describe")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "URL the directory's files are served under")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the manifest to this file instead of stdout")
	return cmd
}
