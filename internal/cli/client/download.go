package client

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// DownloadCmd creates the download command.
func DownloadCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "download <url>",
		Short: "Save a result image locally",
		Long:  "Downloads an image URL returned by search. Relative URLs resolve against the backend.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownload(cmd, args[0], dir)
		},
	}

	cmd.Flags().StringVarP(&dir, "out", "o", ".", "Directory to save into")

	return cmd
}

func runDownload(cmd *cobra.Command, url, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	rt, err := openRuntime(cmd, nil)
	if err != nil {
		return err
	}
	defer rt.Close()

	path, err := rt.session.DownloadURL(rt.ctx, url, dir)
	if err != nil {
		return err
	}
	if rt.outputJSON {
		return rt.printJSON(map[string]string{"path": path})
	}
	return nil
}
