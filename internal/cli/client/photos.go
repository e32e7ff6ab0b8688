package client

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cloo-solutions/sentisearch/internal/domain"
)

// PhotosCmd creates the photos command with subcommands.
func PhotosCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "photos",
		Short: "Manage the photos sent along with every search",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List uploaded photos",
		Args:  cobra.NoArgs,
		RunE:  runPhotosList,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "add <path>...",
		Short: "Add image files",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runPhotosAdd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:     "remove <index>",
		Aliases: []string{"rm"},
		Short:   "Remove the photo at index",
		Args:    cobra.ExactArgs(1),
		RunE:    runPhotosRemove,
	})

	return cmd
}

type photoSummary struct {
	Index int    `json:"index"`
	Type  string `json:"type"`
	Bytes int    `json:"bytes"`
}

func summarizePhotos(photos []domain.UploadedPhoto) []photoSummary {
	out := make([]photoSummary, 0, len(photos))
	for i, p := range photos {
		mime := p.ImageData
		if end := strings.IndexByte(mime, ';'); end > len("data:") {
			mime = mime[len("data:"):end]
		}
		out = append(out, photoSummary{Index: i, Type: mime, Bytes: len(p.ImageData)})
	}
	return out
}

func runPhotosList(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime(cmd, nil)
	if err != nil {
		return err
	}
	defer rt.Close()

	if rt.outputJSON {
		return rt.printJSON(summarizePhotos(rt.session.Photos(rt.ctx)))
	}
	return rt.session.ShowTab(rt.ctx, string(domain.TabPhotos))
}

func runPhotosAdd(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime(cmd, nil)
	if err != nil {
		return err
	}
	defer rt.Close()

	for _, path := range args {
		if _, err := rt.session.AddPhoto(rt.ctx, path); err != nil {
			return fmt.Errorf("failed to add %s: %w", path, err)
		}
	}
	if rt.outputJSON {
		return rt.printJSON(summarizePhotos(rt.session.Photos(rt.ctx)))
	}
	return nil
}

func runPhotosRemove(cmd *cobra.Command, args []string) error {
	index, err := strconv.Atoi(args[0])
	if err != nil || index < 0 {
		return fmt.Errorf("invalid photo index %q", args[0])
	}

	rt, err := openRuntime(cmd, nil)
	if err != nil {
		return err
	}
	defer rt.Close()

	removed, err := rt.session.RemovePhotoAt(rt.ctx, index)
	if err != nil {
		return err
	}
	if rt.outputJSON {
		return rt.printJSON(map[string]int{"removed": removed})
	}
	return nil
}
