package client

import (
	"github.com/spf13/cobra"

	"github.com/cloo-solutions/sentisearch/internal/camera"
	"github.com/cloo-solutions/sentisearch/internal/session"
)

// CaptureCmd creates the capture command.
func CaptureCmd() *cobra.Command {
	var imagePath string

	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Capture a face template from the camera",
		Long: `Opens the camera, grabs one frame, uploads it as the face template and
releases the camera. --image uploads an existing picture instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []session.Option
			if imagePath != "" {
				opts = append(opts, session.WithCamera(camera.FileDevice{Path: imagePath}))
			}
			return runCapture(cmd, opts...)
		},
	}

	cmd.Flags().StringVar(&imagePath, "image", "", "Use this image file instead of the camera")

	return cmd
}

func runCapture(cmd *cobra.Command, opts ...session.Option) error {
	rt, err := openRuntime(cmd, nil, opts...)
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.session.OpenCamera(rt.ctx); err != nil {
		return err
	}
	defer rt.session.CloseCamera()

	if err := rt.session.Capture(rt.ctx); err != nil {
		return err
	}
	if rt.outputJSON {
		return rt.printJSON(map[string]string{"status": "uploaded"})
	}
	return nil
}
