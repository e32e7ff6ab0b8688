package client

import (
	"github.com/spf13/cobra"

	"github.com/cloo-solutions/sentisearch/internal/session"
)

// ListenCmd creates the listen command.
func ListenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "listen [audio-file]",
		Short: "Search by voice",
		Long: `Records a spoken query from the configured microphone, or transcribes the
given audio file, and searches for the recognized text.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			audio := ""
			if len(args) == 1 {
				audio = args[0]
			}
			return runListen(cmd, audio)
		},
	}
}

func runListen(cmd *cobra.Command, audio string) error {
	var opts []session.Option
	if audio != "" {
		opts = append(opts, session.WithRecording(audio))
	}

	rt, err := openRuntime(cmd, nil, opts...)
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.session.Listen(rt.ctx); err != nil {
		return err
	}
	if rt.outputJSON {
		return rt.printJSON(map[string]any{
			"query":    rt.session.Query(),
			"response": rt.session.Results().Response,
		})
	}
	return nil
}
