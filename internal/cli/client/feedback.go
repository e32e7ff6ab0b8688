package client

import (
	"github.com/spf13/cobra"

	"github.com/cloo-solutions/sentisearch/internal/domain"
)

// FeedbackCmd creates the feedback command.
func FeedbackCmd() *cobra.Command {
	var (
		up, down bool
		expected string
		query    string
	)

	cmd := &cobra.Command{
		Use:   "feedback <url>",
		Short: "Judge whether an image matched the expected emotion",
		Long: `Sends a thumbs up (--up) or thumbs down (--down) for an image. The expected
emotion defaults to the one inferred from --query.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFeedback(cmd, args[0], expected, query, up)
		},
	}

	cmd.Flags().BoolVar(&up, "up", false, "The image met the expectation")
	cmd.Flags().BoolVar(&down, "down", false, "The image did not meet the expectation")
	cmd.Flags().StringVar(&expected, "expected", "", "Expected emotion")
	cmd.Flags().StringVar(&query, "query", "", "Query the image was found for, used to infer the expected emotion")
	cmd.MarkFlagsMutuallyExclusive("up", "down")
	cmd.MarkFlagsOneRequired("up", "down")

	return cmd
}

func runFeedback(cmd *cobra.Command, url, expected, query string, met bool) error {
	rt, err := openRuntime(cmd, nil)
	if err != nil {
		return err
	}
	defer rt.Close()

	if expected == "" {
		expected = domain.InferEmotion(query)
	}
	if err := rt.session.FeedbackURL(rt.ctx, url, expected, query, met); err != nil {
		return err
	}
	if rt.outputJSON {
		return rt.printJSON(domain.FeedbackEvent{URL: url, ExpectedEmotion: expected, MetExpectation: met})
	}
	return nil
}
