package client

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/cloo-solutions/sentisearch/internal/domain"
)

// SearchCmd creates the search command.
func SearchCmd() *cobra.Command {
	var useAI bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search images by sentiment",
		Long: `Sends the query to the search backend together with your uploaded photos,
records it in history and prints the ranked results.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var flag *bool
			if cmd.Flags().Changed("ai") {
				flag = domain.BoolPtr(useAI)
			}
			return runSearch(cmd, strings.Join(args, " "), flag)
		},
	}

	cmd.Flags().BoolVar(&useAI, "ai", false, "Ask the backend to use its AI query expansion")

	return cmd
}

func runSearch(cmd *cobra.Command, query string, useAI *bool) error {
	rt, err := openRuntime(cmd, nil)
	if err != nil {
		return err
	}
	defer rt.Close()

	resp, err := rt.session.Search(rt.ctx, query, useAI)
	if err != nil {
		return err
	}

	if rt.outputJSON {
		return rt.printJSON(resp)
	}
	return nil
}
