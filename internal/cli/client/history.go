package client

import (
	"github.com/spf13/cobra"

	"github.com/cloo-solutions/sentisearch/internal/domain"
)

// HistoryCmd creates the history command.
func HistoryCmd() *cobra.Command {
	var replay int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past queries",
		Long:  "Lists every submitted query, oldest first. --replay runs the query at the given index again.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("replay") {
				return runReplay(cmd, replay)
			}
			return runHistory(cmd)
		},
	}

	cmd.Flags().IntVar(&replay, "replay", 0, "Replay the query at this history index")

	return cmd
}

func runHistory(cmd *cobra.Command) error {
	rt, err := openRuntime(cmd, nil)
	if err != nil {
		return err
	}
	defer rt.Close()

	if rt.outputJSON {
		entries := rt.session.History(rt.ctx)
		if entries == nil {
			entries = []domain.HistoryEntry{}
		}
		return rt.printJSON(entries)
	}
	return rt.session.ShowTab(rt.ctx, string(domain.TabHistory))
}

func runReplay(cmd *cobra.Command, index int) error {
	rt, err := openRuntime(cmd, nil)
	if err != nil {
		return err
	}
	defer rt.Close()

	resp, err := rt.session.Replay(rt.ctx, index)
	if err != nil {
		return err
	}
	if rt.outputJSON {
		return rt.printJSON(resp)
	}
	return nil
}
