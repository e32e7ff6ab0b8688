package client

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cloo-solutions/sentisearch/internal/domain"
)

// FavoritesCmd creates the favorites command with subcommands.
func FavoritesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "favorites",
		Aliases: []string{"fav"},
		Short:   "Manage saved images",
	}

	cmd.AddCommand(favoritesListCmd())
	cmd.AddCommand(favoritesAddCmd())
	cmd.AddCommand(favoritesRemoveCmd())

	return cmd
}

func favoritesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List favorites",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd, nil)
			if err != nil {
				return err
			}
			defer rt.Close()

			if rt.outputJSON {
				favs := rt.session.Favorites(rt.ctx)
				if favs == nil {
					favs = []domain.FavoriteEntry{}
				}
				return rt.printJSON(favs)
			}
			return rt.session.ShowTab(rt.ctx, string(domain.TabFavorites))
		},
	}
}

func favoritesAddCmd() *cobra.Command {
	var (
		emotion string
		score   float64
	)

	cmd := &cobra.Command{
		Use:   "add <url>",
		Short: "Save an image URL as a favorite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fav := domain.FavoriteEntry{ImageURL: args[0]}
			if emotion != "" {
				fav.DominantEmotion = domain.StringPtr(emotion)
			}
			if cmd.Flags().Changed("score") {
				fav.Score = domain.Float64Ptr(score)
			}

			rt, err := openRuntime(cmd, nil)
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.session.AddFavorite(rt.ctx, fav); err != nil {
				return err
			}
			if rt.outputJSON {
				return rt.printJSON(fav)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&emotion, "emotion", "", "Dominant emotion label")
	cmd.Flags().Float64Var(&score, "score", 0, "Relevance score")

	return cmd
}

func favoritesRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <url>",
		Aliases: []string{"rm"},
		Short:   "Remove the most recent favorite with this URL",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd, nil)
			if err != nil {
				return err
			}
			defer rt.Close()

			removed, err := rt.session.Unfavorite(rt.ctx, args[0])
			if err != nil {
				return err
			}
			if rt.outputJSON {
				return rt.printJSON(map[string]int{"removed": removed})
			}
			if removed == 0 {
				fmt.Fprintln(rt.out, "No favorite with that URL.")
			}
			return nil
		},
	}
}
