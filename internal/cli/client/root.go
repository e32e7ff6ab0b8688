package client

import (
	"github.com/spf13/cobra"

	"github.com/cloo-solutions/sentisearch/internal/cli"
)

// NewRootCmd assembles the sentisearch command tree.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sentisearch",
		Short: "Sentisearch - search images by the feeling you describe",
		Long: `Sentisearch is the client for a sentiment-aware image search backend.

Environment variables:
  SENTISEARCH_API_URL    Backend base URL (default: http://localhost:5000)
  SENTISEARCH_DATA_DIR   Profile directory holding history, favorites and photos
  SENTISEARCH_USE_AI     Send useAI=true with every search`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-url", "", "Backend base URL (overrides env and config)")
	rootCmd.PersistentFlags().String("data-dir", "", "Profile directory (overrides env and config)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(SearchCmd())
	rootCmd.AddCommand(HistoryCmd())
	rootCmd.AddCommand(FavoritesCmd())
	rootCmd.AddCommand(PhotosCmd())
	rootCmd.AddCommand(FeedbackCmd())
	rootCmd.AddCommand(CaptureCmd())
	rootCmd.AddCommand(ListenCmd())
	rootCmd.AddCommand(DownloadCmd())
	rootCmd.AddCommand(ShellCmd())
	rootCmd.AddCommand(ServeCmd())
	rootCmd.AddCommand(ConfigCmd())

	return rootCmd
}
