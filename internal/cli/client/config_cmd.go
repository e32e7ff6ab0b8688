package client

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cloo-solutions/sentisearch/internal/config"
)

// ConfigCmd creates the config command with subcommands.
func ConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change persistent settings",
		Long: `Settings resolve in order: command-line flag, SENTISEARCH_* environment
variable, the global config.json, then the built-in default.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show resolved settings and where they came from",
		Args:  cobra.NoArgs,
		RunE:  runConfigShow,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a setting (api_url, data_dir, use_ai) in config.json",
		Args:  cobra.ExactArgs(2),
		RunE:  runConfigSet,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Delete config.json",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return DeleteGlobalConfig()
		},
	})

	return cmd
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	base, err := config.Load()
	if err != nil {
		return err
	}
	settings, err := ResolveSettings(cmd, base)
	if err != nil {
		return err
	}

	outputJSON, _ := cmd.Flags().GetBool("output")
	if outputJSON {
		return writeJSON(cmd.OutOrStdout(), settings)
	}

	path, _ := GetConfigPath()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "config file: %s\n", path)
	fmt.Fprintf(out, "api_url:  %s (%s)\n", settings.APIURL.Value, settings.APIURL.Source)
	fmt.Fprintf(out, "data_dir: %s (%s)\n", settings.DataDir.Value, settings.DataDir.Source)
	fmt.Fprintf(out, "use_ai:   %s (%s)\n", settings.UseAI.Value, settings.UseAI.Source)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	global, err := LoadGlobalConfig()
	if err != nil {
		return err
	}
	if global == nil {
		global = &GlobalConfig{}
	}

	if err := global.Set(args[0], args[1]); err != nil {
		return err
	}
	if err := SaveGlobalConfig(global); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s.\n", args[0])
	return nil
}
