// Package cli provides shared CLI utilities for the sentisearch command tree.
package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// FlagSchema represents the JSON schema for a command flag.
type FlagSchema struct {
	Name        string `json:"name"`
	Shorthand   string `json:"shorthand,omitempty"`
	Type        string `json:"type"`
	Default     string `json:"default,omitempty"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
	Inherited   bool   `json:"inherited,omitempty"`
}

// CommandSchema represents the JSON schema for a command.
type CommandSchema struct {
	Name        string          `json:"name"`
	Use         string          `json:"use,omitempty"`
	Aliases     []string        `json:"aliases,omitempty"`
	Description string          `json:"description,omitempty"`
	Long        string          `json:"long,omitempty"`
	Flags       []FlagSchema    `json:"flags,omitempty"`
	OneOf       [][]string      `json:"one_of,omitempty"`
	Subcommands []CommandSchema `json:"subcommands,omitempty"`
}

// Flag group annotations cobra sets from MarkFlagsOneRequired.
const oneRequiredAnnotation = "cobra_annotation_one_required"

// GenerateSchema generates a JSON schema for a cobra command. Inherited flags
// are listed only on leaf commands, where an agent actually invokes them.
func GenerateSchema(cmd *cobra.Command) CommandSchema {
	schema := CommandSchema{
		Name:        cmd.Name(),
		Use:         cmd.Use,
		Aliases:     cmd.Aliases,
		Description: cmd.Short,
		Long:        cmd.Long,
		Flags:       extractFlags(cmd),
		OneOf:       oneRequiredGroups(cmd),
	}

	for _, sub := range cmd.Commands() {
		if sub.Name() == "help" || sub.Name() == "completion" || sub.Hidden {
			continue
		}
		schema.Subcommands = append(schema.Subcommands, GenerateSchema(sub))
	}

	return schema
}

func skipFlag(f *pflag.Flag) bool {
	return f.Name == "help-json" || f.Name == "help" || f.Name == "version"
}

func extractFlags(cmd *cobra.Command) []FlagSchema {
	var flags []FlagSchema

	cmd.LocalFlags().VisitAll(func(f *pflag.Flag) {
		if skipFlag(f) {
			return
		}
		flags = append(flags, flagToSchema(f, false))
	})

	if !cmd.HasSubCommands() {
		cmd.InheritedFlags().VisitAll(func(f *pflag.Flag) {
			if skipFlag(f) {
				return
			}
			flags = append(flags, flagToSchema(f, true))
		})
	}

	return flags
}

func flagToSchema(f *pflag.Flag, inherited bool) FlagSchema {
	schema := FlagSchema{
		Name:        f.Name,
		Shorthand:   f.Shorthand,
		Type:        f.Value.Type(),
		Default:     f.DefValue,
		Description: f.Usage,
		Inherited:   inherited,
	}

	if vals, ok := f.Annotations[cobra.BashCompOneRequiredFlag]; ok && len(vals) > 0 && vals[0] == "true" {
		schema.Required = true
	}

	return schema
}

func oneRequiredGroups(cmd *cobra.Command) [][]string {
	seen := map[string]bool{}
	var groups [][]string
	cmd.LocalFlags().VisitAll(func(f *pflag.Flag) {
		for _, group := range f.Annotations[oneRequiredAnnotation] {
			if seen[group] {
				continue
			}
			seen[group] = true
			names := strings.Fields(group)
			sort.Strings(names)
			groups = append(groups, names)
		}
	})
	return groups
}

// WriteSchema writes the command schema as indented JSON.
func WriteSchema(w io.Writer, cmd *cobra.Command) error {
	output, err := json.MarshalIndent(GenerateSchema(cmd), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}
	_, err = fmt.Fprintln(w, string(output))
	return err
}

// PrintSchema outputs the command schema as JSON and exits.
func PrintSchema(cmd *cobra.Command) {
	if err := WriteSchema(os.Stdout, cmd); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating schema: %v\n", err)
		os.Exit(1)
	}
	os.Exit(0)
}

// AddHelpJSONFlag adds the --help-json flag to a command.
func AddHelpJSONFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().Bool("help-json", false, "Output command schema as JSON")
}

// CheckHelpJSON checks os.Args for --help-json and outputs schema if found.
// Call this before cmd.Execute() to handle the flag before arg validation.
func CheckHelpJSON(rootCmd *cobra.Command) {
	for i, arg := range os.Args {
		if arg == "--help-json" {
			PrintSchema(FindTargetCommand(rootCmd, os.Args[1:i]))
		}
	}
}

// FindTargetCommand resolves the subcommand named by the leading args.
func FindTargetCommand(cmd *cobra.Command, args []string) *cobra.Command {
	if len(args) == 0 {
		return cmd
	}

	for _, sub := range cmd.Commands() {
		if sub.Name() == args[0] || sub.HasAlias(args[0]) {
			return FindTargetCommand(sub, args[1:])
		}
	}

	return cmd
}
