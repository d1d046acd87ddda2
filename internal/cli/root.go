package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/samirrijal/gridgeo/internal/pkg/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the gridgeo CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "gridgeo",
		Short:         "gridgeo - line position import tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		Long:          "Reconstruct line and dangling line positions from coordinate records, convert record files, and load them into the database.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			level := "warn"
			if opts.Verbose {
				level = "debug"
			}
			logging.SetupWriter(cmd.ErrOrStderr(), level, "text")
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewConvertCommand(opts))
	cmd.AddCommand(NewLoadCommand(opts))

	return cmd
}
