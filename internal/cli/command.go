package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idelchi/dirsize/internal/config"
	"github.com/idelchi/dirsize/internal/integration"
)

// CLI represents the command-line interface.
type CLI struct {
	version string
	stdout  io.Writer
	stderr  io.Writer
}

// New creates a new CLI instance with the given version.
func New(version string) CLI {
	return CLI{version: version, stdout: os.Stdout, stderr: os.Stderr}
}

// Command builds the root command.
func (c CLI) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dirsize [flags] [path]",
		Short: "List a directory with the total size of every entry",
		Long: heredoc.Doc(`
			dirsize lists the entries of a directory together with their sizes.

			Files are sized immediately. The size of every subdirectory is computed in
			the background, one walk per entry, and reported as soon as it is known.
			Unreadable branches deep in the tree count as zero; an unreadable target
			is an error.

			Positional Arguments:
			  path    Directory to list. Defaults to current directory if not specified.

			Every flag can also be set through the environment with the DIRSIZE_ prefix
			(for example DIRSIZE_WORKERS=4) or in a file passed with --config.

			The '-i' flag outputs a zsh function that browses sizes with 'fzf'.
		`),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			options, err := config.Load(viper.New(), cmd.Flags(), args)
			if err != nil {
				return err
			}

			return c.run(cmd.Context(), options)
		},
	}

	config.Register(cmd.Flags())
	cmd.Flags().SortFlags = false
	cmd.SetOut(c.stdout)
	cmd.SetErr(c.stderr)

	return cmd
}

// Execute runs the CLI with the process arguments.
func (c CLI) Execute(ctx context.Context) error {
	return c.Command().ExecuteContext(ctx)
}

func (c CLI) run(ctx context.Context, options config.Options) error {
	if options.Version {
		fmt.Fprintln(c.stdout, c.version)

		return nil
	}

	if options.Integration {
		rendered, err := integration.Render()
		if err != nil {
			return fmt.Errorf("rendering integration script: %w", err)
		}

		fmt.Fprintln(c.stdout, rendered)

		return nil
	}

	return logic(ctx, options, c.stdout, c.stderr)
}
