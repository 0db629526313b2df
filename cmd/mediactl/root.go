package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/brueckenwerk/cms/internal/app"
	"github.com/brueckenwerk/cms/internal/config"
	"github.com/brueckenwerk/cms/internal/logging"
	"github.com/spf13/cobra"
)

// cli carries the lazily opened dependencies shared by all commands.
type cli struct {
	app     *app.App
	cfg     *config.Config
	out     io.Writer
	jsonOut bool
}

// newRootCommand builds the command tree. A non-nil preset skips loading
// configuration and connecting backends.
func newRootCommand(preset *app.App) *cobra.Command {
	c := &cli{app: preset}
	if preset != nil {
		c.cfg = preset.Config
	}

	root := &cobra.Command{
		Use:   "mediactl",
		Short: "Media library and content store administration",
		Long: `mediactl inspects and maintains the media library of the website:
list files with their usage, delete unused files, toggle noindex, report orphans,
initialize the database schema and create dashboard accounts.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			c.out = cmd.OutOrStdout()
			debug, _ := cmd.Flags().GetBool("debug")
			level := "warn"
			if debug {
				level = "debug"
			}
			logging.Setup(level, true)
		},
	}
	root.PersistentFlags().Bool("debug", false, "Enable debug logging")
	root.PersistentFlags().BoolVar(&c.jsonOut, "json", false, "Print machine-readable JSON")

	root.AddCommand(newFilesCommand(c))
	root.AddCommand(newSchemaCommand(c))
	root.AddCommand(newUsersCommand(c))
	return root
}

func (c *cli) config(ctx context.Context) (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

func (c *cli) open(ctx context.Context) (*app.App, error) {
	if c.app != nil {
		return c.app, nil
	}
	cfg, err := c.config(ctx)
	if err != nil {
		return nil, err
	}
	a, err := app.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	c.app = a
	return a, nil
}

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *cli) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}
