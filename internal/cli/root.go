// Package cli implements the drawing-prompter command line using Cobra.
package cli

import (
	"fmt"

	"drawing-prompter/internal/config"
	"drawing-prompter/internal/logging"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	cfgFile   string
	logLevel  string
	logFormat string

	cfg *config.Config
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "drawing-prompter",
		Short: "Drawing prompts, ideas and a shared canvas",
		Long: `drawing-prompter serves the drawing page with its canvas sessions,
gallery and themes, and suggests drawing ideas gathered from the web,
a language model or the built-in catalog.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default is ./config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "override log format (console, json)")

	cmd.AddCommand(
		newServeCommand(opts),
		newIdeasCommand(opts),
		newPromptsCommand(opts),
	)
	return cmd
}

func (o *rootOptions) load(cmd *cobra.Command) error {
	loader := config.NewLoader()
	if o.cfgFile != "" {
		loader.SetConfigFile(o.cfgFile)
	}
	cfg, err := loader.Load()
	if err != nil {
		return err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Log.Format = o.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cmd.ErrOrStderr(),
	})
	if used := loader.ConfigFileUsed(); used != "" {
		log := logging.Component("cli")
		log.Debug().Str("file", used).Msg("config loaded")
	}
	o.cfg = cfg
	return nil
}

// Execute runs the command line with the process arguments.
func Execute() error {
	return NewRootCommand().Execute()
}
