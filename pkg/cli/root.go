// Package cli implements the relnorm command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"relnorm/internal/config"
	"relnorm/internal/ingest"
)

var (
	version = "dev"
	commit  = "none"
)

// settings is the resolved configuration for one invocation. Precedence is
// flag > env > profile > default.
type settings struct {
	cfg    *config.Config
	logger *slog.Logger
}

// Execute runs the CLI.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		output, _ := rootCmd.PersistentFlags().GetString("output")
		if output == "json" {
			errObj := map[string]any{
				"error": err.Error(),
			}
			var srcErr *ingest.SourceError
			if errors.As(err, &srcErr) {
				errObj["path"] = srcErr.Path
			}
			_ = printJSON(os.Stdout, errObj)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var (
		output    string
		profile   string
		logLevel  string
		logFormat string
	)
	s := &settings{}

	rootCmd := &cobra.Command{
		Use:           "relnorm",
		Short:         "Normalize tabular data into relational tables",
		Long:          "relnorm reads spreadsheet-like files, brings them to first and second normal form, and renders SQL for the resulting tables.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadDotEnv(".env"); err != nil {
				return err
			}
			saved, err := loadUserConfigOrEmpty()
			if err != nil {
				return err
			}
			p := saved.ActiveProfile(profile)
			if err := p.exportEnv(); err != nil {
				return err
			}

			cfg, err := config.LoadFromEnv()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			if !cmd.Flags().Changed("output") {
				if v := os.Getenv("RELNORM_OUTPUT"); v != "" {
					output = v
				} else if p.Output != "" {
					output = p.Output
				}
			}
			if err := validateOutputFormat(output); err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if cmd.Flags().Changed("log-format") {
				cfg.LogFormat = logFormat
			}

			logger, err := newLogger(cmd.ErrOrStderr(), cfg.SlogLevel(), cfg.LogFormat)
			if err != nil {
				return err
			}
			for _, w := range cfg.Warnings {
				logger.Warn("config", "warning", w)
			}
			s.cfg = cfg
			s.logger = logger
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "table", "Output format (table, json)")
	rootCmd.PersistentFlags().StringVarP(&profile, "profile", "p", "", "Config profile to use")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text, json)")

	rootCmd.AddCommand(newNormalizeCmd(s))
	rootCmd.AddCommand(newKeysCmd(s))
	rootCmd.AddCommand(newApplyCmd(s))
	rootCmd.AddCommand(newRunsCmd(s))
	rootCmd.AddCommand(newConfigCmd(s))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

func newCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
	}
	return cmd
}
