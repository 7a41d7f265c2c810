package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"relnorm/internal/domain"
	"relnorm/internal/heuristic"
)

func newConfigCmd(s *settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage relnorm configuration profiles",
	}

	cmd.AddCommand(newConfigViewCmd(s))
	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigUseProfileCmd())

	return cmd
}

// effectiveConfig is what config view prints: the saved profiles plus the
// settings this invocation resolved from env and the active profile.
type effectiveConfig struct {
	Path           string             `yaml:"path" json:"path"`
	CurrentProfile string             `yaml:"current-profile" json:"currentProfile"`
	Profiles       map[string]Profile `yaml:"profiles" json:"profiles"`
	Effective      map[string]string  `yaml:"effective" json:"effective"`
}

func newConfigViewCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:     "view",
		Aliases: []string{"show"},
		Short:   "Display saved profiles and the effective settings",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			saved, err := loadUserConfigOrEmpty()
			if err != nil {
				return err
			}
			cfg := s.cfg
			view := effectiveConfig{
				Path:           ConfigPath(),
				CurrentProfile: saved.CurrentProfile,
				Profiles:       saved.Profiles,
				Effective: map[string]string{
					"table-prefix":          cfg.TablePrefix,
					"output-dir":            cfg.OutputDir,
					"csv-delimiter":         string(cfg.CSVDelimiter),
					"multi-value-delimiter": cfg.MultiValueDelimiter,
					"log-level":             cfg.LogLevel,
					"log-format":            cfg.LogFormat,
					"max-key-attributes":    fmt.Sprint(cfg.MaxKeyAttributes),
				},
			}

			out := cmd.OutOrStdout()
			if getOutputFormat(cmd) == "json" {
				return printJSON(out, view)
			}
			data, err := yaml.Marshal(view)
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			_, _ = fmt.Fprint(out, string(data))
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	var (
		name       string
		prefix     string
		outputDir  string
		output     string
		logLevel   string
		delimiter  string
		heuristics []string
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Create or update a configuration profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("format") {
				if err := validateOutputFormat(output); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("heuristics") {
				if _, err := heuristic.ByName(heuristics...); err != nil {
					return err
				}
			}

			cfg, err := loadUserConfigOrEmpty()
			if err != nil {
				return err
			}
			p := cfg.Profiles[name]
			if cmd.Flags().Changed("prefix") {
				p.Prefix = prefix
			}
			if cmd.Flags().Changed("output-dir") {
				p.OutputDir = outputDir
			}
			if cmd.Flags().Changed("format") {
				p.Output = output
			}
			if cmd.Flags().Changed("level") {
				p.LogLevel = logLevel
			}
			if cmd.Flags().Changed("delimiter") {
				p.Delimiter = delimiter
			}
			if cmd.Flags().Changed("heuristics") {
				p.Heuristics = heuristics
			}
			cfg.Profiles[name] = p

			if err := SaveUserConfig(cfg); err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), map[string]string{
					"status":  "ok",
					"profile": name,
					"path":    ConfigPath(),
				})
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Profile %q saved to %s\n", name, ConfigPath())
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Profile name (required)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Table name prefix")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory for rendered scripts")
	cmd.Flags().StringVar(&output, "format", "", "Default output format (table, json)")
	cmd.Flags().StringVar(&logLevel, "level", "", "Default log level")
	cmd.Flags().StringVar(&delimiter, "delimiter", "", "Multi-value cell delimiter")
	cmd.Flags().StringSliceVar(&heuristics, "heuristics", nil, "Heuristic rules to enable")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newConfigUseProfileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use-profile <name>",
		Short: "Set the active configuration profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadUserConfig()
			if err != nil {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "No configuration found at %s\n", ConfigPath())
				return fmt.Errorf("no config found: %w", err)
			}
			name := args[0]
			if _, ok := cfg.Profiles[name]; !ok {
				return domain.ErrNotFound("profile %q not found", name)
			}
			cfg.CurrentProfile = name
			if err := SaveUserConfig(cfg); err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), map[string]string{
					"status":         "ok",
					"active_profile": name,
				})
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Active profile set to %q\n", name)
			return nil
		},
	}
}
