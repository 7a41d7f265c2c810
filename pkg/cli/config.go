package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// configEnvVar overrides the location of the user config file.
const configEnvVar = "RELNORM_CONFIG"

// UserConfig is the saved set of named profiles.
type UserConfig struct {
	CurrentProfile string             `yaml:"current-profile"`
	Profiles       map[string]Profile `yaml:"profiles"`
}

// Profile holds per-project defaults. Empty fields leave the environment or
// built-in default in place.
type Profile struct {
	Prefix     string   `yaml:"prefix,omitempty" json:"prefix,omitempty"`
	OutputDir  string   `yaml:"output-dir,omitempty" json:"outputDir,omitempty"`
	Output     string   `yaml:"output,omitempty" json:"output,omitempty"`
	LogLevel   string   `yaml:"log-level,omitempty" json:"logLevel,omitempty"`
	Delimiter  string   `yaml:"delimiter,omitempty" json:"delimiter,omitempty"`
	Heuristics []string `yaml:"heuristics,omitempty" json:"heuristics,omitempty"`
}

// ActiveProfile returns the override profile if one is named, else the
// current one. Unknown names yield an empty profile.
func (c *UserConfig) ActiveProfile(override string) Profile {
	name := c.CurrentProfile
	if override != "" {
		name = override
	}
	return c.Profiles[name]
}

// env lists the variables config.LoadFromEnv reads that this profile sets.
func (p Profile) env() map[string]string {
	vars := map[string]string{
		"TABLE_PREFIX":          p.Prefix,
		"OUTPUT_DIR":            p.OutputDir,
		"LOG_LEVEL":             p.LogLevel,
		"MULTI_VALUE_DELIMITER": p.Delimiter,
		"HEURISTICS":            strings.Join(p.Heuristics, ","),
	}
	for k, v := range vars {
		if v == "" {
			delete(vars, k)
		}
	}
	return vars
}

// exportEnv sets the profile's variables that the environment leaves
// empty, placing the profile below env in precedence.
func (p Profile) exportEnv() error {
	for k, v := range p.env() {
		if os.Getenv(k) != "" {
			continue
		}
		if err := os.Setenv(k, v); err != nil {
			return fmt.Errorf("profile %s: %w", k, err)
		}
	}
	return nil
}

// ConfigPath returns $RELNORM_CONFIG, or ~/.relnorm/config.yaml.
func ConfigPath() string {
	if p := os.Getenv(configEnvVar); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".relnorm", "config.yaml")
	}
	return filepath.Join(home, ".relnorm", "config.yaml")
}

// LoadUserConfig reads the config file at ConfigPath.
func LoadUserConfig() (*UserConfig, error) {
	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg UserConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", ConfigPath(), err)
	}
	if cfg.Profiles == nil {
		cfg.Profiles = map[string]Profile{}
	}
	return &cfg, nil
}

// loadUserConfigOrEmpty is LoadUserConfig with a missing file read as an
// empty config whose current profile is "default".
func loadUserConfigOrEmpty() (*UserConfig, error) {
	cfg, err := LoadUserConfig()
	if errors.Is(err, os.ErrNotExist) {
		return &UserConfig{CurrentProfile: "default", Profiles: map[string]Profile{}}, nil
	}
	return cfg, err
}

// SaveUserConfig writes cfg to ConfigPath.
func SaveUserConfig(cfg *UserConfig) error {
	path := ConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}
