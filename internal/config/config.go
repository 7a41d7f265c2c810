// Package config handles relnorm configuration and environment loading.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/joho/godotenv"
)

// Defaults applied by LoadFromEnv.
const (
	DefaultTablePrefix = "EXCEL_DATA"
	DefaultOutputDir   = "out"
	DefaultDelimiter   = ","
)

// Config holds the settings shared by every relnorm command.
type Config struct {
	LogLevel  string // log level: debug, info, warn, error (default "info")
	LogFormat string // log format: text or json (default "text")
	Env       string // environment: "development" (default) or "production"

	TablePrefix         string   // prefix for rendered table names (default EXCEL_DATA)
	OutputDir           string   // directory for rendered scripts (default "out")
	CSVDelimiter        rune     // field separator for .csv input (default ',')
	MultiValueDelimiter string   // separator of multi-valued cells (default ",")
	Heuristics          []string // enabled rule names; empty means every rule
	MaxKeyAttributes    int      // cap on attributes considered for key search; 0 is unlimited

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	return ParseLevel(c.LogLevel)
}

// ParseLevel maps a level name to an slog.Level. Unknown names are info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsProduction returns true when running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// LoadFromEnv loads configuration from environment variables.
// Malformed optional values fall back to their defaults with a warning;
// in production they are errors.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		LogLevel:            os.Getenv("LOG_LEVEL"),
		LogFormat:           strings.ToLower(os.Getenv("LOG_FORMAT")),
		Env:                 os.Getenv("ENV"),
		TablePrefix:         strings.TrimSpace(os.Getenv("TABLE_PREFIX")),
		OutputDir:           os.Getenv("OUTPUT_DIR"),
		MultiValueDelimiter: os.Getenv("MULTI_VALUE_DELIMITER"),
	}

	if v := os.Getenv("CSV_DELIMITER"); v != "" {
		r, ok := parseDelimiter(v)
		if ok {
			cfg.CSVDelimiter = r
		} else {
			cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("CSV_DELIMITER %q is not a single character; using %q", v, DefaultDelimiter))
		}
	}
	if v := os.Getenv("HEURISTICS"); v != "" {
		names := strings.Split(v, ",")
		for i := range names {
			names[i] = strings.TrimSpace(names[i])
		}
		cfg.Heuristics = compactNonEmpty(names)
	}
	if v := os.Getenv("MAX_KEY_ATTRIBUTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("MAX_KEY_ATTRIBUTES %q is not a non-negative integer; key search is unlimited", v))
		} else {
			cfg.MaxKeyAttributes = n
		}
	}

	// Defaults
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be \"text\" or \"json\", got %q", cfg.LogFormat)
	}
	if cfg.TablePrefix == "" {
		cfg.TablePrefix = DefaultTablePrefix
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}
	if cfg.CSVDelimiter == 0 {
		cfg.CSVDelimiter = ','
	}
	if cfg.MultiValueDelimiter == "" {
		cfg.MultiValueDelimiter = DefaultDelimiter
	}

	// Production mode: configuration mistakes are fatal errors.
	if cfg.IsProduction() && len(cfg.Warnings) > 0 {
		return nil, fmt.Errorf("invalid configuration in production (ENV=production): %s", strings.Join(cfg.Warnings, "; "))
	}

	return cfg, nil
}

// parseDelimiter accepts a single character or the names "tab" and "\t".
func parseDelimiter(s string) (rune, bool) {
	switch strings.ToLower(s) {
	case "tab", `\t`:
		return '\t', true
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(s)
	if r == '\r' || r == '\n' || r == '"' || r == utf8.RuneError {
		return 0, false
	}
	return r, true
}

func compactNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// LoadDotEnv reads a .env file and sets any variables not already in the
// environment. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	vars, err := godotenv.Read(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	for key, value := range vars {
		// Environment wins over the file.
		if _, set := os.LookupEnv(key); set {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("setenv %s: %w", key, err)
		}
	}
	return nil
}
