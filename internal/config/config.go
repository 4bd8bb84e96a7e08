package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"
)

// ErrMissingToken is returned when a GitHub mode runs without a token.
var ErrMissingToken = errors.New("no GitHub token: set GITHUB_TOKEN or the github-token input")

// Formats lists the supported output formats.
var Formats = []string{"text", "json", "markdown", "sarif"}

// Config represents the premerge configuration.
type Config struct {
	GithubToken     string   `mapstructure:"githubToken" yaml:"githubToken,omitempty"`
	GithubAPIURL    string   `mapstructure:"githubAPIURL" yaml:"githubAPIURL"`
	ScanMode        string   `mapstructure:"scanMode" yaml:"scanMode"`
	FailOnFindings  bool     `mapstructure:"-" yaml:"failOnFindings"`
	ExcludePatterns []string `mapstructure:"excludePatterns" yaml:"excludePatterns"`
	SkipPaths       []string `mapstructure:"skipPaths" yaml:"skipPaths"`
	Format          string   `mapstructure:"format" yaml:"format"`
	RulesFile       string   `mapstructure:"rulesFile" yaml:"rulesFile,omitempty"`
	MaxFileBytes    int      `mapstructure:"maxFileBytes" yaml:"maxFileBytes"`
	Workers         int      `mapstructure:"workers" yaml:"workers"`
	Comment         bool     `mapstructure:"comment" yaml:"comment"`
	MaskMatches     bool     `mapstructure:"maskMatches" yaml:"maskMatches"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		GithubAPIURL:    "https://api.github.com",
		ScanMode:        "pr-diff",
		FailOnFindings:  true,
		ExcludePatterns: []string{},
		SkipPaths:       []string{},
		Format:          "text",
		MaxFileBytes:    1 << 20,
		Workers:         4,
		Comment:         true,
	}
}

// envBindings maps each key to the environment variables that can set it,
// highest priority first. INPUT_* names are how GitHub Actions passes inputs.
var envBindings = map[string][]string{
	"githubToken":     {"PREMERGE_GITHUB_TOKEN", "INPUT_GITHUB-TOKEN", "GITHUB_TOKEN"},
	"githubAPIURL":    {"PREMERGE_GITHUB_API_URL", "GITHUB_API_URL"},
	"scanMode":        {"PREMERGE_SCAN_MODE", "INPUT_SCAN-MODE"},
	"failOnFindings":  {"PREMERGE_FAIL_ON_FINDINGS", "INPUT_FAIL-ON-FINDINGS"},
	"excludePatterns": {"PREMERGE_EXCLUDE_PATTERNS", "INPUT_EXCLUDE-PATTERNS"},
	"skipPaths":       {"PREMERGE_SKIP_PATHS"},
	"format":          {"PREMERGE_FORMAT"},
	"rulesFile":       {"PREMERGE_RULES_FILE"},
	"maxFileBytes":    {"PREMERGE_MAX_FILE_BYTES"},
	"workers":         {"PREMERGE_WORKERS"},
	"comment":         {"PREMERGE_COMMENT"},
	"maskMatches":     {"PREMERGE_MASK_MATCHES"},
}

// Keys returns every config key, sorted.
func Keys() []string {
	keys := make([]string, 0, len(envBindings))
	for k := range envBindings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ConfigDir returns the platform-appropriate config directory for premerge.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "premerge"), nil
	}
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "premerge"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "premerge"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "premerge"), nil
	default:
		return filepath.Join(home, ".config", "premerge"), nil
	}
}

// ConfigPath returns the full path to the default config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// resolvePath expands path, or returns the default config path if empty.
func resolvePath(path string) (string, error) {
	if path == "" {
		return ConfigPath()
	}
	return homedir.Expand(path)
}

// Load builds the effective config by merging defaults <- file <- env <-
// overrides. path selects the config file; empty means the default location,
// which may be absent. The overrides map comes from CLI flags (only set
// values should be present).
func Load(path string, overrides map[string]string) (Config, error) {
	explicit := path != ""
	path, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	v := viper.New()
	setDefaults(v)
	for key, envs := range envBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return Config{}, fmt.Errorf("binding env for %s: %w", key, err)
		}
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	for key, value := range overrides {
		if _, ok := envBindings[key]; !ok {
			return Config{}, fmt.Errorf("unknown config key: %s", key)
		}
		if value != "" {
			v.Set(key, value)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	cfg.FailOnFindings = parseFailOnFindings(v.GetString("failOnFindings"))
	cfg.ExcludePatterns = cleanList(cfg.ExcludePatterns)
	cfg.SkipPaths = cleanList(cfg.SkipPaths)
	if cfg.RulesFile != "" {
		if cfg.RulesFile, err = homedir.Expand(cfg.RulesFile); err != nil {
			return Config{}, err
		}
	}
	return cfg, cfg.Validate()
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("githubToken", d.GithubToken)
	v.SetDefault("githubAPIURL", d.GithubAPIURL)
	v.SetDefault("scanMode", d.ScanMode)
	v.SetDefault("failOnFindings", d.FailOnFindings)
	v.SetDefault("excludePatterns", d.ExcludePatterns)
	v.SetDefault("skipPaths", d.SkipPaths)
	v.SetDefault("format", d.Format)
	v.SetDefault("rulesFile", d.RulesFile)
	v.SetDefault("maxFileBytes", d.MaxFileBytes)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("comment", d.Comment)
	v.SetDefault("maskMatches", d.MaskMatches)
}

// parseFailOnFindings treats anything but an explicit false value as true,
// so a typo never silently disables the check.
func parseFailOnFindings(s string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return true
	}
	return b
}

// cleanList trims entries, splitting any that still contain commas, and
// drops empties.
func cleanList(items []string) []string {
	out := []string{}
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Validate checks values that would otherwise fail late.
func (c Config) Validate() error {
	if !isFormat(c.Format) {
		return fmt.Errorf("invalid format %q (want one of %s)", c.Format, strings.Join(Formats, ", "))
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.MaxFileBytes < 0 {
		return fmt.Errorf("maxFileBytes must not be negative, got %d", c.MaxFileBytes)
	}
	return nil
}

func isFormat(f string) bool {
	for _, known := range Formats {
		if f == known {
			return true
		}
	}
	return false
}

// RequireToken returns ErrMissingToken if no GitHub token is configured.
func (c Config) RequireToken() error {
	if strings.TrimSpace(c.GithubToken) == "" {
		return ErrMissingToken
	}
	return nil
}

// LoadFile reads a config file on top of the defaults. A missing file yields
// the defaults and no error.
func LoadFile(path string) (Config, error) {
	path, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Save writes the config to path, or to the default location if empty.
func Save(path string, cfg Config) (string, error) {
	path, err := resolvePath(path)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshaling config: %w", err)
	}
	// The file may hold a token.
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}
	return path, nil
}

// SetField sets a single config field by key name. Returns error if key is unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "githubToken":
		cfg.GithubToken = value
	case "githubAPIURL":
		cfg.GithubAPIURL = value
	case "scanMode":
		cfg.ScanMode = value
	case "failOnFindings":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("failOnFindings must be a boolean: %w", err)
		}
		cfg.FailOnFindings = b
	case "excludePatterns":
		cfg.ExcludePatterns = cleanList([]string{value})
	case "skipPaths":
		cfg.SkipPaths = cleanList([]string{value})
	case "format":
		if !isFormat(value) {
			return fmt.Errorf("invalid format %q (want one of %s)", value, strings.Join(Formats, ", "))
		}
		cfg.Format = value
	case "rulesFile":
		cfg.RulesFile = value
	case "maxFileBytes":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxFileBytes must be an integer: %w", err)
		}
		cfg.MaxFileBytes = n
	case "workers":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("workers must be an integer: %w", err)
		}
		cfg.Workers = n
	case "comment":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("comment must be a boolean: %w", err)
		}
		cfg.Comment = b
	case "maskMatches":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("maskMatches must be a boolean: %w", err)
		}
		cfg.MaskMatches = b
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	if c.GithubToken != "" {
		c.GithubToken = "********"
	}
	return c
}
