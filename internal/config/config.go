// Package config provides configuration management for Spellstacks.
// It uses Viper to load settings from files, environment variables, and CLI flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/vesaa/spellstacks/internal/models"
)

// Merge policy names accepted in merge.policy.
const (
	PolicyUnion  = "union"
	PolicyQuorum = "quorum"
)

// Config holds all runtime configuration for Spellstacks.
type Config struct {
	// ── Server ───────────────────────────────────────────────────────────────
	ServerHost string `mapstructure:"server_host"`
	Port       int    `mapstructure:"port"`
	// RootDir is the directory served over HTTP. Empty means the directory
	// containing the running executable.
	RootDir string `mapstructure:"root_dir"`
	// EmbeddedUI serves the compiled-in skeleton instead of RootDir.
	EmbeddedUI bool `mapstructure:"embedded_ui"`

	// ── Dictionary ───────────────────────────────────────────────────────────
	// WordsFile is relative to the served root unless absolute.
	WordsFile string `mapstructure:"words_file"`

	Fetch   FetchConfig     `mapstructure:"fetch"`
	Merge   MergeConfig     `mapstructure:"merge"`
	Sources []models.Source `mapstructure:"sources"`
}

// FetchConfig controls how remote word lists are downloaded.
type FetchConfig struct {
	Timeout      time.Duration `mapstructure:"timeout"`
	UserAgent    string        `mapstructure:"user_agent"`
	Parallelism  int           `mapstructure:"parallelism"` // 1 = sequential
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
}

// MergeConfig controls which fetched words are admitted to the dictionary.
type MergeConfig struct {
	Policy     string `mapstructure:"policy"` // "union" or "quorum"
	MinSources int    `mapstructure:"min_sources"`
	MaxWordLen int    `mapstructure:"max_word_len"`
	SampleSize int    `mapstructure:"sample_size"`
	DryRun     bool   `mapstructure:"dry_run"`
	ReportFile string `mapstructure:"report_file"`
}

// DefaultSources are the public Scrabble lists merged when no sources are configured.
var DefaultSources = []models.Source{
	{
		Name: "NWL2023",
		URL:  "https://raw.githubusercontent.com/scrabblewords/scrabblewords/main/words/North-American/NWL2023.txt",
		Mode: models.ParseFirstToken,
	},
	{
		Name: "CSW21",
		URL:  "https://raw.githubusercontent.com/scrabblewords/scrabblewords/main/words/British/CSW21.txt",
		Mode: models.ParseFirstToken,
	},
	{
		Name: "ENABLE",
		URL:  "https://raw.githubusercontent.com/dolph/dictionary/master/enable1.txt",
		Mode: models.ParseWholeLine,
	},
}

// Load reads config from file (./config.yaml or ~/.spellstacks/config.yaml,
// or path when non-empty) and falls back to smart defaults. Environment
// variables with prefix SPELLSTACKS_ override file values.
func Load(path string) (*Config, error) {
	v := viper.New()

	// --- Smart Defaults ---
	v.SetDefault("server_host", "0.0.0.0")
	v.SetDefault("port", 8000)
	v.SetDefault("root_dir", "")
	v.SetDefault("embedded_ui", false)
	v.SetDefault("words_file", filepath.Join("data", "words.txt"))

	v.SetDefault("fetch.timeout", 30*time.Second)
	v.SetDefault("fetch.user_agent", "Mozilla/5.0")
	v.SetDefault("fetch.parallelism", 1)
	v.SetDefault("fetch.max_body_bytes", 64<<20)

	v.SetDefault("merge.policy", PolicyQuorum)
	v.SetDefault("merge.min_sources", 2)
	v.SetDefault("merge.max_word_len", models.MaxWordLen)
	v.SetDefault("merge.sample_size", 20)
	v.SetDefault("merge.dry_run", false)
	v.SetDefault("merge.report_file", "")

	// --- Config file ---
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.spellstacks")
		if err := v.ReadInConfig(); err != nil {
			// config file is optional; ignore "not found" errors
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	// --- Environment Variables ---
	v.SetEnvPrefix("SPELLSTACKS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if len(cfg.Sources) == 0 {
		cfg.Sources = append([]models.Source(nil), DefaultSources...)
	}
	return &cfg, nil
}

// Validate reports the first setting that cannot be used as-is.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range 1-65535", c.Port)
	}
	switch c.Merge.Policy {
	case PolicyUnion, PolicyQuorum:
	default:
		return fmt.Errorf("unknown merge policy %q (use %q or %q)", c.Merge.Policy, PolicyUnion, PolicyQuorum)
	}
	if c.Merge.MinSources < 1 {
		return fmt.Errorf("merge.min_sources must be at least 1, got %d", c.Merge.MinSources)
	}
	if c.Merge.MaxWordLen < 1 {
		return fmt.Errorf("merge.max_word_len must be at least 1, got %d", c.Merge.MaxWordLen)
	}
	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("fetch.timeout must be positive, got %s", c.Fetch.Timeout)
	}
	if len(c.Sources) == 0 {
		return fmt.Errorf("no word sources configured")
	}
	for i, s := range c.Sources {
		if s.URL == "" {
			return fmt.Errorf("source %d (%s): url is required", i, s.Name)
		}
		if !s.Mode.Valid() {
			return fmt.Errorf("source %d (%s): unknown parse mode %q", i, s.Name, s.Mode)
		}
	}
	return nil
}

// ResolveRoot returns the absolute directory served over HTTP.
func (c *Config) ResolveRoot() (string, error) {
	if c.RootDir != "" {
		return filepath.Abs(c.RootDir)
	}
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locating executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

// WordsPath returns the dictionary file location, anchoring a relative
// WordsFile at the served root so the server picks up what the merger writes.
func (c *Config) WordsPath() (string, error) {
	if filepath.IsAbs(c.WordsFile) {
		return c.WordsFile, nil
	}
	root, err := c.ResolveRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, c.WordsFile), nil
}
