package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
)

const appName = "tarotluna"

// Config represents the application configuration
type Config struct {
	APIURL             string   `toml:"api_url"`
	DefaultReadingType string   `toml:"default_reading_type"`
	DefaultCardCount   int      `toml:"default_card_count"`
	RulesAgreed        bool     `toml:"rules_agreed"`
	Haptics            bool     `toml:"haptics"`
	DeckPath           string   `toml:"deck_path,omitempty"`
	Denylist           []string `toml:"denylist,omitempty"`
	PaymentReturn      string   `toml:"payment_return,omitempty"`

	// Set from the environment only
	InitData    string        `toml:"-"`
	LaunchURL   string        `toml:"-"`
	LogLevel    string        `toml:"-"`
	HTTPTimeout time.Duration `toml:"-"`
}

// Env holds the TAROT_* environment overrides
type Env struct {
	APIURL      string        `envconfig:"API_URL"`
	InitData    string        `envconfig:"INIT_DATA"`
	LaunchURL   string        `envconfig:"LAUNCH_URL"`
	LogLevel    string        `envconfig:"LOG_LEVEL" default:"info"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"60s"`
}

// Default returns the configuration written on first use
func Default() *Config {
	return &Config{
		DefaultReadingType: "classic",
		DefaultCardCount:   3,
		Haptics:            true,
	}
}

// GetXDGConfigHome returns XDG_CONFIG_HOME or default path
func GetXDGConfigHome() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return xdgConfig
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config")
}

// GetXDGCacheHome returns XDG_CACHE_HOME or default path
func GetXDGCacheHome() string {
	if xdgCache := os.Getenv("XDG_CACHE_HOME"); xdgCache != "" {
		return xdgCache
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".cache")
}

// GetConfigFilePath returns the path to the config file
func GetConfigFilePath() string {
	return filepath.Join(GetXDGConfigHome(), appName, "config.toml")
}

// GetCacheDir returns the cache directory of rendered card art
func GetCacheDir() string {
	return filepath.Join(GetXDGCacheHome(), appName)
}

// LoadConfig loads the config file and applies the environment overrides
func LoadConfig() (*Config, error) {
	cfg, err := LoadFile(GetConfigFilePath())
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads the config at path, creating it with defaults if missing
func LoadFile(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefaultConfig(path)
	}

	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("error decoding config file: %w", err)
	}
	return cfg, nil
}

// createDefaultConfig creates a default config file
func createDefaultConfig(path string) (*Config, error) {
	cfg := Default()
	if err := Save(path, cfg); err != nil {
		return nil, err
	}
	log.WithField("path", path).Debug("Created default config")
	return cfg, nil
}

// Save writes cfg to path as TOML
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating config file: %w", err)
	}
	defer file.Close()

	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return fmt.Errorf("error encoding config: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from TAROT_* environment variables
func (c *Config) ApplyEnv() error {
	var env Env
	if err := envconfig.Process("tarot", &env); err != nil {
		return fmt.Errorf("error reading environment: %w", err)
	}

	if env.APIURL != "" {
		c.APIURL = strings.TrimSpace(env.APIURL)
	}
	c.InitData = env.InitData
	c.LaunchURL = env.LaunchURL
	c.LogLevel = env.LogLevel
	c.HTTPTimeout = env.HTTPTimeout
	return nil
}

// Validate checks the merged configuration
func (c *Config) Validate() error {
	if c.DefaultCardCount < 1 || c.DefaultCardCount > 5 {
		return fmt.Errorf("default_card_count must be between 1 and 5, got %d", c.DefaultCardCount)
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("TAROT_HTTP_TIMEOUT must not be negative")
	}
	if c.LogLevel != "" {
		if _, err := log.ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
		}
	}
	return nil
}

// Level returns the logrus level, info when unset
func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// Store persists the local preferences of the user
type Store struct {
	path string
}

// NewStore returns a store backed by the config file at path
func NewStore(path string) *Store {
	return &Store{path: path}
}

// RulesAgreed reports whether the user accepted the rules on this device
func (s *Store) RulesAgreed() (bool, error) {
	cfg, err := LoadFile(s.path)
	if err != nil {
		return false, err
	}
	return cfg.RulesAgreed, nil
}

// SetRulesAgreed updates the rules-agreed flag in the config file
func (s *Store) SetRulesAgreed(agreed bool) error {
	cfg, err := LoadFile(s.path)
	if err != nil {
		return err
	}
	if cfg.RulesAgreed == agreed {
		return nil
	}
	cfg.RulesAgreed = agreed
	return Save(s.path, cfg)
}

// MarkPaymentReturn records the launch URL of a payment return. It reports
// false when that URL was already handled so the marker fires only once.
func (s *Store) MarkPaymentReturn(launchURL string) (bool, error) {
	cfg, err := LoadFile(s.path)
	if err != nil {
		return false, err
	}
	if cfg.PaymentReturn == launchURL {
		return false, nil
	}
	cfg.PaymentReturn = launchURL
	if err := Save(s.path, cfg); err != nil {
		return false, err
	}
	return true, nil
}
