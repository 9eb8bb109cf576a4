package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pulp-tools/pic/pkg/pulp"
	"github.com/spf13/viper"
)

// Output formats understood by the CLI.
const (
	OutputJSON = "json"
	OutputYAML = "yaml"
	OutputRaw  = "raw"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	Host               string        `mapstructure:"host"`
	Port               int           `mapstructure:"port"`
	PathPrefix         string        `mapstructure:"path_prefix"`
	User               string        `mapstructure:"user"`
	Password           string        `mapstructure:"password"`
	TimeoutSeconds     int64         `mapstructure:"timeout_seconds"`
	Timeout            time.Duration `mapstructure:"-"`
	InsecureSkipVerify bool          `mapstructure:"insecure_skip_verify"`

	JournalType            string        `mapstructure:"journal_type"`
	JournalPath            string        `mapstructure:"journal_path"`
	JournalTTLSeconds      int64         `mapstructure:"journal_ttl_seconds"`
	JournalCleanupSeconds  int64         `mapstructure:"journal_cleanup_interval_seconds"`
	JournalTTL             time.Duration `mapstructure:"-"`
	JournalCleanupInterval time.Duration `mapstructure:"-"`

	NotifiersFile string `mapstructure:"notifiers_file"`
	Output        string `mapstructure:"output"`
}

// Load reads configuration from environment variables (PIC_ prefix) and
// configs/.env.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "pic")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "warn")
	v.SetDefault("host", pulp.DefaultHost)
	v.SetDefault("port", pulp.DefaultPort)
	v.SetDefault("path_prefix", pulp.DefaultPathPrefix)
	v.SetDefault("user", pulp.DefaultUser)
	v.SetDefault("password", pulp.DefaultPassword)
	v.SetDefault("timeout_seconds", int64(pulp.DefaultTimeout/time.Second))
	v.SetDefault("insecure_skip_verify", false)
	v.SetDefault("journal_type", "none")
	v.SetDefault("journal_path", "./data/journal.db")
	v.SetDefault("journal_ttl_seconds", int64((7*24*time.Hour)/time.Second))
	v.SetDefault("journal_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))
	v.SetDefault("notifiers_file", "")
	v.SetDefault("output", OutputJSON)

	v.SetEnvPrefix("PIC")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Finalize normalizes string fields, validates numeric ones and derives the
// duration fields. It must be called again after fields are overridden.
func (c *Config) Finalize() error {
	c.Host = strings.TrimSpace(c.Host)
	c.JournalType = strings.ToLower(strings.TrimSpace(c.JournalType))
	c.Output = strings.ToLower(strings.TrimSpace(c.Output))

	if c.Host == "" {
		return fmt.Errorf("invalid host (must not be empty)")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d (must be between 1 and 65535)", c.Port)
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("invalid timeout_seconds (must be positive seconds)")
	}
	c.Timeout = time.Duration(c.TimeoutSeconds) * time.Second

	if c.JournalTTLSeconds <= 0 {
		return fmt.Errorf("invalid journal_ttl_seconds (must be positive seconds)")
	}
	if c.JournalCleanupSeconds <= 0 {
		return fmt.Errorf("invalid journal_cleanup_interval_seconds (must be positive seconds)")
	}
	c.JournalTTL = time.Duration(c.JournalTTLSeconds) * time.Second
	c.JournalCleanupInterval = time.Duration(c.JournalCleanupSeconds) * time.Second

	switch c.Output {
	case OutputJSON, OutputYAML, OutputRaw:
	default:
		return fmt.Errorf("invalid output %q (expected json, yaml or raw)", c.Output)
	}
	return nil
}

// Settings returns the connection settings for a pulp session.
func (c *Config) Settings() pulp.Settings {
	return pulp.Settings{
		Host:               c.Host,
		Port:               c.Port,
		PathPrefix:         c.PathPrefix,
		User:               c.User,
		Password:           c.Password,
		Timeout:            c.Timeout,
		InsecureSkipVerify: c.InsecureSkipVerify,
	}
}
