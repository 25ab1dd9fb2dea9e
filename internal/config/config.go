package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Version is set at build time via -ldflags "-X github.com/wcurl/wcurl/internal/config.Version=X.Y.Z".
var Version = "dev"

// EnvPrefix is the prefix for environment variable overrides (WCURL_DOWNLOAD_PARALLEL, ...).
const EnvPrefix = "WCURL"

// Config holds all application configuration.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Download  DownloadConfig  `mapstructure:"download"`
	Transport TransportConfig `mapstructure:"transport"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Path   string `mapstructure:"path"`
}

// DownloadConfig holds settings for a download run.
type DownloadConfig struct {
	Dir            string `mapstructure:"dir"`
	Parallel       int    `mapstructure:"parallel"`
	Retry          int    `mapstructure:"retry"`
	DecodeFilename bool   `mapstructure:"decode_filename"`
}

// TransportConfig describes the external download tool.
type TransportConfig struct {
	Binary    string `mapstructure:"binary"`
	UserAgent string `mapstructure:"user_agent"`
}

// flagKeys maps CLI flag names to config keys.
var flagKeys = map[string]string{
	"parallel":   "download.parallel",
	"dir":        "download.dir",
	"retry":      "download.retry",
	"curl":       "transport.binary",
	"user-agent": "transport.user_agent",
	"log-level":  "logging.level",
	"log-format": "logging.format",
	"log-dir":    "logging.path",
}

// DefaultUserAgent returns the identification header value sent with every request.
func DefaultUserAgent() string {
	return "wcurl/" + Version
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
		Download: DownloadConfig{
			Dir:            ".",
			Parallel:       1,
			Retry:          5,
			DecodeFilename: true,
		},
		Transport: TransportConfig{
			Binary:    "curl",
			UserAgent: DefaultUserAgent(),
		},
	}
}

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment.
// Variables already set in the environment win.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// Load reads configuration from file, environment variables and flags.
// Priority: changed flags > environment variables > config file > defaults
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("wcurl")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/wcurl")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults + env vars
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.normalize()
	return cfg, nil
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

// setDefaults sets default values in viper
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.path", d.Logging.Path)

	v.SetDefault("download.dir", d.Download.Dir)
	v.SetDefault("download.parallel", d.Download.Parallel)
	v.SetDefault("download.retry", d.Download.Retry)
	v.SetDefault("download.decode_filename", d.Download.DecodeFilename)

	v.SetDefault("transport.binary", d.Transport.Binary)
	v.SetDefault("transport.user_agent", d.Transport.UserAgent)
}

func (c *Config) normalize() {
	if c.Download.Parallel < 1 {
		c.Download.Parallel = 1
	}
	if c.Download.Retry < 0 {
		c.Download.Retry = 0
	}
	if c.Download.Dir == "" {
		c.Download.Dir = "."
	}
	if c.Transport.Binary == "" {
		c.Transport.Binary = "curl"
	}
	if c.Transport.UserAgent == "" {
		c.Transport.UserAgent = DefaultUserAgent()
	}
}
