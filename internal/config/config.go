package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"discussioncomments/internal/fetcher"
)

// Config represents the application configuration
type Config struct {
	Github struct {
		Owner string `mapstructure:"owner"`
		Repo  string `mapstructure:"repo"`
		Token string `mapstructure:"token"`
	} `mapstructure:"github"`
	Fetch struct {
		Endpoint   string        `mapstructure:"endpoint"`
		Timeout    time.Duration `mapstructure:"timeout"`
		CLITimeout time.Duration `mapstructure:"cli_timeout"`
		GHPath     string        `mapstructure:"gh_path"`
		Transports []string      `mapstructure:"transports"`
	} `mapstructure:"fetch"`
	Output struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"output"`
	Publish struct {
		Branch string `mapstructure:"branch"`
	} `mapstructure:"publish"`
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("github.owner", "lqdev")
	v.SetDefault("github.repo", "TestGHCMS")
	v.SetDefault("github.token", "")
	v.SetDefault("fetch.endpoint", fetcher.DefaultEndpoint)
	v.SetDefault("fetch.timeout", 10*time.Second)
	v.SetDefault("fetch.cli_timeout", 30*time.Second)
	v.SetDefault("fetch.gh_path", "gh")
	v.SetDefault("fetch.transports", append([]string(nil), fetcher.DefaultTransports...))
	v.SetDefault("output.path", "_data/discussionComments.json")
	v.SetDefault("publish.branch", "gh-pages")
	v.SetDefault("log.level", "info")
}

// Load reads cfgFile (or ./config.yaml when empty) and the environment into a Config.
// A missing default config file is not an error; every key has a default.
// GITHUB_TOKEN in the environment or a .env file overrides github.token.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	SetDefaults(v)
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("github.token", "GITHUB_TOKEN"); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Github.Owner == "" || c.Github.Repo == "" {
		return fmt.Errorf("github.owner and github.repo are required")
	}
	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("fetch.timeout must be greater than 0")
	}
	if c.Output.Path == "" {
		return fmt.Errorf("output.path is required")
	}
	return nil
}

// FetcherConfig returns the transport settings for fetcher.New.
func (c *Config) FetcherConfig() fetcher.Config {
	return fetcher.Config{
		Token:      c.Github.Token,
		Endpoint:   c.Fetch.Endpoint,
		Timeout:    c.Fetch.Timeout,
		CLITimeout: c.Fetch.CLITimeout,
		GHPath:     c.Fetch.GHPath,
		Transports: c.Fetch.Transports,
	}
}

// LogLevel parses log.level, defaulting to info.
func (c *Config) LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}
