package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Typefully TypefullyConfig `yaml:"typefully"`
	YouTube   YouTubeConfig   `yaml:"youtube"`
	Tweets    TweetsConfig    `yaml:"tweets"`

	Log    LogConfig    `yaml:"log"`
	Server ServerConfig `yaml:"server"`
}

type TypefullyConfig struct {
	APIKey  string        `yaml:"api_key" env:"TYPEFULLY_API_KEY"`
	BaseURL string        `yaml:"api_url" env:"TYPEFULLY_API_URL"`
	Timeout time.Duration `yaml:"timeout" env:"TYPEFULLY_TIMEOUT"`
}

type YouTubeConfig struct {
	Language string `yaml:"language" env:"YOUTUBE_LANGUAGE"`
	BaseURL  string `yaml:"base_url" env:"YOUTUBE_BASE_URL"`

	Timeout    time.Duration `yaml:"timeout" env:"YOUTUBE_TIMEOUT"`
	MaxRetries int           `yaml:"max_retries" env:"YOUTUBE_MAX_RETRIES"`
}

type TweetsConfig struct {
	MaxTranscriptChars int `yaml:"max_transcript_chars" env:"TWEETS_MAX_TRANSCRIPT_CHARS"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

type ServerConfig struct {
	Addr  string `yaml:"addr" env:"MCP_ADDR"`
	Token string `yaml:"token" env:"MCP_TOKEN"`
}

func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)

	return cfg
}

func setDefaults(cfg *Config) {
	cfg.Typefully = TypefullyConfig{
		BaseURL: "https://api.typefully.com",
		Timeout: 30 * time.Second,
	}

	cfg.YouTube = YouTubeConfig{
		Language: "en",
		BaseURL:  "https://www.youtube.com",

		Timeout:    30 * time.Second,
		MaxRetries: 3,
	}

	cfg.Tweets = TweetsConfig{
		MaxTranscriptChars: 20000,
	}

	cfg.Log = LogConfig{
		Level:  "info",
		Format: "text",
	}

	cfg.Server = ServerConfig{
		Addr: ":8080",
	}
}

// Load reads .env, then the optional YAML file at path, then environment
// variables. Later sources override earlier ones.
//
// The returned config is always usable. Values that cannot be read or fail
// validation fall back to their defaults and are reported in the error.
func Load(path string) (*Config, error) {
	var errs []error

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		errs = append(errs, fmt.Errorf("failed to load .env: %w", err))
	}

	cfg := Default()

	if path == "" {
		path = os.Getenv("THREADSMITH_CONFIG")
	}

	if path != "" {
		data, err := os.ReadFile(path)

		if err != nil {
			errs = append(errs, fmt.Errorf("failed to read config file: %w", err))
		}

		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				errs = append(errs, fmt.Errorf("failed to parse config file %s: %w", path, err))
			}
		}
	}

	if err := env.Parse(cfg); err != nil {
		errs = append(errs, fmt.Errorf("failed to parse environment: %w", err))
	}

	if err := cfg.repair(); err != nil {
		errs = append(errs, err)
	}

	return cfg, errors.Join(errs...)
}

// repair resets every invalid value to its default and reports what it reset.
func (c *Config) repair() error {
	defaults := Default()

	var errs []error

	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
		c.Log.Level = defaults.Log.Level
	}

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
		c.Log.Format = defaults.Log.Format
	}

	if c.Typefully.Timeout <= 0 {
		errs = append(errs, errors.New("typefully timeout must be positive"))
		c.Typefully.Timeout = defaults.Typefully.Timeout
	}

	if c.YouTube.Timeout <= 0 {
		errs = append(errs, errors.New("youtube timeout must be positive"))
		c.YouTube.Timeout = defaults.YouTube.Timeout
	}

	if c.YouTube.MaxRetries < 0 {
		errs = append(errs, errors.New("youtube max retries must not be negative"))
		c.YouTube.MaxRetries = defaults.YouTube.MaxRetries
	}

	if c.Tweets.MaxTranscriptChars <= 0 {
		errs = append(errs, errors.New("tweets max transcript chars must be positive"))
		c.Tweets.MaxTranscriptChars = defaults.Tweets.MaxTranscriptChars
	}

	if !validURL(c.Typefully.BaseURL) {
		errs = append(errs, fmt.Errorf("invalid typefully api url %q", c.Typefully.BaseURL))
		c.Typefully.BaseURL = defaults.Typefully.BaseURL
	}

	if !validURL(c.YouTube.BaseURL) {
		errs = append(errs, fmt.Errorf("invalid youtube base url %q", c.YouTube.BaseURL))
		c.YouTube.BaseURL = defaults.YouTube.BaseURL
	}

	if c.Server.Addr == "" {
		c.Server.Addr = defaults.Server.Addr
	}

	if errs == nil {
		return nil
	}

	return fmt.Errorf("using defaults for invalid settings: %w", errors.Join(errs...))
}

func validURL(value string) bool {
	u, err := url.Parse(value)

	return err == nil && u.Scheme != "" && u.Host != ""
}

// Logger returns a logger writing to stderr. Stdout carries the protocol in
// stdio mode and must stay untouched.
func (c *Config) Logger() *slog.Logger {
	return c.newLogger(os.Stderr)
}

func (c *Config) newLogger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(c.Log.Level)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}

	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(value string) (slog.Level, error) {
	var level slog.Level

	if err := level.UnmarshalText([]byte(value)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", value)
	}

	return level, nil
}
