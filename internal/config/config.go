package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/tapvizier/vizier-go/pkg/vizier"
	"gopkg.in/yaml.v3"
)

const envPrefix = "VIZIER"

// Config holds the client settings loaded from files and environment variables.
type Config struct {
	AppName        string        `mapstructure:"app_name" yaml:"app_name" json:"app_name"`
	LogLevel       string        `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	TAPURL         string        `mapstructure:"tap_url" yaml:"tap_url" json:"tap_url"`
	HTTPMethod     string        `mapstructure:"http_method" yaml:"http_method" json:"http_method"`
	TimeoutSeconds int64         `mapstructure:"timeout_seconds" yaml:"timeout_seconds" json:"timeout_seconds"`
	UserAgent      string        `mapstructure:"user_agent" yaml:"user_agent" json:"user_agent"`
	Timeout        time.Duration `mapstructure:"-" yaml:"-" json:"-"`
}

// Load reads configuration from a .env file and VIZIER_* environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	v := viper.New()
	v.SetEnvPrefix(envPrefix)

	v.SetDefault("app_name", "vizier-go")
	v.SetDefault("log_level", "info")
	v.SetDefault("tap_url", vizier.DefaultTAPURL)
	v.SetDefault("http_method", http.MethodGet)
	v.SetDefault("timeout_seconds", 0) // no timeout
	v.SetDefault("user_agent", "")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFile reads configuration from a YAML or JSON file. Keys match Load.
func LoadFile(path string) (*Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("config file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg, err := parseConfigFile(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if cfg.AppName == "" {
		cfg.AppName = "vizier-go"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// parseConfigFile attempts to decode the file content with the decoder matching ext.
func parseConfigFile(data []byte, ext string) (Config, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var cfg Config
		if err := d.fn(data, &cfg); err == nil {
			return cfg, nil
		}
	}

	return Config{}, errors.New("config file format not recognized (expected YAML or JSON)")
}

// normalize trims values, applies fallbacks and derives Timeout.
func (c *Config) normalize() error {
	c.TAPURL = strings.TrimSpace(c.TAPURL)
	if c.TAPURL == "" {
		c.TAPURL = vizier.DefaultTAPURL
	}

	c.HTTPMethod = strings.ToUpper(strings.TrimSpace(c.HTTPMethod))
	switch c.HTTPMethod {
	case "":
		c.HTTPMethod = http.MethodGet
	case http.MethodGet, http.MethodPost:
	default:
		return fmt.Errorf("invalid http_method %q (must be GET or POST)", c.HTTPMethod)
	}

	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("invalid timeout_seconds (must be zero or positive seconds)")
	}
	c.Timeout = time.Duration(c.TimeoutSeconds) * time.Second

	c.UserAgent = strings.TrimSpace(c.UserAgent)
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	return nil
}

// ClientOptions maps the configuration onto vizier client options.
func (c *Config) ClientOptions() []vizier.Option {
	if c == nil {
		return nil
	}
	opts := []vizier.Option{vizier.WithMethod(c.HTTPMethod)}
	if c.Timeout > 0 {
		opts = append(opts, vizier.WithTimeout(c.Timeout))
	}
	if c.UserAgent != "" {
		opts = append(opts, vizier.WithUserAgent(c.UserAgent))
	}
	return opts
}

// NewClient builds a client for the configured endpoint. extra options are
// applied after the configured ones.
func (c *Config) NewClient(extra ...vizier.Option) *vizier.Client {
	return vizier.New(c.TAPURL, append(c.ClientOptions(), extra...)...)
}
