package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override values from the config file
const (
	EnvRootURL  = "RESPIMG_ROOT_URL"
	EnvMetaFile = "RESPIMG_META_FILE"
	EnvPort     = "RESPIMG_PORT"
)

// Config represents the application configuration
type Config struct {
	RootURL  string         `yaml:"root_url"`
	Meta     MetaConfig     `yaml:"meta"`
	Assets   AssetsConfig   `yaml:"assets"`
	Server   ServerConfig   `yaml:"server"`
	Viewport ViewportConfig `yaml:"viewport"`
}

// MetaConfig points at the metadata written by the image build step
type MetaConfig struct {
	File  string `yaml:"file"`
	Watch bool   `yaml:"watch"`
}

type AssetsConfig struct {
	Dir    string `yaml:"dir"`
	Verify bool   `yaml:"verify"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// ViewportConfig is the viewport assumed when a request carries no client hints
type ViewportConfig struct {
	ScreenWidth int     `yaml:"screen_width"`
	PixelRatio  float64 `yaml:"pixel_ratio"`
}

// Load reads and parses the configuration file. A .env file next to the
// config file, if present, is loaded into the environment first.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	envFile := filepath.Join(filepath.Dir(path), ".env")
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyEnv overrides config values with environment variables
func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv(EnvRootURL); ok {
		c.RootURL = v
	}
	if v, ok := os.LookupEnv(EnvMetaFile); ok {
		c.Meta.File = v
	}
	if v, ok := os.LookupEnv(EnvPort); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s must be a number: %w", EnvPort, err)
		}
		c.Server.Port = port
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.RootURL == "" {
		c.RootURL = "/"
	}
	if !strings.HasSuffix(c.RootURL, "/") {
		c.RootURL += "/"
	}
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
}

// Validate checks if required configuration fields are set
func (c *Config) Validate() error {
	if c.Meta.File == "" {
		return fmt.Errorf("meta.file is required")
	}
	if !strings.HasPrefix(c.RootURL, "/") && !strings.Contains(c.RootURL, "://") {
		return fmt.Errorf("root_url must be absolute: %q", c.RootURL)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Viewport.ScreenWidth < 0 {
		return fmt.Errorf("viewport.screen_width must not be negative")
	}
	if c.Viewport.PixelRatio < 0 {
		return fmt.Errorf("viewport.pixel_ratio must not be negative")
	}
	if c.Assets.Verify && c.Assets.Dir == "" {
		return fmt.Errorf("assets.verify requires assets.dir")
	}
	return nil
}

// Addr returns the listen address of the HTTP server
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
