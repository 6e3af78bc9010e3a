package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	API      APIConfig   `yaml:"api"`
	Cache    CacheConfig `yaml:"cache"`
	LogLevel string      `yaml:"log_level"`
}

type APIConfig struct {
	PostsURL      string        `yaml:"posts_url"`
	CategoriesURL string        `yaml:"categories_url"`
	PerPage       int           `yaml:"per_page"`
	Timeout       time.Duration `yaml:"timeout"`
	UserAgent     string        `yaml:"user_agent"`
	Retry         RetryConfig   `yaml:"retry"`
}

type RetryConfig struct {
	Attempts int           `yaml:"attempts"`
	Interval time.Duration `yaml:"interval"`
}

type CacheConfig struct {
	Dir string `yaml:"dir"`
}

// Load reads a yaml config file, expanding ${VAR} references from the
// environment (a .env file is honored when present). An empty path or a
// missing file yields the built-in defaults.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err == nil {
			expanded := os.ExpandEnv(string(data))
			if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	cfg.setDefaults()

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.API.PostsURL == "" {
		c.API.PostsURL = "https://csodalatosmagyarorszag.hu/wp-json/wp/v2/posts"
	}
	if c.API.CategoriesURL == "" {
		c.API.CategoriesURL = "https://csodalatosmagyarorszag.hu/wp-json/wp/v2/categories"
	}
	if c.API.PerPage == 0 {
		c.API.PerPage = 100
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = 30 * time.Second
	}
	if c.API.UserAgent == "" {
		c.API.UserAgent = "wpevents/1.0"
	}
	if c.API.Retry.Attempts == 0 {
		c.API.Retry.Attempts = 3
	}
	if c.API.Retry.Interval == 0 {
		c.API.Retry.Interval = 2 * time.Second
	}
	if c.Cache.Dir == "" {
		c.Cache.Dir = "./cache"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}
