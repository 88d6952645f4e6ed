package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Email      EmailConfig      `yaml:"email"`
	Newsletter NewsletterConfig `yaml:"newsletter"`
	Redis      RedisConfig      `yaml:"redis"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr returns the listen address, defaulting to 0.0.0.0:8080.
func (c ServerConfig) Addr() string {
	host := c.Host
	if host == "" {
		host = "0.0.0.0"
	}
	port := c.Port
	if port == 0 {
		port = 8080
	}
	return fmt.Sprintf("%s:%d", host, port)
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password Secret `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

// DSN assembles the connection string. The result embeds the password, so
// it is wrapped as a Secret; pass ExposeSecret() to sql.Open and nothing
// else.
func (c DatabaseConfig) DSN() Secret {
	ssl := c.SSLMode
	if ssl == "" {
		ssl = "require"
	}
	return NewSecret(fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Username, c.Password.ExposeSecret(), c.Host, c.Port, c.Name, ssl))
}

// EmailConfig holds the outbound email provider settings.
type EmailConfig struct {
	BaseURL    string `yaml:"base_url"`
	CampaignID string `yaml:"campaign_id"`
	AuthToken  Secret `yaml:"auth_token"`
	TimeoutMS  int    `yaml:"timeout_ms"`
}

// Timeout returns the per-send timeout, defaulting to 10s.
func (c EmailConfig) Timeout() time.Duration {
	if c.TimeoutMS <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// NewsletterConfig holds dispatch settings.
type NewsletterConfig struct {
	Workers int `yaml:"workers"`
}

// WorkerCount returns the dispatch pool size, defaulting to 4.
func (c NewsletterConfig) WorkerCount() int {
	if c.Workers <= 0 {
		return 4
	}
	return c.Workers
}

// RedisConfig holds optional Redis settings for rate limiting and the
// dispatch guard. An empty URL disables both.
type RedisConfig struct {
	URL                string `yaml:"url"`
	SubscribePerMinute int    `yaml:"subscribe_per_minute"`
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadFromEnv loads the YAML file and then applies environment overrides.
// A .env file in the working directory is picked up automatically; a
// missing config file is not an error, env-only deployments are fine.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		}
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = p
		}
	}
	if v := os.Getenv("DB_USERNAME"); v != "" {
		cfg.Database.Username = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = NewSecret(v)
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("EMAIL_BASE_URL"); v != "" {
		cfg.Email.BaseURL = v
	}
	if v := os.Getenv("EMAIL_CAMPAIGN_ID"); v != "" {
		cfg.Email.CampaignID = v
	}
	if v := os.Getenv("EMAIL_AUTH_TOKEN"); v != "" {
		cfg.Email.AuthToken = NewSecret(v)
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}

	return cfg, nil
}
