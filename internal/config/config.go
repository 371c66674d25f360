package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig   `json:"server"`
	Quota    QuotaConfig    `json:"quota"`
	Upload   UploadConfig   `json:"upload"`
	Provider ProviderConfig `json:"provider"`
	Redis    RedisConfig    `json:"redis"`
	Postgres PostgresConfig `json:"postgres"`
	Admin    AdminConfig    `json:"admin"`
}

type ServerConfig struct {
	Port        string `json:"port"`
	Environment string `json:"environment"`
}

type QuotaConfig struct {
	// Backend selects the usage store: "memory", "redis" or "postgres"
	Backend string `json:"backend"`
	// FreeLimit is the number of analyses a free-tier identity may consume
	FreeLimit int64 `json:"free_limit"`
	// PremiumIdentities is the authoritative premium allow-list. When
	// empty the X-Tier header hint is trusted instead.
	PremiumIdentities []string `json:"premium_identities"`
}

type UploadConfig struct {
	MaxBytes     int64    `json:"max_bytes"`
	AllowedTypes []string `json:"allowed_types"`
}

type ProviderConfig struct {
	BaseURL        string `json:"base_url"`
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	TimeoutSeconds int    `json:"timeout_seconds"`

	// APIKey is read from the environment (PROVIDER_API_KEY), never
	// from the config file.
	APIKey string `json:"-"`
}

type RedisConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

type PostgresConfig struct {
	DSN string `json:"dsn"`
}

type AdminConfig struct {
	JWTSecret   string `json:"-"`
	ExpiryHours int    `json:"jwt_expiry_hours"`
}

func Load(path string) (*Config, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := defaults()
	if err := json.Unmarshal(file, cfg); err != nil {
		return nil, err
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "8080",
			Environment: "development",
		},
		Quota: QuotaConfig{
			Backend:   "memory",
			FreeLimit: 1,
		},
		Upload: UploadConfig{
			MaxBytes:     5242880,
			AllowedTypes: []string{"image/jpeg", "image/png", "image/webp"},
		},
		Provider: ProviderConfig{
			BaseURL:        "https://generativelanguage.googleapis.com/v1beta",
			Model:          "gemini-1.5-flash",
			Prompt:         "Describe the objects in this image in one short sentence.",
			TimeoutSeconds: 30,
		},
		Redis: RedisConfig{
			Host: "localhost",
			Port: "6379",
		},
		Admin: AdminConfig{
			ExpiryHours: 24,
		},
	}
}

// Environment variables override file values so deployments can keep
// secrets out of config.json.
func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("ENVIRONMENT"); v != "" {
		c.Server.Environment = v
	}
	if v := os.Getenv("PROVIDER_API_KEY"); v != "" {
		c.Provider.APIKey = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		c.Postgres.DSN = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Admin.JWTSecret = v
	}
	if v := os.Getenv("FREE_LIMIT"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Quota.FreeLimit = n
		}
	}
}

func (c *Config) validate() error {
	switch c.Quota.Backend {
	case "memory", "redis", "postgres":
	default:
		return fmt.Errorf("config: unknown quota backend %q", c.Quota.Backend)
	}

	if c.Quota.FreeLimit < 0 {
		return fmt.Errorf("config: free_limit must be non-negative, got %d", c.Quota.FreeLimit)
	}

	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("config: max_bytes must be positive, got %d", c.Upload.MaxBytes)
	}

	if c.Quota.Backend == "postgres" && c.Postgres.DSN == "" {
		return fmt.Errorf("config: postgres backend requires POSTGRES_DSN")
	}

	return nil
}

func (r *RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

func (p *ProviderConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}
