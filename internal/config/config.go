package config

import (
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	URL string `yaml:"url"`
}

// SessionConfig controls browser session cookies. When Secret is empty
// and SecretFile is set, the secret is loaded from (or generated into)
// that file at startup.
type SessionConfig struct {
	Secret     string `yaml:"secret"`
	SecretFile string `yaml:"secretFile"`
	CookieName string `yaml:"cookieName"`
	TTLMinutes int    `yaml:"ttlMinutes"`
}

type LocalAuthConfig struct {
	Enabled bool `yaml:"enabled"`
}

type OIDCConfig struct {
	Enabled        bool     `yaml:"enabled"`
	IssuerURL      string   `yaml:"issuerURL"`
	ClientID       string   `yaml:"clientID"`
	ClientSecret   string   `yaml:"clientSecret"`
	RedirectURL    string   `yaml:"redirectURL"`
	AllowedDomains []string `yaml:"allowedDomains"`
}

// InitialAdminConfig declares an admin user created idempotently at
// startup so a fresh install is usable without manual SQL.
type InitialAdminConfig struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

type AuthConfig struct {
	Enabled      bool               `yaml:"enabled"`
	InitialAdmin InitialAdminConfig `yaml:"initialAdmin"`
	Session      SessionConfig      `yaml:"session"`
	Local        LocalAuthConfig    `yaml:"local"`
	OIDC         OIDCConfig         `yaml:"oidc"`
}

type RateLimitConfig struct {
	DefaultPerMinute int `yaml:"defaultPerMinute"`
}

// RetentionConfig controls TTL-like purging of soft-deleted applications
// so that the database does not grow without bound over time.
type RetentionConfig struct {
	Enabled                bool `yaml:"enabled"`
	CleanupIntervalMinutes int  `yaml:"cleanupIntervalMinutes"`
	TrashDays              int  `yaml:"trashDays"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
	Retention RetentionConfig `yaml:"retention"`
}

func Load(path string) *Config {
	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("failed to open config file: %v", err)
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		log.Fatalf("failed to decode config: %v", err)
	}

	return &cfg
}
