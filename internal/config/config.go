package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Mail     MailConfig
	Redis    RedisConfig
	CORS     CORSConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	PoolMin  int
	PoolMax  int
}

// AuthConfig holds JWT signing configuration.
// Access tokens are short-lived bearer tokens; refresh tokens are long-lived
// and only travel in an HTTP-only cookie.
type AuthConfig struct {
	Secret             string
	AccessTokenMinutes int
	RefreshTokenDays   int
}

// MailConfig holds SMTP configuration for outbound notification email.
// When Host is empty, mail sending is disabled and dispatches are logged only.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// RedisConfig holds the optional redis connection used to rate limit the
// auth endpoints. When Addr is empty, rate limiting is disabled.
type RedisConfig struct {
	Addr          string
	Password      string
	AuthRateLimit int
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	Origins []string
}

// Load reads configuration from environment variables.
// It uses viper to read values and provides sensible defaults for development.
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults for development
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "khetbazaar")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_POOL_MIN", 2)
	v.SetDefault("DB_POOL_MAX", 10)
	v.SetDefault("ACCESS_TOKEN_EXPIRE_MINUTES", 360)
	v.SetDefault("REFRESH_TOKEN_EXPIRE_DAYS", 30)
	v.SetDefault("MAIL_PORT", 587)
	v.SetDefault("AUTH_RATE_LIMIT", 30)
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")

	// Bind environment variables
	v.AutomaticEnv()

	// Build configuration
	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetString("PORT"),
			Env:  v.GetString("ENV"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			PoolMin:  v.GetInt("DB_POOL_MIN"),
			PoolMax:  v.GetInt("DB_POOL_MAX"),
		},
		Auth: AuthConfig{
			Secret:             v.GetString("SECRET_KEY"),
			AccessTokenMinutes: v.GetInt("ACCESS_TOKEN_EXPIRE_MINUTES"),
			RefreshTokenDays:   v.GetInt("REFRESH_TOKEN_EXPIRE_DAYS"),
		},
		Mail: MailConfig{
			Host:     v.GetString("MAIL_SERVER"),
			Port:     v.GetInt("MAIL_PORT"),
			Username: v.GetString("MAIL_USERNAME"),
			Password: v.GetString("MAIL_PASSWORD"),
			From:     v.GetString("MAIL_FROM"),
		},
		Redis: RedisConfig{
			Addr:          v.GetString("REDIS_ADDRESS"),
			Password:      v.GetString("REDIS_PASSWORD"),
			AuthRateLimit: v.GetInt("AUTH_RATE_LIMIT"),
		},
		CORS: CORSConfig{
			Origins: parseOrigins(v.GetString("CORS_ORIGINS")),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	// Validate server config
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	// Validate database config
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Port == "" {
		return fmt.Errorf("DB_PORT is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.Database.PoolMin < 0 {
		return fmt.Errorf("DB_POOL_MIN must be non-negative")
	}
	if c.Database.PoolMax < 1 {
		return fmt.Errorf("DB_POOL_MAX must be at least 1")
	}
	if c.Database.PoolMin > c.Database.PoolMax {
		return fmt.Errorf("DB_POOL_MIN must be less than or equal to DB_POOL_MAX")
	}

	// Validate auth config
	if c.Auth.Secret == "" {
		return fmt.Errorf("SECRET_KEY is required")
	}
	if c.Auth.AccessTokenMinutes < 1 {
		return fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be at least 1")
	}
	if c.Auth.RefreshTokenDays < 1 {
		return fmt.Errorf("REFRESH_TOKEN_EXPIRE_DAYS must be at least 1")
	}

	// Mail is optional, but when a server is set the sender address is needed
	if c.Mail.Host != "" && c.Mail.From == "" {
		return fmt.Errorf("MAIL_FROM is required when MAIL_SERVER is set")
	}

	if c.Redis.Addr != "" && c.Redis.AuthRateLimit < 1 {
		return fmt.Errorf("AUTH_RATE_LIMIT must be at least 1")
	}

	// Validate CORS config
	if len(c.CORS.Origins) == 0 {
		return fmt.Errorf("CORS_ORIGINS is required")
	}

	return nil
}

// parseOrigins splits a comma-separated string of origins into a slice.
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
