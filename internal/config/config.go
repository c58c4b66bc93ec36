package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Auth     AuthConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port           string
	Env            string
	LogLevel       string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string
	Timezone       string
}

// DatabaseConfig holds SurrealDB connection settings
type DatabaseConfig struct {
	Host      string
	Port      string
	Namespace string
	Database  string
	User      string
	Password  string
}

// JWTConfig holds session token signing settings
type JWTConfig struct {
	PrivateKeyPath string
	PublicKeyPath  string
	ExpirationMins int
	Issuer         string
}

// AuthConfig holds credential settings
type AuthConfig struct {
	BcryptCost   int
	SeedPassword string
}

// defaults mirrors every supported environment variable
var defaults = map[string]interface{}{
	"SERVER_PORT":          "8080",
	"SERVER_ENV":           "development",
	"LOG_LEVEL":            "info",
	"SERVER_READ_TIMEOUT":  15 * time.Second,
	"SERVER_WRITE_TIMEOUT": 15 * time.Second,
	"CORS_ALLOWED_ORIGINS": "http://localhost:8081",
	"SERVER_TIMEZONE":      "Asia/Kolkata",

	"DB_HOST":      "localhost",
	"DB_PORT":      "8000",
	"DB_NAMESPACE": "clubhub",
	"DB_DATABASE":  "main",
	"DB_USER":      "root",
	"DB_PASSWORD":  "root",

	"JWT_PRIVATE_KEY_PATH": "./keys/private.pem",
	"JWT_PUBLIC_KEY_PATH":  "./keys/public.pem",
	"JWT_EXPIRATION_MINS":  45 * 24 * 60,
	"JWT_ISSUER":           "clubhub.forgo.software",

	"BCRYPT_COST":   12,
	"SEED_PASSWORD": "PR123$",
}

// Load reads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Env:            v.GetString("SERVER_ENV"),
			LogLevel:       v.GetString("LOG_LEVEL"),
			ReadTimeout:    v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetDuration("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
			Timezone:       v.GetString("SERVER_TIMEZONE"),
		},
		Database: DatabaseConfig{
			Host:      v.GetString("DB_HOST"),
			Port:      v.GetString("DB_PORT"),
			Namespace: v.GetString("DB_NAMESPACE"),
			Database:  v.GetString("DB_DATABASE"),
			User:      v.GetString("DB_USER"),
			Password:  v.GetString("DB_PASSWORD"),
		},
		JWT: JWTConfig{
			PrivateKeyPath: v.GetString("JWT_PRIVATE_KEY_PATH"),
			PublicKeyPath:  v.GetString("JWT_PUBLIC_KEY_PATH"),
			ExpirationMins: v.GetInt("JWT_EXPIRATION_MINS"),
			Issuer:         v.GetString("JWT_ISSUER"),
		},
		Auth: AuthConfig{
			BcryptCost:   v.GetInt("BCRYPT_COST"),
			SeedPassword: v.GetString("SEED_PASSWORD"),
		},
	}, nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Location resolves the configured timezone, falling back to UTC
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Server.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Validate checks that all required configuration values are present and valid.
// It returns an error describing all validation failures, or nil if valid.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port == "" {
		errs = append(errs, errors.New("SERVER_PORT is required"))
	}
	if c.Server.Env != "development" && c.Server.Env != "production" && c.Server.Env != "test" {
		errs = append(errs, fmt.Errorf("SERVER_ENV must be 'development', 'production', or 'test', got '%s'", c.Server.Env))
	}
	switch strings.ToLower(c.Server.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error, got '%s'", c.Server.LogLevel))
	}
	if len(c.Server.AllowedOrigins) == 0 {
		errs = append(errs, errors.New("CORS_ALLOWED_ORIGINS must have at least one origin"))
	}
	if _, err := time.LoadLocation(c.Server.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("SERVER_TIMEZONE is invalid: %w", err))
	}

	if c.Database.Host == "" {
		errs = append(errs, errors.New("DB_HOST is required"))
	}
	if c.Database.Port == "" {
		errs = append(errs, errors.New("DB_PORT is required"))
	}
	if c.Database.Namespace == "" {
		errs = append(errs, errors.New("DB_NAMESPACE is required"))
	}
	if c.Database.Database == "" {
		errs = append(errs, errors.New("DB_DATABASE is required"))
	}

	if c.IsProduction() {
		if c.JWT.PrivateKeyPath == "" {
			errs = append(errs, errors.New("JWT_PRIVATE_KEY_PATH is required in production"))
		}
		if c.JWT.PublicKeyPath == "" {
			errs = append(errs, errors.New("JWT_PUBLIC_KEY_PATH is required in production"))
		}
	}
	if c.JWT.ExpirationMins <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRATION_MINS must be positive"))
	}

	// bcrypt accepts 4..31
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.Auth.BcryptCost))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
