package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	DSN string
}

type AuthConfig struct {
	// JWTSecret has no default on purpose: starting with a weak built-in
	// secret is worse than not starting.
	JWTSecret     string
	TokenTTL      time.Duration
	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

type MaintenanceConfig struct {
	TokenPurgeInterval time.Duration
}

type LoggingConfig struct {
	Level string
}

type AppConfig struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Auth        AuthConfig
	Maintenance MaintenanceConfig
	Logging     LoggingConfig
}

func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8000")
	viper.SetDefault("DATABASE_DSN", "data/carteira.db")
	viper.SetDefault("TOKEN_TTL", "24h")
	viper.SetDefault("TOKEN_PURGE_INTERVAL", "1h")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("ADMIN_USERNAME", "")
	viper.SetDefault("ADMIN_EMAIL", "")
	viper.SetDefault("ADMIN_PASSWORD", "")

	tokenTTL, err := time.ParseDuration(viper.GetString("TOKEN_TTL"))
	if err != nil {
		return nil, fmt.Errorf("invalid token ttl: %w", err)
	}
	purgeInterval, err := time.ParseDuration(viper.GetString("TOKEN_PURGE_INTERVAL"))
	if err != nil {
		return nil, fmt.Errorf("invalid token purge interval: %w", err)
	}

	cfg := &AppConfig{
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
		},
		Database: DatabaseConfig{
			DSN: viper.GetString("DATABASE_DSN"),
		},
		Auth: AuthConfig{
			JWTSecret:     viper.GetString("JWT_SECRET"),
			TokenTTL:      tokenTTL,
			AdminUsername: viper.GetString("ADMIN_USERNAME"),
			AdminEmail:    viper.GetString("ADMIN_EMAIL"),
			AdminPassword: viper.GetString("ADMIN_PASSWORD"),
		},
		Maintenance: MaintenanceConfig{
			TokenPurgeInterval: purgeInterval,
		},
		Logging: LoggingConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
	}

	if cfg.Database.DSN == "" {
		return nil, fmt.Errorf("DATABASE_DSN is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}
