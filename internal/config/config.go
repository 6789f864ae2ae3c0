package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// Config holds runtime configuration values for the student record service.
type Config struct {
	AppName            string
	AppEnv             string
	AppPort            string
	DatabaseURL        string
	RedisURL           string
	NATSUrl            string
	SessionIdleTimeout time.Duration
	CSRFTokenLength    int
	BcryptCost         int
	BackupDir          string
	BackupCommand      string
	AdminUsername      string
	AdminPassword      string
	AdminEmail         string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("SIMS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "SIMS API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("session.idle_timeout", "30m")
	v.SetDefault("csrf.token_length", 32)
	v.SetDefault("bcrypt.cost", bcrypt.DefaultCost)
	v.SetDefault("backup.dir", "../backups")
	v.SetDefault("backup.command", "pg_dump")

	idleString := v.GetString("session.idle_timeout")
	if idleString == "" {
		idleString = "30m"
	}

	idle, err := time.ParseDuration(idleString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid session idle timeout: %w", err)
	}

	cfg := Config{
		AppName:            v.GetString("app.name"),
		AppEnv:             v.GetString("app.env"),
		AppPort:            v.GetString("app.port"),
		DatabaseURL:        v.GetString("database.url"),
		RedisURL:           v.GetString("redis.url"),
		NATSUrl:            v.GetString("nats.url"),
		SessionIdleTimeout: idle,
		CSRFTokenLength:    v.GetInt("csrf.token_length"),
		BcryptCost:         v.GetInt("bcrypt.cost"),
		BackupDir:          v.GetString("backup.dir"),
		BackupCommand:      v.GetString("backup.command"),
		AdminUsername:      v.GetString("admin.username"),
		AdminPassword:      v.GetString("admin.password"),
		AdminEmail:         v.GetString("admin.email"),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("database url must be provided")
	}

	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("redis url must be provided")
	}

	if cfg.CSRFTokenLength <= 0 {
		cfg.CSRFTokenLength = 32
	}

	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		cfg.BcryptCost = bcrypt.DefaultCost
	}

	return cfg, nil
}
