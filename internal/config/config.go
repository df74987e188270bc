package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Reports  ReportsConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// DatabaseConfig holds MySQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// DSN materializes the go-sql-driver connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=Local",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

// AuthConfig holds token and password hashing settings.
type AuthConfig struct {
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
}

// ReportsConfig holds report file storage and retention settings.
type ReportsConfig struct {
	// Dir is where temporary report files are written before streaming.
	Dir string
	// RetentionDays bounds how long ledger entries stay downloadable.
	RetentionDays int
	// SweepSchedule is the cron expression for the retention sweeper.
	SweepSchedule string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	// A missing env file is acceptable when configuration comes from the
	// environment directly; a malformed one is not.
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed loading .env file: %w", err)
	}

	tokenTTL, err := time.ParseDuration(getenvWithDefault("JWT_EXPIRE", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRE: %w", err)
	}

	bcryptCost, err := strconv.Atoi(getenvWithDefault("BCRYPT_ROUNDS", "12"))
	if err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_ROUNDS: %w", err)
	}

	retentionDays, err := strconv.Atoi(getenvWithDefault("REPORT_RETENTION_DAYS", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid REPORT_RETENTION_DAYS: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getenvWithDefault("DB_HOST", "localhost"),
			Port:     getenvWithDefault("DB_PORT", "3306"),
			User:     getenvWithDefault("DB_USER", "root"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     getenvWithDefault("DB_NAME", "db_smarternak"),
		},
		Auth: AuthConfig{
			JWTSecret:  os.Getenv("JWT_SECRET"),
			TokenTTL:   tokenTTL,
			BcryptCost: bcryptCost,
		},
		Reports: ReportsConfig{
			Dir:           getenvWithDefault("REPORTS_DIR", "uploads/reports"),
			RetentionDays: retentionDays,
			SweepSchedule: getenvWithDefault("REPORT_SWEEP_SCHEDULE", "0 3 * * *"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch {
	case c.Database.Host == "":
		return errors.New("DB_HOST must be provided")
	case c.Database.User == "":
		return errors.New("DB_USER must be provided")
	case c.Database.Name == "":
		return errors.New("DB_NAME must be provided")
	}

	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET must be provided")
	}

	if c.Auth.TokenTTL <= 0 {
		return errors.New("JWT_EXPIRE must be a positive duration")
	}

	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return errors.New("BCRYPT_ROUNDS must be between 4 and 31")
	}

	if c.Reports.Dir == "" {
		return errors.New("REPORTS_DIR must not be empty")
	}

	if c.Reports.RetentionDays <= 0 {
		return errors.New("REPORT_RETENTION_DAYS must be positive")
	}

	if c.Reports.SweepSchedule == "" {
		return errors.New("REPORT_SWEEP_SCHEDULE must be provided")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
