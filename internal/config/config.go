package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Addr             string
	StoreDriver      string
	DBPath           string
	DatabaseURL      string
	DBUser           string
	DBPassword       string
	AdminUser        string
	AdminPassword    string
	GuestUser        string
	GuestPassword    string
	LogLevel         string
	AutoSaveInterval time.Duration
	StoreTimeout     time.Duration
	APIWorkerCount   int
	APIQueueSize     int
	ConsoleEnabled   bool
}

var defaults = map[string]any{
	"addr":              ":8000",
	"store_driver":      DriverSQLite,
	"db_path":           "file:profilehub.db",
	"database_url":      "postgres://localhost:5432/postgres?sslmode=disable",
	"db_user":           "postgres",
	"db_password":       "1234",
	"db_admin_user":     "postgres",
	"db_admin_password": "1234",
	"db_guest_user":     "guest",
	"db_guest_password": "guest123",
	"log_level":         "INFO",
	"autosave_interval": "15s",
	"store_timeout":     "5s",
	"api_worker_count":  10,
	"api_queue_size":    64,
	"console_enabled":   true,
}

// Load reads configuration from a .env file (if present), an optional
// profilehub.yaml and environment variables, applying defaults when values
// are missing.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("profilehub")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Printf("ignoring unreadable profilehub.yaml: %v", err)
		}
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) Config {
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.AutomaticEnv()

	return Config{
		Addr:             v.GetString("addr"),
		StoreDriver:      strings.ToLower(v.GetString("store_driver")),
		DBPath:           v.GetString("db_path"),
		DatabaseURL:      v.GetString("database_url"),
		DBUser:           v.GetString("db_user"),
		DBPassword:       v.GetString("db_password"),
		AdminUser:        v.GetString("db_admin_user"),
		AdminPassword:    v.GetString("db_admin_password"),
		GuestUser:        v.GetString("db_guest_user"),
		GuestPassword:    v.GetString("db_guest_password"),
		LogLevel:         v.GetString("log_level"),
		AutoSaveInterval: v.GetDuration("autosave_interval"),
		StoreTimeout:     v.GetDuration("store_timeout"),
		APIWorkerCount:   v.GetInt("api_worker_count"),
		APIQueueSize:     v.GetInt("api_queue_size"),
		ConsoleEnabled:   v.GetBool("console_enabled"),
	}
}

// Validate checks the configuration for values the server cannot run with.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("ADDR cannot be empty"))
	}
	switch c.StoreDriver {
	case DriverSQLite:
		if c.DBPath == "" {
			errs = append(errs, errors.New("DB_PATH cannot be empty for the sqlite driver"))
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL cannot be empty for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", DriverSQLite, DriverPostgres, c.StoreDriver))
	}
	if c.AutoSaveInterval <= 0 {
		errs = append(errs, fmt.Errorf("AUTOSAVE_INTERVAL must be positive, got %s", c.AutoSaveInterval))
	}
	if c.StoreTimeout <= 0 {
		errs = append(errs, fmt.Errorf("STORE_TIMEOUT must be positive, got %s", c.StoreTimeout))
	}
	if c.APIWorkerCount <= 0 {
		errs = append(errs, fmt.Errorf("API_WORKER_COUNT must be positive, got %d", c.APIWorkerCount))
	}
	if c.APIQueueSize <= 0 {
		errs = append(errs, fmt.Errorf("API_QUEUE_SIZE must be positive, got %d", c.APIQueueSize))
	}
	return errors.Join(errs...)
}

// Credentials builds the credential cell seeded with the configured roles.
func (c Config) Credentials() *CredentialCell {
	return NewCredentialCell(
		Credential{User: c.DBUser, Password: c.DBPassword},
		Credential{User: c.AdminUser, Password: c.AdminPassword},
		Credential{User: c.GuestUser, Password: c.GuestPassword},
	)
}
