package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds the configuration of the service.
// Tags used:
// - mapstructure: environment variable name
// - default: value used when the variable is missing
// - required: if "true", Load fails when the value is missing
type Config struct {
	Environment    string        `mapstructure:"APP_ENV" default:"development"`
	LogLevel       string        `mapstructure:"LOG_LEVEL" default:"info"`
	HTTPPort       int           `mapstructure:"HTTP_PORT" default:"8080"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT" default:"10s"`

	// BulkConcurrency bounds parallel snapshot reads of one bulk request.
	BulkConcurrency int `mapstructure:"BULK_CONCURRENCY" default:"8"`
	// EventBufferSize is the per-subscriber buffer of the in-process event bus.
	EventBufferSize int `mapstructure:"EVENT_BUFFER_SIZE" default:"100"`

	Store StoreConfig `mapstructure:",squash"`
	Redis RedisConfig `mapstructure:",squash"`
	Jobs  JobsConfig  `mapstructure:",squash"`
}

// StoreConfig selects and configures the storage backend.
type StoreConfig struct {
	Driver     string `mapstructure:"STORE_DRIVER" default:"postgres"`
	DBHost     string `mapstructure:"DB_HOST" default:"localhost"`
	DBPort     int    `mapstructure:"DB_PORT" default:"5432"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBSslMode  string `mapstructure:"DB_SSLMODE" default:"disable"`
	SQLitePath string `mapstructure:"SQLITE_PATH" default:"cmr.db"`
}

// RedisConfig enables the snapshot cache and event fan-out when URL is set.
type RedisConfig struct {
	URL          string        `mapstructure:"REDIS_URL"`
	SnapshotTTL  time.Duration `mapstructure:"SNAPSHOT_CACHE_TTL" default:"10m"`
	EventChannel string        `mapstructure:"EVENT_CHANNEL" default:"cmr.shipment.status"`
}

// JobsConfig holds six-field cron expressions. An empty expression disables the job.
type JobsConfig struct {
	SnapshotRefreshSchedule string        `mapstructure:"SNAPSHOT_REFRESH_SCHEDULE" default:"0 */5 * * * *"`
	StaleExceptionSchedule  string        `mapstructure:"STALE_EXCEPTION_SCHEDULE" default:"0 0 * * * *"`
	StaleExceptionAfter     time.Duration `mapstructure:"STALE_EXCEPTION_AFTER" default:"24h" required:"true"`
}

// PostgresDSN builds the connection string for the postgres driver.
func (c StoreConfig) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

// LoadConfig reads dir/.env into the process environment (existing variables
// win) and then builds the Config from the environment.
func LoadConfig(dir string) (*Config, error) {
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()
	v.AutomaticEnv()

	var config Config

	if err := processTags(v, &config); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := validateRequired(&config); err != nil {
		return nil, err
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			return errors.New("missing required configuration: SQLITE_PATH")
		}
	case DriverPostgres:
		var missing []error
		if c.Store.DBUser == "" {
			missing = append(missing, errors.New("missing required configuration: DB_USER"))
		}
		if c.Store.DBName == "" {
			missing = append(missing, errors.New("missing required configuration: DB_NAME"))
		}
		if err := errors.Join(missing...); err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid STORE_DRIVER %q: must be %s or %s", c.Store.Driver, DriverPostgres, DriverSQLite)
	}

	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP_PORT %d", c.HTTPPort)
	}
	return nil
}

// processTags iterates over the struct fields, binds every key to its
// environment variable and registers the defaults.
func processTags(v *viper.Viper, config any) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := processTags(v, val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		key := field.Tag.Get("mapstructure")
		if key == "" {
			continue
		}

		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("failed to bind %s: %w", key, err)
		}

		if defaultValue := field.Tag.Get("default"); defaultValue != "" {
			v.SetDefault(key, defaultValue)
		}
	}
	return nil
}

// validateRequired checks if fields marked as required have non-zero values.
func validateRequired(config any) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := validateRequired(val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		if field.Tag.Get("required") == "true" && val.Field(i).IsZero() {
			return fmt.Errorf("missing required configuration: %s", field.Tag.Get("mapstructure"))
		}
	}
	return nil
}
