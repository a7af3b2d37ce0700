// Package config provides configuration management using Viper
package config

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// Environment types
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// Version is the application version, stamped at build time via -ldflags.
var Version = "dev"

// LogLevel represents the logging level for the application
type LogLevel string

// Available log levels
const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// Database types
const (
	SQLiteDatabase = "sqlite"
)

// Config holds all configuration parameters for the application
type Config struct {
	// Application settings
	AppName     string   `mapstructure:"appname"`
	AppPort     string   `mapstructure:"appport"`
	Environment string   `mapstructure:"environment"`
	LogLevel    LogLevel `mapstructure:"loglevel"`

	// File paths
	StoragePath  string `mapstructure:"storagepath"`
	DatabaseName string `mapstructure:"-"` // Derived from other settings

	// Logging settings
	LogsDirectory    string `mapstructure:"logsdir"`
	LogsMaxSizeInMb  int    `mapstructure:"logsmaxsizeinmb"`
	LogsMaxBackups   int    `mapstructure:"logsmaxbackups"`
	LogsMaxAgeInDays int    `mapstructure:"logsmaxageindays"`

	// Database settings
	DatabaseType         string `mapstructure:"dbtype"`
	DatabaseMaxOpenConns int    `mapstructure:"dbmaxopenconns"`
	DatabaseMaxIdleConns int    `mapstructure:"dbmaxidleconns"`

	// Google Search Console credentials. Exactly one source is used, in this
	// order of precedence: a service-account/credentials file, or a saved
	// OAuth token file plus the client pair that minted it.
	GoogleCredentialsFile string `mapstructure:"googlecredentialsfile"`
	GoogleTokenFile       string `mapstructure:"googletokenfile"`
	GoogleClientID        string `mapstructure:"googleclientid"`
	GoogleClientSecret    string `mapstructure:"googleclientsecret"`

	// Reporting engine settings
	RowLimit                 int `mapstructure:"rowlimit"`
	MaxPeriods               int `mapstructure:"maxperiods"`
	InspectionConcurrency    int `mapstructure:"inspectionconcurrency"`
	InspectionTimeoutSeconds int `mapstructure:"inspectiontimeoutseconds"`
	SitemapTimeoutSeconds    int `mapstructure:"sitemaptimeoutseconds"`

	// Session settings
	SessionTTLSeconds int `mapstructure:"sessionttlseconds"`

	// Job scheduling settings
	JobIntervalSeconds int `mapstructure:"jobintervalseconds"`

	// Optional YAML file with named URL lists loaded at startup
	URLListsSeedFile string `mapstructure:"urllistsseedfile"`
}

var (
	cfg  *Config
	once sync.Once
)

// GetConfig returns the application configuration
func GetConfig() *Config {
	once.Do(func() {
		v := viper.New()

		// Set defaults
		v.SetDefault("appname", "searchlens")
		v.SetDefault("appport", "8080")
		v.SetDefault("environment", Development)
		v.SetDefault("loglevel", string(LogLevelDebug))
		v.SetDefault("storagepath", "storage")
		v.SetDefault("logsdir", "logs")
		v.SetDefault("logsmaxsizeinmb", 20)
		v.SetDefault("logsmaxbackups", 10)
		v.SetDefault("logsmaxageindays", 30)
		v.SetDefault("dbtype", SQLiteDatabase)
		v.SetDefault("dbmaxopenconns", 0)
		v.SetDefault("dbmaxidleconns", 0)
		v.SetDefault("googlecredentialsfile", "")
		v.SetDefault("googletokenfile", "")
		v.SetDefault("googleclientid", "")
		v.SetDefault("googleclientsecret", "")
		v.SetDefault("rowlimit", 25000)
		v.SetDefault("maxperiods", 4)
		v.SetDefault("inspectionconcurrency", 5)
		v.SetDefault("inspectiontimeoutseconds", 120)
		v.SetDefault("sitemaptimeoutseconds", 10)
		v.SetDefault("sessionttlseconds", 1800)
		v.SetDefault("jobintervalseconds", 300)
		v.SetDefault("urllistsseedfile", "")

		// Bind environment variables
		v.BindEnv("appname", "SEARCHLENS_APP_NAME")
		v.BindEnv("appport", "SEARCHLENS_APP_PORT")
		v.BindEnv("environment", "SEARCHLENS_ENV")
		v.BindEnv("loglevel", "SEARCHLENS_LOG_LEVEL")
		v.BindEnv("storagepath", "SEARCHLENS_STORAGE_PATH")
		v.BindEnv("logsdir", "SEARCHLENS_LOGS_DIR")
		v.BindEnv("logsmaxsizeinmb", "SEARCHLENS_LOGS_MAX_SIZE_IN_MB")
		v.BindEnv("logsmaxbackups", "SEARCHLENS_LOGS_MAX_BACKUPS")
		v.BindEnv("logsmaxageindays", "SEARCHLENS_LOGS_MAX_AGE_IN_DAYS")
		v.BindEnv("dbtype", "SEARCHLENS_DB_TYPE")
		v.BindEnv("dbmaxopenconns", "SEARCHLENS_DB_MAX_OPEN_CONNS")
		v.BindEnv("dbmaxidleconns", "SEARCHLENS_DB_MAX_IDLE_CONNS")
		v.BindEnv("googlecredentialsfile", "SEARCHLENS_GOOGLE_CREDENTIALS_FILE")
		v.BindEnv("googletokenfile", "SEARCHLENS_GOOGLE_TOKEN_FILE")
		v.BindEnv("googleclientid", "SEARCHLENS_GOOGLE_CLIENT_ID")
		v.BindEnv("googleclientsecret", "SEARCHLENS_GOOGLE_CLIENT_SECRET")
		v.BindEnv("rowlimit", "SEARCHLENS_ROW_LIMIT")
		v.BindEnv("maxperiods", "SEARCHLENS_MAX_PERIODS")
		v.BindEnv("inspectionconcurrency", "SEARCHLENS_INSPECTION_CONCURRENCY")
		v.BindEnv("inspectiontimeoutseconds", "SEARCHLENS_INSPECTION_TIMEOUT_SECONDS")
		v.BindEnv("sitemaptimeoutseconds", "SEARCHLENS_SITEMAP_TIMEOUT_SECONDS")
		v.BindEnv("sessionttlseconds", "SEARCHLENS_SESSION_TTL_SECONDS")
		v.BindEnv("jobintervalseconds", "SEARCHLENS_JOB_INTERVAL_SECONDS")
		v.BindEnv("urllistsseedfile", "SEARCHLENS_URL_LISTS_SEED_FILE")

		cfg = &Config{}
		if err := v.Unmarshal(cfg); err != nil {
			log.Fatalf("config: failed to unmarshal configuration: %v", err)
		}

		// Validate
		if err := cfg.validate(); err != nil {
			log.Fatalf("config: invalid configuration: %v", err)
		}

		// Set derived values
		cfg.DatabaseName = cfg.GetDatabasePath()
	})
	return cfg
}

// validate checks the configuration for errors
func (c *Config) validate() error {
	validEnvs := map[string]bool{
		Development: true,
		Production:  true,
		Test:        true,
	}
	if !validEnvs[c.Environment] {
		return fmt.Errorf("invalid environment: %s", c.Environment)
	}

	validDBTypes := map[string]bool{
		SQLiteDatabase: true,
	}
	if !validDBTypes[c.DatabaseType] {
		return fmt.Errorf("invalid database type: %s", c.DatabaseType)
	}

	if c.RowLimit < 1 {
		return fmt.Errorf("rowlimit must be positive, got %d", c.RowLimit)
	}
	if c.MaxPeriods < 1 {
		return fmt.Errorf("maxperiods must be at least 1, got %d", c.MaxPeriods)
	}
	if c.InspectionConcurrency < 1 {
		return fmt.Errorf("inspectionconcurrency must be at least 1, got %d", c.InspectionConcurrency)
	}

	// A token file without the client pair that minted it cannot be refreshed
	if c.GoogleTokenFile != "" && (c.GoogleClientID == "" || c.GoogleClientSecret == "") {
		return fmt.Errorf("googletokenfile requires googleclientid and googleclientsecret")
	}

	return nil
}

// GetDatabasePath returns the appropriate database path based on environment
func (c *Config) GetDatabasePath() string {
	if c.DatabaseName == "" {
		c.DatabaseName = filepath.Join(c.StoragePath,
			fmt.Sprintf("%s-%s.db", c.AppName, c.Environment))
	}
	return c.DatabaseName
}

// IsDevelopment returns true if the environment is development
func (c *Config) IsDevelopment() bool {
	return c.Environment == Development
}

// IsProduction returns true if the environment is production
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}

// IsTest returns true if the environment is test
func (c *Config) IsTest() bool {
	return c.Environment == Test
}

// GetPort returns the HTTP server port
func (c *Config) GetPort() string {
	return c.AppPort
}

// GetMaxOpenConns returns the appropriate MaxOpenConns value based on environment
// If explicitly set via env var, uses that value. Otherwise:
// - Test: 1 (required for E2E test stability)
// - Development/Production: 10 (allows concurrent reads for parallel queries)
func (c *Config) GetMaxOpenConns() int {
	if c.DatabaseMaxOpenConns > 0 {
		return c.DatabaseMaxOpenConns
	}

	if c.Environment == Test {
		return 1
	}

	return 10
}

// GetMaxIdleConns returns the appropriate MaxIdleConns value based on environment
func (c *Config) GetMaxIdleConns() int {
	if c.DatabaseMaxIdleConns > 0 {
		return c.DatabaseMaxIdleConns
	}

	if c.Environment == Test {
		return 1
	}

	return 5
}

// GetLogLevel returns the log level as a string
func (c *Config) GetLogLevel() string {
	return string(c.LogLevel)
}

// InspectionTimeout returns the deadline applied to one inspection batch.
func (c *Config) InspectionTimeout() time.Duration {
	return time.Duration(c.InspectionTimeoutSeconds) * time.Second
}

// SitemapTimeout returns the HTTP client timeout for sitemap fetches.
func (c *Config) SitemapTimeout() time.Duration {
	return time.Duration(c.SitemapTimeoutSeconds) * time.Second
}

// SessionTTL returns how long an idle session survives before the sweeper
// removes it.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLSeconds) * time.Second
}

// JobInterval returns the background job tick interval.
func (c *Config) JobInterval() time.Duration {
	return time.Duration(c.JobIntervalSeconds) * time.Second
}

// Reset clears the cached configuration; intended for tests.
func Reset() {
	once = sync.Once{}
	cfg = nil
}
