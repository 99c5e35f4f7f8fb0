// Package config loads application configuration from environment variables,
// with an optional YAML settings file for scanner tuning.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment constants
const (
	EnvProduction = "production"
)

// Config holds all application configuration.
type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Log      LogConfig
	Scanner  ScannerConfig
	Advisory AdvisoryConfig
	Reviewer ReviewerConfig
	Worker   WorkerConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Name  string
	Env   string
	Debug bool
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	MaxBodySize     int64
}

// Addr returns the listen address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN returns the Postgres connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Host         string
	Port         int
	Password     string
	DB           int
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Addr returns the Redis address.
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string
	Format string
}

// ScannerConfig holds scan pipeline configuration.
type ScannerConfig struct {
	// RulesDir is the root directory of semgrep rule directories, one
	// subdirectory per language.
	RulesDir string
	// CloneDir is the root under which repositories are cloned. Review file
	// reads are confined to this directory.
	CloneDir string
	// SettingsFile optionally points to a YAML file overriding the fields in
	// Settings. Environment values are used when unset.
	SettingsFile string

	SemgrepBin string
	SccBin     string

	Settings ScannerSettings
}

// ScannerSettings are the tunable normalization and execution settings.
// They may be supplied through the environment or a YAML settings file.
type ScannerSettings struct {
	// ExcludeLangs are detected languages never scanned (e.g. "JSON").
	ExcludeLangs []string `yaml:"exclude_langs"`
	// ExcludeGlobs are path globs passed to the analysis engine.
	ExcludeGlobs []string `yaml:"exclude_globs"`
	// SuppressPaths drop findings whose short rule id contains any entry.
	SuppressPaths []string `yaml:"suppress_paths"`
	// SuppressRules drop findings whose short rule id equals any entry.
	SuppressRules []string `yaml:"suppress_rules"`
	// WriteSarifToFile also writes each normalized document to SarifWriteDir.
	WriteSarifToFile bool   `yaml:"write_sarif_to_file"`
	SarifWriteDir    string `yaml:"sarif_write_dir"`
}

// AdvisoryConfig holds advisory ingestion configuration.
type AdvisoryConfig struct {
	// GitHubToken authenticates GraphQL advisory and repository queries.
	GitHubToken string
	// GraphQLURL is overridable for tests.
	GraphQLURL string
	// PageSize is the advisories-per-page for cursor pagination.
	PageSize int
	// RequestTimeout bounds each outbound advisory/metadata/index call.
	RequestTimeout time.Duration
	// RequestsPerSecond rate-limits outbound GraphQL calls.
	RequestsPerSecond float64
	// RefreshWorkers bounds the per-package enrichment fan-out.
	RefreshWorkers int
	// RefreshSchedule is an optional cron spec for periodic refresh
	// (empty disables scheduling).
	RefreshSchedule string
	// RefreshScheduleDays is the lookback window used by scheduled runs.
	RefreshScheduleDays int
}

// ReviewerConfig holds AI reviewer configuration.
type ReviewerConfig struct {
	// GeminiAPIKey enables the review endpoint when set.
	GeminiAPIKey string
	GeminiModel  string
	Timeout      time.Duration
}

// IsConfigured reports whether the reviewer can be used.
func (c *ReviewerConfig) IsConfigured() bool {
	return c.GeminiAPIKey != ""
}

// WorkerConfig holds background job worker configuration.
type WorkerConfig struct {
	// Concurrency bounds the total number of in-flight background jobs.
	Concurrency int
	// ScanQueuePriority and RefreshQueuePriority weight the two queues.
	ScanQueuePriority    int
	RefreshQueuePriority int
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:  getEnv("APP_NAME", "paladin"),
			Env:   getEnv("APP_ENV", "development"),
			Debug: getEnvBool("APP_DEBUG", false),
		},
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvInt("SERVER_PORT", 9001),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			RequestTimeout:  getEnvDuration("SERVER_REQUEST_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			MaxBodySize:     getEnvInt64("SERVER_MAX_BODY_SIZE", 1<<20),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "paladin"),
			Password:        getEnv("DB_PASSWORD", "secret"),
			Name:            getEnv("DB_NAME", "paladin"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnvInt("REDIS_PORT", 6379),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvInt("REDIS_DB", 0),
			PoolSize:     getEnvInt("REDIS_POOL_SIZE", 10),
			DialTimeout:  getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getEnvDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getEnvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Scanner: ScannerConfig{
			RulesDir:     getEnv("SCANNER_RULES_DIR", "/opt/paladin/semgrep-rules"),
			CloneDir:     getEnv("SCANNER_CLONE_DIR", "/var/lib/paladin/clones"),
			SettingsFile: getEnv("SCANNER_SETTINGS_FILE", ""),
			SemgrepBin:   getEnv("SCANNER_SEMGREP_BIN", "semgrep"),
			SccBin:       getEnv("SCANNER_SCC_BIN", "scc"),
			Settings: ScannerSettings{
				ExcludeLangs:     getEnvSlice("SCANNER_EXCLUDE_LANGS", nil),
				ExcludeGlobs:     getEnvSlice("SCANNER_EXCLUDE_GLOBS", nil),
				SuppressPaths:    getEnvSlice("SCANNER_SUPPRESS_PATHS", nil),
				SuppressRules:    getEnvSlice("SCANNER_SUPPRESS_RULES", nil),
				WriteSarifToFile: getEnvBool("SCANNER_WRITE_SARIF_TO_FILE", false),
				SarifWriteDir:    getEnv("SCANNER_SARIF_WRITE_DIR", ""),
			},
		},
		Advisory: AdvisoryConfig{
			GitHubToken:         getEnv("GITHUB_TOKEN", ""),
			GraphQLURL:          getEnv("GITHUB_GRAPHQL_URL", "https://api.github.com/graphql"),
			PageSize:            getEnvInt("ADVISORY_PAGE_SIZE", 50),
			RequestTimeout:      getEnvDuration("ADVISORY_REQUEST_TIMEOUT", 15*time.Second),
			RequestsPerSecond:   getEnvFloat("ADVISORY_REQUESTS_PER_SECOND", 5),
			RefreshWorkers:      getEnvInt("ADVISORY_REFRESH_WORKERS", 5),
			RefreshSchedule:     getEnv("ADVISORY_REFRESH_SCHEDULE", ""),
			RefreshScheduleDays: getEnvInt("ADVISORY_REFRESH_SCHEDULE_DAYS", 7),
		},
		Reviewer: ReviewerConfig{
			GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
			GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			Timeout:      getEnvDuration("REVIEWER_TIMEOUT", 30*time.Second),
		},
		Worker: WorkerConfig{
			Concurrency:          getEnvInt("WORKER_CONCURRENCY", 4),
			ScanQueuePriority:    getEnvInt("WORKER_SCAN_QUEUE_PRIORITY", 3),
			RefreshQueuePriority: getEnvInt("WORKER_REFRESH_QUEUE_PRIORITY", 1),
		},
	}

	if cfg.Scanner.SettingsFile != "" {
		if err := loadScannerSettings(cfg.Scanner.SettingsFile, &cfg.Scanner.Settings); err != nil {
			return nil, fmt.Errorf("failed to load scanner settings: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Scanner.RulesDir == "" {
		return fmt.Errorf("scanner rules dir is required")
	}
	if c.Scanner.CloneDir == "" {
		return fmt.Errorf("scanner clone dir is required")
	}
	if c.Worker.Concurrency < 1 {
		return fmt.Errorf("worker concurrency must be at least 1")
	}
	if c.Advisory.RefreshWorkers < 1 {
		return fmt.Errorf("advisory refresh workers must be at least 1")
	}
	if c.Advisory.PageSize < 1 || c.Advisory.PageSize > 100 {
		return fmt.Errorf("advisory page size must be between 1 and 100")
	}
	return nil
}

// IsProduction returns true if the application is in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Env == EnvProduction
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var result []string
		for _, v := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}
