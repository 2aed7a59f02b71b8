package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Data source kinds
const (
	SourceArchive  = "archive"
	SourcePostgres = "postgres"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Input data
	Data DataConfig

	// Training run
	Run RunConfig

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
	APIRateLimit   float64 // requests per second, 0 disables
}

// DataConfig describes where company records are loaded from
type DataConfig struct {
	Source   string // archive, postgres
	Archive  string // zip archive or plain .csv, local path or http(s) URL
	CSVName  string // file inside the archive, empty = first .csv
	CacheDir string // download cache for remote archives
}

// RunConfig holds per-run settings that are not model hyperparameters
type RunConfig struct {
	ReportDir    string
	TrainConfig  string // YAML path, empty = built-in defaults
	Workers      int
	ScheduleCron string
	KeepRuns     int  // report runs kept on disk by the prune job
	Persist      bool // save run reports to PostgreSQL
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
	TTL      time.Duration
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	ConnectTimeout  time.Duration
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		Data: DataConfig{
			Source:   getEnv("DATA_SOURCE", SourceArchive),
			Archive:  getEnv("DATA_ARCHIVE", "stockdata.zip"),
			CSVName:  getEnv("DATA_CSV_NAME", ""),
			CacheDir: getEnv("DATA_CACHE_DIR", ".cache/vwapcast"),
		},

		Run: RunConfig{
			ReportDir:    getEnv("REPORT_DIR", "reports"),
			TrainConfig:  getEnv("TRAIN_CONFIG", ""),
			Workers:      getEnvAsInt("WORKERS", 1),
			ScheduleCron: getEnv("SCHEDULE_CRON", "0 0 18 * * 1-5"),
			KeepRuns:     getEnvAsInt("REPORT_KEEP_RUNS", 30),
			Persist:      getEnvAsBool("PERSIST_RESULTS", false),
		},

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
			ConnectTimeout:  getEnvAsDuration("DB_CONNECT_TIMEOUT", "30s"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			TTL:      getEnvAsDuration("REDIS_REPORT_TTL", "24h"),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),

		// Monitoring
		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		APIRateLimit:   getEnvAsFloat("API_RATE_LIMIT", 20),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	// Validate environment
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	switch c.Data.Source {
	case SourceArchive:
		if c.Data.Archive == "" {
			return fmt.Errorf("DATA_ARCHIVE is required when DATA_SOURCE=%s", SourceArchive)
		}
	case SourcePostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when DATA_SOURCE=%s", SourcePostgres)
		}
	default:
		return fmt.Errorf("DATA_SOURCE must be one of: %s, %s", SourceArchive, SourcePostgres)
	}

	if c.Run.Persist && c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required when PERSIST_RESULTS=true")
	}

	if c.Run.Workers < 1 {
		return fmt.Errorf("WORKERS must be >= 1")
	}

	if c.Run.KeepRuns < 1 {
		return fmt.Errorf("REPORT_KEEP_RUNS must be >= 1")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	// Try paths in order of priority
	paths := []string{
		".env", // Current directory
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
