package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"alfredoptarigan/resume-ats/internal/logger"
)

type Config struct {
	Server   ServerConfig
	Gemini   GeminiConfig
	Storage  StorageConfig
	Session  SessionConfig
	Database DatabaseConfig
	Log      logger.Config
}

type ServerConfig struct {
	Port string
	Env  string
}

type GeminiConfig struct {
	APIKey          string
	Model           string
	BaseURL         string
	Timeout         time.Duration
	MaxOutputTokens int32
}

type StorageConfig struct {
	MaxFileSize int64
}

type SessionConfig struct {
	CookieName string
	TTL        time.Duration
}

// DatabaseConfig backs the optional analysis archive.
type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// Load reads the configuration and initializes the global logger.
func Load() *Config {
	cfg, envFileLoaded := Read()

	logger.Init(cfg.Log)
	if !envFileLoaded {
		logger.Info().Msg("No .env file found. Using environment and default values.")
	}

	return cfg
}

// Read loads .env if present and reads the environment without touching
// the logger.
func Read() (*Config, bool) {
	envFileErr := godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
			Env:  getEnv("ENV", "development"),
		},
		Gemini: GeminiConfig{
			APIKey:          getEnv("GOOGLE_API_KEY", getEnv("GEMINI_API_KEY", "")),
			Model:           getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			BaseURL:         getEnv("GEMINI_BASE_URL", ""),
			Timeout:         getEnvAsDuration("MODEL_TIMEOUT", "60s"),
			MaxOutputTokens: int32(getEnvAsInt("MODEL_MAX_OUTPUT_TOKENS", 0)),
		},
		Storage: StorageConfig{
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 10485760),
		},
		Session: SessionConfig{
			CookieName: getEnv("SESSION_COOKIE", "resumeats_session"),
			TTL:        getEnvAsDuration("SESSION_TTL", "2h"),
		},
		Database: DatabaseConfig{
			Enabled:  getEnvAsBool("ARCHIVE_ENABLED", false),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "resume_ats"),
		},
		Log: logger.Config{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "pretty"),
		},
	}

	return cfg, envFileErr == nil
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

// IsDevelopment reports whether verbose SQL and request logging should be on.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := strings.TrimSpace(getEnv(key, ""))
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
