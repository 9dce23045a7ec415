package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type ServiceConfig struct {
	Port       string
	LogDir     string
	LogLevel   string
	AssetCfg   AssetConfig
	ReportCfg  ReportConfig
	SessionCfg SessionConfig
	RedisCfg   RedisConfig
	MinioCfg   MinioConfig
	RiskCfg    RiskConfig
}

type AssetConfig struct {
	ModelDir     string
	DefaultModel string
}

type ReportConfig struct {
	ReportsDir string
}

type SessionConfig struct {
	Store string // "memory" or "redis"
	TTL   time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type MinioConfig struct {
	Enabled        bool
	MinioURL       string
	MinioAccessKey string
	MinioSecretKey string
	MinioLocation  string
	MinioSecure    string
	ReportBucket   string
	PresignExpiry  time.Duration
}

// RiskConfig holds the verdict policy. Probability thresholds are exclusive
// lower bounds, driver thresholds are inclusive.
type RiskConfig struct {
	HighProbability   float64
	MediumProbability float64
	LowProbability    float64
	HighDrivers       int
	MediumDrivers     int
	LowDrivers        int
	RecentPolicyDays  int
	HighValueClaim    float64
}

func DefaultRiskConfig() RiskConfig {
	return RiskConfig{
		HighProbability:   0.7,
		MediumProbability: 0.3,
		LowProbability:    0.1,
		HighDrivers:       3,
		MediumDrivers:     2,
		LowDrivers:        1,
		RecentPolicyDays:  30,
		HighValueClaim:    20000,
	}
}

func New() *ServiceConfig {
	// .env is optional; real environment variables always win
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	defaults := DefaultRiskConfig()
	return &ServiceConfig{
		Port:     getEnvOrDefault("PORT", "8090"),
		LogDir:   getEnvOrDefault("LOG_DIR", "log"),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		AssetCfg: AssetConfig{
			ModelDir:     getEnvOrDefault("MODEL_DIR", "models"),
			DefaultModel: getEnvOrDefault("DEFAULT_MODEL", "XGBoost (Best Performance)"),
		},
		ReportCfg: ReportConfig{
			ReportsDir: getEnvOrDefault("REPORTS_DIR", "reports"),
		},
		SessionCfg: SessionConfig{
			Store: getEnvOrDefault("SESSION_STORE", "memory"),
			TTL:   getDurationOrDefault("SESSION_TTL", 2*time.Hour),
		},
		RedisCfg: RedisConfig{
			Host:     getEnvOrDefault("REDIS_HOST", "localhost"),
			Port:     getEnvOrDefault("REDIS_PORT", "6379"),
			Password: getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:       getIntOrDefault("REDIS_DB", 0),
		},
		MinioCfg: MinioConfig{
			Enabled:        getBoolOrDefault("MINIO_ENABLED", false),
			MinioURL:       getEnvOrDefault("MINIO_ENDPOINT", "http://localhost:9000"),
			MinioAccessKey: getEnvOrDefault("MINIO_ACCESS_KEY", "minio"),
			MinioSecretKey: getEnvOrDefault("MINIO_SECRET_KEY", "minio123"),
			MinioLocation:  getEnvOrDefault("MINIO_LOCATION", "us-east-1"),
			MinioSecure:    getEnvOrDefault("MINIO_SECURE", "false"),
			ReportBucket:   getEnvOrDefault("MINIO_REPORT_BUCKET", "fraud-reports"),
			PresignExpiry:  getDurationOrDefault("MINIO_PRESIGN_EXPIRY", 24*time.Hour),
		},
		RiskCfg: RiskConfig{
			HighProbability:   getFloatOrDefault("RISK_HIGH_PROBABILITY", defaults.HighProbability),
			MediumProbability: getFloatOrDefault("RISK_MEDIUM_PROBABILITY", defaults.MediumProbability),
			LowProbability:    getFloatOrDefault("RISK_LOW_PROBABILITY", defaults.LowProbability),
			HighDrivers:       getIntOrDefault("RISK_HIGH_DRIVERS", defaults.HighDrivers),
			MediumDrivers:     getIntOrDefault("RISK_MEDIUM_DRIVERS", defaults.MediumDrivers),
			LowDrivers:        getIntOrDefault("RISK_LOW_DRIVERS", defaults.LowDrivers),
			RecentPolicyDays:  getIntOrDefault("RISK_POLICY_AGE_DAYS", defaults.RecentPolicyDays),
			HighValueClaim:    getFloatOrDefault("RISK_HIGH_VALUE_CLAIM", defaults.HighValueClaim),
		},
	}
}

// Validate rejects configurations that would make the verdict table ambiguous.
func (c *ServiceConfig) Validate() error {
	if err := c.RiskCfg.Validate(); err != nil {
		return err
	}
	switch c.SessionCfg.Store {
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported SESSION_STORE %q (want memory or redis)", c.SessionCfg.Store)
	}
	if c.SessionCfg.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionCfg.TTL)
	}
	return nil
}

func (r RiskConfig) Validate() error {
	if !(r.HighProbability > r.MediumProbability && r.MediumProbability > r.LowProbability) {
		return fmt.Errorf("probability thresholds must be strictly decreasing: high=%v medium=%v low=%v",
			r.HighProbability, r.MediumProbability, r.LowProbability)
	}
	if r.LowProbability < 0 || r.HighProbability > 1 {
		return fmt.Errorf("probability thresholds must lie in [0,1]")
	}
	if !(r.HighDrivers > r.MediumDrivers && r.MediumDrivers > r.LowDrivers && r.LowDrivers >= 1) {
		return fmt.Errorf("driver thresholds must be strictly decreasing and at least 1: high=%d medium=%d low=%d",
			r.HighDrivers, r.MediumDrivers, r.LowDrivers)
	}
	if r.RecentPolicyDays <= 0 || r.HighValueClaim <= 0 {
		return fmt.Errorf("rule thresholds must be positive")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("invalid integer in environment, using default", "key", key, "value", raw, "default", defaultValue)
		return defaultValue
	}
	return value
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		slog.Warn("invalid float in environment, using default", "key", key, "value", raw, "default", defaultValue)
		return defaultValue
	}
	return value
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		slog.Warn("invalid bool in environment, using default", "key", key, "value", raw, "default", defaultValue)
		return defaultValue
	}
	return value
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		slog.Warn("invalid duration in environment, using default", "key", key, "value", raw, "default", defaultValue)
		return defaultValue
	}
	return value
}
