package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Metrics   MetricsConfig
	Scheduler SchedulerConfig
	Jobs      JobsConfig
	Requests  RequestsConfig
}

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

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig describes how tokens issued by the hosted auth provider are verified.
type JWTConfig struct {
	Secret   string
	Issuer   string
	Audience string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool
}

// SchedulerConfig controls the in-process daily triggers for the batch jobs.
type SchedulerConfig struct {
	Enabled                bool
	OverdueCheckHour       int
	PreventiveGenerateHour int
	PreventiveLookahead    time.Duration
	Location               string
}

// JobsConfig tunes the job queue and the distributed run lock.
type JobsConfig struct {
	Workers    int
	Retries    int
	RetryDelay time.Duration
	LockTTL    time.Duration
}

// RequestsConfig carries maintenance request read-path tuning.
type RequestsConfig struct {
	OverdueCacheTTL time.Duration
	DefaultPageSize int
	MaxPageSize     int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:            v.GetString("DB_HOST"),
		Port:            v.GetInt("DB_PORT"),
		User:            v.GetString("DB_USER"),
		Password:        v.GetString("DB_PASSWORD"),
		Name:            v.GetString("DB_NAME"),
		SSLMode:         v.GetString("DB_SSL_MODE"),
		MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
		ConnMaxLifetime: parseDuration(v.GetString("DB_CONN_MAX_LIFETIME"), time.Hour),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:   v.GetString("JWT_SECRET"),
		Issuer:   v.GetString("JWT_ISSUER"),
		Audience: v.GetString("JWT_AUDIENCE"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Metrics = MetricsConfig{Enabled: v.GetBool("ENABLE_METRICS")}

	cfg.Scheduler = SchedulerConfig{
		Enabled:                v.GetBool("ENABLE_SCHEDULER"),
		OverdueCheckHour:       clampHour(v.GetInt("OVERDUE_CHECK_HOUR"), 8),
		PreventiveGenerateHour: clampHour(v.GetInt("PREVENTIVE_GENERATE_HOUR"), 6),
		PreventiveLookahead:    parseDuration(v.GetString("PREVENTIVE_LOOKAHEAD"), 30*24*time.Hour),
		Location:               v.GetString("SCHEDULER_TIMEZONE"),
	}

	cfg.Jobs = JobsConfig{
		Workers:    v.GetInt("JOB_WORKERS"),
		Retries:    v.GetInt("JOB_RETRIES"),
		RetryDelay: parseDuration(v.GetString("JOB_RETRY_DELAY"), 30*time.Second),
		LockTTL:    parseDuration(v.GetString("JOB_LOCK_TTL"), 10*time.Minute),
	}

	cfg.Requests = RequestsConfig{
		OverdueCacheTTL: parseDuration(v.GetString("OVERDUE_CACHE_TTL"), time.Minute),
		DefaultPageSize: v.GetInt("REQUESTS_DEFAULT_PAGE_SIZE"),
		MaxPageSize:     v.GetInt("REQUESTS_MAX_PAGE_SIZE"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "gearguard")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "1h")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "")
	v.SetDefault("JWT_AUDIENCE", "authenticated")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_METRICS", true)

	v.SetDefault("ENABLE_SCHEDULER", false)
	v.SetDefault("OVERDUE_CHECK_HOUR", 8)
	v.SetDefault("PREVENTIVE_GENERATE_HOUR", 6)
	v.SetDefault("PREVENTIVE_LOOKAHEAD", "720h")
	v.SetDefault("SCHEDULER_TIMEZONE", "UTC")

	v.SetDefault("JOB_WORKERS", 1)
	v.SetDefault("JOB_RETRIES", 3)
	v.SetDefault("JOB_RETRY_DELAY", "30s")
	v.SetDefault("JOB_LOCK_TTL", "10m")

	v.SetDefault("OVERDUE_CACHE_TTL", "1m")
	v.SetDefault("REQUESTS_DEFAULT_PAGE_SIZE", 10)
	v.SetDefault("REQUESTS_MAX_PAGE_SIZE", 100)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func clampHour(hour, fallback int) int {
	if hour < 0 || hour > 23 {
		return fallback
	}
	return hour
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
