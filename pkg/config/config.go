package config

import (
	"errors"
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
	Admission AdmissionConfig
	Fees      FeesConfig
	Dashboard DashboardConfig
	Reports   ReportsConfig
	Mail      MailConfig
	Payments  PaymentsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig carries token lifetimes per principal type. Staff sessions are
// deliberately shorter than student/applicant portal sessions.
type JWTConfig struct {
	Secret                   string
	StaffExpiration          time.Duration
	StaffRefreshExpiration   time.Duration
	StudentExpiration        time.Duration
	StudentRefreshExpiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// AdmissionConfig holds eligibility bounds and the default document checklist.
type AdmissionConfig struct {
	MinAge            int
	MaxAge            int
	MinTenthPercent   float64
	MinTwelfthPercent float64
	RequiredDocuments []string
}

// FeesConfig tunes the background overdue sweep.
type FeesConfig struct {
	OverdueSweepInterval time.Duration
}

// DashboardConfig governs dashboard exposure and cache tuning.
type DashboardConfig struct {
	Enabled  bool
	CacheTTL time.Duration
}

// ReportsConfig configures asynchronous report generation.
type ReportsConfig struct {
	Enabled           bool
	StorageDir        string
	SignedURLSecret   string
	SignedURLTTL      time.Duration
	CleanupInterval   time.Duration
	WorkerConcurrency int
	WorkerRetries     int
}

// MailConfig configures the transactional email sender.
type MailConfig struct {
	Enabled   bool
	APIKey    string
	FromName  string
	FromEmail string
}

// PaymentsConfig configures the Midtrans Snap checkout integration.
type PaymentsConfig struct {
	Enabled    bool
	ServerKey  string
	Production bool
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
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:                   v.GetString("JWT_SECRET"),
		StaffExpiration:          parseDuration(v.GetString("JWT_STAFF_EXPIRATION"), 8*time.Hour),
		StaffRefreshExpiration:   parseDuration(v.GetString("JWT_STAFF_REFRESH_EXPIRATION"), 7*24*time.Hour),
		StudentExpiration:        parseDuration(v.GetString("JWT_STUDENT_EXPIRATION"), 24*time.Hour),
		StudentRefreshExpiration: parseDuration(v.GetString("JWT_STUDENT_REFRESH_EXPIRATION"), 30*24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Admission = AdmissionConfig{
		MinAge:            v.GetInt("ADMISSION_MIN_AGE"),
		MaxAge:            v.GetInt("ADMISSION_MAX_AGE"),
		MinTenthPercent:   v.GetFloat64("ADMISSION_MIN_TENTH_PERCENT"),
		MinTwelfthPercent: v.GetFloat64("ADMISSION_MIN_TWELFTH_PERCENT"),
		RequiredDocuments: splitAndTrim(v.GetString("ADMISSION_REQUIRED_DOCUMENTS")),
	}

	cfg.Fees = FeesConfig{
		OverdueSweepInterval: parseDuration(v.GetString("FEES_OVERDUE_SWEEP_INTERVAL"), time.Hour),
	}

	cfg.Dashboard = DashboardConfig{
		Enabled:  v.GetBool("ENABLE_DASHBOARD"),
		CacheTTL: parseDuration(v.GetString("DASHBOARD_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Reports = ReportsConfig{
		Enabled:           v.GetBool("ENABLE_REPORTS"),
		StorageDir:        v.GetString("REPORTS_STORAGE_DIR"),
		SignedURLSecret:   v.GetString("REPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:      parseDuration(v.GetString("REPORTS_SIGNED_URL_TTL"), 24*time.Hour),
		CleanupInterval:   parseDuration(v.GetString("REPORTS_CLEANUP_INTERVAL"), time.Hour),
		WorkerConcurrency: v.GetInt("REPORTS_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("REPORTS_WORKER_RETRIES"),
	}

	cfg.Mail = MailConfig{
		Enabled:   v.GetBool("ENABLE_MAIL"),
		APIKey:    v.GetString("SENDGRID_API_KEY"),
		FromName:  v.GetString("MAIL_FROM_NAME"),
		FromEmail: v.GetString("MAIL_FROM_EMAIL"),
	}

	cfg.Payments = PaymentsConfig{
		Enabled:    v.GetBool("ENABLE_ONLINE_PAYMENTS"),
		ServerKey:  v.GetString("MIDTRANS_SERVER_KEY"),
		Production: v.GetBool("MIDTRANS_PRODUCTION"),
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
	v.SetDefault("DB_NAME", "campus_erp")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_STAFF_EXPIRATION", "8h")
	v.SetDefault("JWT_STAFF_REFRESH_EXPIRATION", "168h")
	v.SetDefault("JWT_STUDENT_EXPIRATION", "24h")
	v.SetDefault("JWT_STUDENT_REFRESH_EXPIRATION", "720h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ADMISSION_MIN_AGE", 17)
	v.SetDefault("ADMISSION_MAX_AGE", 25)
	v.SetDefault("ADMISSION_MIN_TENTH_PERCENT", 60.0)
	v.SetDefault("ADMISSION_MIN_TWELFTH_PERCENT", 60.0)
	v.SetDefault("ADMISSION_REQUIRED_DOCUMENTS", "10th Mark Sheet,12th Mark Sheet,Transfer Certificate,Aadhar Card,Passport Photo,Caste Certificate (if applicable)")

	v.SetDefault("FEES_OVERDUE_SWEEP_INTERVAL", "1h")

	v.SetDefault("ENABLE_DASHBOARD", false)
	v.SetDefault("DASHBOARD_CACHE_TTL", "5m")

	v.SetDefault("ENABLE_REPORTS", false)
	v.SetDefault("REPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("REPORTS_SIGNED_URL_SECRET", "dev_reports_secret")
	v.SetDefault("REPORTS_SIGNED_URL_TTL", "24h")
	v.SetDefault("REPORTS_CLEANUP_INTERVAL", "1h")
	v.SetDefault("REPORTS_WORKER_CONCURRENCY", 1)
	v.SetDefault("REPORTS_WORKER_RETRIES", 3)

	v.SetDefault("ENABLE_MAIL", false)
	v.SetDefault("SENDGRID_API_KEY", "")
	v.SetDefault("MAIL_FROM_NAME", "Campus ERP")
	v.SetDefault("MAIL_FROM_EMAIL", "no-reply@campus-erp.local")

	v.SetDefault("ENABLE_ONLINE_PAYMENTS", false)
	v.SetDefault("MIDTRANS_SERVER_KEY", "")
	v.SetDefault("MIDTRANS_PRODUCTION", false)
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
