package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	Port          int    `yaml:"port"`
	GinMode       string `yaml:"gin_mode"`
	SecureCookies bool   `yaml:"secure_cookies"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type OTPConfig struct {
	TTL string `yaml:"ttl"`
}

type SessionConfig struct {
	TTL string `yaml:"ttl"`
}

type CleanupConfig struct {
	Interval string `yaml:"interval"`
}

type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled"`
	RPS     float64 `yaml:"rps"`
	Burst   int     `yaml:"burst"`
}

type UploadsConfig struct {
	Dir     string `yaml:"dir"`
	BaseURL string `yaml:"base_url"`
}

type ConfigFile struct {
	App       AppConfig       `yaml:"app"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	SMTP      SMTPConfig      `yaml:"smtp"`
	OTP       OTPConfig       `yaml:"otp"`
	Session   SessionConfig   `yaml:"session"`
	Cleanup   CleanupConfig   `yaml:"cleanup"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Uploads   UploadsConfig   `yaml:"uploads"`
}

type Config struct {
	Port            string
	GinMode         string
	SecureCookies   bool
	DSN             string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	SMTPHost        string
	SMTPPort        int
	SMTPUsername    string
	SMTPPassword    string
	SMTPFrom        string
	OTPTTL          time.Duration
	SessionTTL      time.Duration
	CleanupInterval time.Duration
	RateLimit       RateLimitConfig
	UploadsDir      string
	UploadsBaseURL  string
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// Load reads config/config.yml (path overridable via CONFIG_PATH) and applies
// env fallbacks for secrets. Durations are parsed from their string form.
func Load() (*Config, error) {
	path := env("CONFIG_PATH", "config/config.yml")
	configFile, err := loadConfigFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	otpTTL, err := duration(configFile.OTP.TTL, 10*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid OTP TTL: %w", err)
	}

	sessionTTL, err := duration(configFile.Session.TTL, 7*24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("invalid session TTL: %w", err)
	}

	cleanupIvl, err := duration(configFile.Cleanup.Interval, time.Hour)
	if err != nil {
		return nil, fmt.Errorf("invalid cleanup interval: %w", err)
	}

	port := configFile.App.Port
	if port == 0 {
		port = 8080
	}

	dsn := configFile.Database.DSN
	if dsn == "" {
		dsn = env("DATABASE_DSN", "data/accounts.db")
	}

	return &Config{
		Port:            fmt.Sprintf("%d", port),
		GinMode:         configFile.App.GinMode,
		SecureCookies:   configFile.App.SecureCookies,
		DSN:             dsn,
		RedisAddr:       env("REDIS_ADDR", configFile.Redis.Addr),
		RedisPassword:   env("REDIS_PASSWORD", configFile.Redis.Password),
		RedisDB:         configFile.Redis.DB,
		SMTPHost:        configFile.SMTP.Host,
		SMTPPort:        configFile.SMTP.Port,
		SMTPUsername:    env("SMTP_USERNAME", configFile.SMTP.Username),
		SMTPPassword:    env("SMTP_PASSWORD", configFile.SMTP.Password),
		SMTPFrom:        configFile.SMTP.From,
		OTPTTL:          otpTTL,
		SessionTTL:      sessionTTL,
		CleanupInterval: cleanupIvl,
		RateLimit:       configFile.RateLimit,
		UploadsDir:      configFile.Uploads.Dir,
		UploadsBaseURL:  configFile.Uploads.BaseURL,
	}, nil
}

func loadConfigFile(path string) (*ConfigFile, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Classroom deployments often run with defaults only.
			return &ConfigFile{}, nil
		}
		return nil, fmt.Errorf("could not read config file at %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(bytes, &config); err != nil {
		return nil, fmt.Errorf("could not parse config yaml: %w", err)
	}

	return &config, nil
}

func duration(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	return time.ParseDuration(s)
}
