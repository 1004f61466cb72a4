package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultHTTPAddr        = ":8080"
	defaultDatabaseURL     = "portal.db"
	defaultJWTSecret       = "change-me-jwt-secret"
	defaultJWTTTL          = "24h"
	defaultBlobBackend     = "local"
	defaultUploadsDir      = "./uploads"
	defaultStaticURLBase   = "/static/uploads"
	defaultMaxUploadSize   = 200 * 1024 * 1024 // 200 MiB
	defaultSettleDelay     = "500ms"
	defaultClearDelay      = "3s"
	defaultUnlockPerMinute = 10
	defaultUnlockBurst     = 5
	defaultGenAIRetries    = 5
	defaultGenAITimeout    = "30s"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	DatabaseURL string
	JWTSecret   string
	JWTTTL      time.Duration
	LogLevel    string
	LogFormat   string

	CORSAllowedOrigins []string

	Blob   BlobConfig
	Upload UploadConfig
	Unlock UnlockConfig
	GenAI  GenAIConfig
}

type BlobConfig struct {
	Backend       string // local | minio
	UploadsDir    string
	StaticURLBase string

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOUseSSL    bool
	// PublicBaseURL is prepended to "<bucket>/<key>" to build locators.
	MinIOPublicBaseURL string
}

type UploadConfig struct {
	MaxFileSize int64
	SettleDelay time.Duration
	ClearDelay  time.Duration
	SpoolDir    string
}

type UnlockConfig struct {
	RequestsPerMinute int
	Burst             int
}

type GenAIConfig struct {
	Endpoint   string
	APIKey     string
	Model      string
	MaxRetries int
	Timeout    time.Duration
}

// Load reads .env (if present), then CONFIG_FILE (if set), then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	if file := strings.TrimSpace(v.GetString("CONFIG_FILE")); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	cfg := &Config{
		AppEnv:      strings.ToLower(strings.TrimSpace(v.GetString("APP_ENV"))),
		HTTPAddr:    strings.TrimSpace(v.GetString("HTTP_ADDR")),
		DatabaseURL: strings.TrimSpace(v.GetString("DATABASE_URL")),
		JWTSecret:   strings.TrimSpace(v.GetString("JWT_SECRET")),
		LogLevel:    strings.ToUpper(strings.TrimSpace(v.GetString("LOG_LEVEL"))),
		LogFormat:   strings.ToLower(strings.TrimSpace(v.GetString("LOG_FORMAT"))),
		Blob: BlobConfig{
			Backend:            strings.ToLower(strings.TrimSpace(v.GetString("BLOB_BACKEND"))),
			UploadsDir:         v.GetString("UPLOADS_DIR"),
			StaticURLBase:      v.GetString("STATIC_URL_BASE"),
			MinIOEndpoint:      v.GetString("MINIO_ENDPOINT"),
			MinIOAccessKey:     v.GetString("MINIO_ACCESS_KEY"),
			MinIOSecretKey:     v.GetString("MINIO_SECRET_KEY"),
			MinIOUseSSL:        v.GetBool("MINIO_USE_SSL"),
			MinIOPublicBaseURL: v.GetString("MINIO_PUBLIC_BASE_URL"),
		},
		Upload: UploadConfig{
			MaxFileSize: v.GetInt64("UPLOAD_MAX_FILE_SIZE"),
			SpoolDir:    v.GetString("UPLOAD_SPOOL_DIR"),
		},
		Unlock: UnlockConfig{
			RequestsPerMinute: v.GetInt("UNLOCK_REQUESTS_PER_MINUTE"),
			Burst:             v.GetInt("UNLOCK_BURST"),
		},
		GenAI: GenAIConfig{
			Endpoint:   strings.TrimSpace(v.GetString("GENAI_ENDPOINT")),
			APIKey:     v.GetString("GENAI_API_KEY"),
			Model:      v.GetString("GENAI_MODEL"),
			MaxRetries: v.GetInt("GENAI_MAX_RETRIES"),
		},
	}

	for _, o := range strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	var err error
	if cfg.JWTTTL, err = parseDuration(v, "JWT_TTL"); err != nil {
		return nil, err
	}
	if cfg.Upload.SettleDelay, err = parseDuration(v, "UPLOAD_SETTLE_DELAY"); err != nil {
		return nil, err
	}
	if cfg.Upload.ClearDelay, err = parseDuration(v, "UPLOAD_CLEAR_DELAY"); err != nil {
		return nil, err
	}
	if cfg.GenAI.Timeout, err = parseDuration(v, "GENAI_TIMEOUT"); err != nil {
		return nil, err
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "dev")
	v.SetDefault("HTTP_ADDR", defaultHTTPAddr)
	v.SetDefault("DATABASE_URL", defaultDatabaseURL)
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_TTL", defaultJWTTTL)
	v.SetDefault("LOG_LEVEL", "INFO")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("BLOB_BACKEND", defaultBlobBackend)
	v.SetDefault("UPLOADS_DIR", defaultUploadsDir)
	v.SetDefault("STATIC_URL_BASE", defaultStaticURLBase)
	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("UPLOAD_MAX_FILE_SIZE", defaultMaxUploadSize)
	v.SetDefault("UPLOAD_SETTLE_DELAY", defaultSettleDelay)
	v.SetDefault("UPLOAD_CLEAR_DELAY", defaultClearDelay)
	v.SetDefault("UNLOCK_REQUESTS_PER_MINUTE", defaultUnlockPerMinute)
	v.SetDefault("UNLOCK_BURST", defaultUnlockBurst)
	v.SetDefault("GENAI_MAX_RETRIES", defaultGenAIRetries)
	v.SetDefault("GENAI_TIMEOUT", defaultGenAITimeout)
}

func validate(cfg *Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if cfg.Upload.MaxFileSize <= 0 {
		return fmt.Errorf("UPLOAD_MAX_FILE_SIZE must be > 0")
	}
	if cfg.Upload.SettleDelay <= 0 || cfg.Upload.ClearDelay <= 0 {
		return fmt.Errorf("UPLOAD_SETTLE_DELAY and UPLOAD_CLEAR_DELAY must be > 0")
	}
	if cfg.Unlock.RequestsPerMinute <= 0 || cfg.Unlock.Burst <= 0 {
		return fmt.Errorf("UNLOCK_REQUESTS_PER_MINUTE and UNLOCK_BURST must be > 0")
	}
	switch cfg.Blob.Backend {
	case "local":
		if cfg.Blob.UploadsDir == "" {
			return fmt.Errorf("UPLOADS_DIR must not be empty for local blob backend")
		}
	case "minio":
		if cfg.Blob.MinIOEndpoint == "" {
			return fmt.Errorf("MINIO_ENDPOINT is required for minio blob backend")
		}
	default:
		return fmt.Errorf("BLOB_BACKEND must be one of: local, minio")
	}

	if IsProdLike(cfg.AppEnv) {
		if cfg.JWTSecret == "" || cfg.JWTSecret == defaultJWTSecret {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
	}
	return nil
}

func IsProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func parseDuration(v *viper.Viper, name string) (time.Duration, error) {
	value := strings.TrimSpace(v.GetString(name))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}
