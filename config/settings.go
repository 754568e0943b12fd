package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultJWTSecret is only accepted outside of production.
	DefaultJWTSecret = "your-super-secret-jwt-key-change-this-in-production"

	DBTypeSQLite   = "sqlite"
	DBTypePostgres = "postgres"

	ImageStoreDisk = "disk"
	ImageStoreS3   = "s3"
)

// Config is the typed view of the environment. It is built once in main and
// handed to every component that needs it.
type Config struct {
	Port        string
	Environment string

	JWTSecret string
	TokenTTL  time.Duration

	AdminUsername string
	AdminPassword string

	DBType      string
	DBPath      string
	PostgresDSN string

	ImageStore  string
	UploadPath  string
	MaxFileSize int64
	S3Bucket    string
	S3Prefix    string
	S3PublicURL string
	AWSRegion   string

	AcceptedOrigins []string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	SeedSampleProjects bool

	LogLevel  string
	LogFormat string

	// Maintenance modes run against the database and exit before serving.
	GenerateModels       bool
	GenerateOutPath      string
	GenerateColumnReport bool
}

// Load builds a Config from an environment map produced by New.
func Load(c map[string]string) (*Config, error) {
	environment := GetString(c, "ENVIRONMENT", GetString(c, "NODE_ENV", "development"))

	cfg := &Config{
		Port:        GetString(c, "PORT", "3001"),
		Environment: environment,

		JWTSecret: GetString(c, "JWT_SECRET", DefaultJWTSecret),
		TokenTTL:  time.Duration(GetInt(c, "TOKEN_TTL_HOURS", 24)) * time.Hour,

		AdminUsername: GetString(c, "ADMIN_USERNAME", "admin"),
		AdminPassword: GetString(c, "ADMIN_PASSWORD", "smartscale2024"),

		DBType: normalizeDBType(GetString(c, "DB_TYPE", DBTypeSQLite)),
		DBPath: GetString(c, "DB_PATH", "./database/portfolio.db"),

		ImageStore:  strings.ToLower(GetString(c, "IMAGE_STORE", ImageStoreDisk)),
		UploadPath:  GetString(c, "UPLOAD_PATH", "./uploads"),
		MaxFileSize: int64(GetInt(c, "MAX_FILE_SIZE", 5*1024*1024)),
		S3Bucket:    GetString(c, "S3_BUCKET", ""),
		S3Prefix:    GetString(c, "S3_PREFIX", "projects"),
		S3PublicURL: GetString(c, "S3_PUBLIC_URL", ""),
		AWSRegion:   GetString(c, "AWS_REGION", ""),

		AcceptedOrigins: GetList(c, "ACCEPTED_ORIGINS", GetList(c, "CORS_ORIGIN", []string{"http://localhost:3000"})),

		RateLimitRequests: GetInt(c, "RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(GetInt(c, "RATE_LIMIT_WINDOW_MINUTES", 15)) * time.Minute,

		ReadTimeout:  time.Duration(GetInt(c, "READ_TIMEOUT_SECONDS", 180)) * time.Second,
		WriteTimeout: time.Duration(GetInt(c, "WRITE_TIMEOUT_SECONDS", 180)) * time.Second,
		IdleTimeout:  time.Duration(GetInt(c, "IDLE_TIMEOUT_SECONDS", 180)) * time.Second,

		SeedSampleProjects: GetBool(c, "SEED_SAMPLE_PROJECTS", true),

		LogLevel:  strings.ToLower(GetString(c, "LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(GetString(c, "LOG_FORMAT", "json")),

		GenerateModels:       GetBool(c, "GENERATE_MODELS", false),
		GenerateOutPath:      GetString(c, "GENERATE_OUT_PATH", "./generated"),
		GenerateColumnReport: GetBool(c, "GENERATE_COLUMN_REPORT", false),
	}

	if cfg.DBType == DBTypePostgres {
		cfg.PostgresDSN = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			GetString(c, "SUPABASE_DB_HOST", ""),
			GetString(c, "SUPABASE_DB_USER", ""),
			GetString(c, "SUPABASE_DB_PASSWORD", ""),
			GetString(c, "SUPABASE_DB_NAME", ""),
			GetString(c, "SUPABASE_DB_PORT", "5432"),
			GetString(c, "SUPABASE_DB_SSLMODE", "require"),
		)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func (c *Config) Validate() error {
	if c.IsProduction() && c.JWTSecret == DefaultJWTSecret {
		return errors.New("JWT_SECRET must be set in production")
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL_HOURS must be positive")
	}
	if c.AdminUsername == "" || c.AdminPassword == "" {
		return errors.New("ADMIN_USERNAME and ADMIN_PASSWORD are required")
	}
	if c.MaxFileSize <= 0 {
		return errors.New("MAX_FILE_SIZE must be positive")
	}
	if c.RateLimitRequests <= 0 || c.RateLimitWindow <= 0 {
		return errors.New("rate limit requests and window must be positive")
	}

	switch c.DBType {
	case DBTypeSQLite:
		if c.DBPath == "" {
			return errors.New("DB_PATH is required for sqlite")
		}
	case DBTypePostgres:
	default:
		return fmt.Errorf("unsupported DB_TYPE %q", c.DBType)
	}

	switch c.ImageStore {
	case ImageStoreDisk:
		if c.UploadPath == "" {
			return errors.New("UPLOAD_PATH is required for the disk image store")
		}
	case ImageStoreS3:
		if c.S3Bucket == "" {
			return errors.New("S3_BUCKET is required for the s3 image store")
		}
		if c.S3PublicURL == "" {
			return errors.New("S3_PUBLIC_URL is required for the s3 image store")
		}
	default:
		return fmt.Errorf("unsupported IMAGE_STORE %q", c.ImageStore)
	}

	return nil
}

// supa is what the old deployment called its postgres database.
func normalizeDBType(dbType string) string {
	switch strings.ToLower(dbType) {
	case "supa", "supabase", "postgres", "postgresql":
		return DBTypePostgres
	default:
		return strings.ToLower(dbType)
	}
}
