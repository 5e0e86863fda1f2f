package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port         string `env:"PORT,         default=8080"`
	Env          string `env:"ENV,          default=development"`
	JWTSecret    string `env:"JWT_SECRET,   required"`
	LogLevel     string `env:"LOG_LEVEL,    default=info"`
	CookieSecure bool   `env:"COOKIE_SECURE, default=false"`

	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS, default=http://localhost:5173"`
	BodyLimit      string   `env:"HTTP_BODY_LIMIT,      default=8M"`

	Auth    AuthConfig
	Upload  UploadConfig
	Mongo   MongoConfig
	Redis   RedisConfig
	Storage StorageConfig
}

type AuthConfig struct {
	BcryptCost int           `env:"BCRYPT_COST, default=10"`
	TokenTTL   time.Duration `env:"TOKEN_TTL,   default=24h"`
}

type UploadConfig struct {
	MaxPhotoBytes  int64         `env:"UPLOAD_MAX_PHOTO_BYTES,  default=1048576"`
	MaxResumeBytes int64         `env:"UPLOAD_MAX_RESUME_BYTES, default=5242880"`
	Timeout        time.Duration `env:"ASSET_UPLOAD_TIMEOUT,    default=30s"`
	CleanupWorkers int           `env:"ASSET_CLEANUP_WORKERS,   default=4"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=jobportal"`
}

type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR,      default=localhost:6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB,        default=0"`
	GuardTTL time.Duration `env:"REGISTER_GUARD_TTL, default=30s"`
}

// StorageConfig points at any S3-compatible bucket (AWS, Cloudflare R2, MinIO).
type StorageConfig struct {
	Bucket          string `env:"S3_BUCKET,            default=jobportal-assets"`
	Region          string `env:"S3_REGION,            default=auto"`
	Endpoint        string `env:"S3_ENDPOINT"`
	AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
	PublicBaseURL   string `env:"S3_PUBLIC_BASE_URL"`
	UsePathStyle    bool   `env:"S3_USE_PATH_STYLE,    default=true"`
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith resolves configuration from an arbitrary lookuper.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	if cfg.Auth.BcryptCost < 10 {
		cfg.Auth.BcryptCost = 10
	}
	return &cfg, nil
}
