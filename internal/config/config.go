package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the service, populated from the
// environment. A .env file is honored when present for local development.
type Config struct {
	Port string `env:"PORT" envDefault:"8080"`
	Env  string `env:"APP_ENV" envDefault:"development"`

	// When DATABASE_URL is set the Postgres backend is used; otherwise the
	// embedded SQLite store at DATABASE_PATH.
	DatabaseURL  string `env:"DATABASE_URL"`
	DatabasePath string `env:"DATABASE_PATH" envDefault:"affinity.db"`

	JWTSecret   string        `env:"JWT_SECRET,required"`
	TokenTTL    time.Duration `env:"TOKEN_TTL" envDefault:"168h"`
	BcryptCost  int           `env:"BCRYPT_COST" envDefault:"10"`
	DBSecretKey string        `env:"DB_SECRET_KEY,required"`

	UploadDir     string `env:"UPLOAD_DIR" envDefault:"uploads"`
	AvatarStorage string `env:"AVATAR_STORAGE" envDefault:"disk"` // disk or s3

	S3Endpoint        string `env:"S3_ENDPOINT"`
	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
	S3Bucket          string `env:"S3_BUCKET"`
	S3Region          string `env:"S3_REGION" envDefault:"us-east-1"`
	S3UseSSL          bool   `env:"S3_USE_SSL"`

	InferenceURL     string        `env:"INFERENCE_URL" envDefault:"https://abdoir-drug-target-binding-affinity.hf.space/predict"`
	InferenceTimeout time.Duration `env:"INFERENCE_TIMEOUT" envDefault:"30s"`

	// Gates the raw-SQL execute and clear-all browser endpoints.
	AllowUnsafeDBOps bool `env:"ALLOW_UNSAFE_DB_OPS"`

	CORSAllowedOrigin string `env:"CORS_ALLOWED_ORIGIN" envDefault:"*"`

	// When all three are set, an admin account is seeded at startup if no
	// user with AdminEmail exists yet.
	AdminUsername string `env:"ADMIN_USERNAME"`
	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`

	AuthRatePerSecond float64 `env:"AUTH_RATE_PER_SECOND" envDefault:"1"`
	AuthRateBurst     float64 `env:"AUTH_RATE_BURST" envDefault:"10"`
}

// Load reads the configuration from the environment, loading a .env file
// first when one exists in the working directory.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("load .env file: %w", err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters for HMAC-SHA256 security")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 14 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 14, got %d", c.BcryptCost)
	}
	switch c.AvatarStorage {
	case "disk":
	case "s3":
		if c.S3Endpoint == "" || c.S3AccessKeyID == "" || c.S3SecretAccessKey == "" || c.S3Bucket == "" {
			return fmt.Errorf("AVATAR_STORAGE=s3 requires S3_ENDPOINT, S3_ACCESS_KEY_ID, S3_SECRET_ACCESS_KEY and S3_BUCKET")
		}
	default:
		return fmt.Errorf("AVATAR_STORAGE must be disk or s3, got %q", c.AvatarStorage)
	}
	return nil
}

// IsDevelopment reports whether the service runs in development mode, which
// controls how much detail internal errors expose.
func (c *Config) IsDevelopment() bool {
	return c.Env != "production"
}
