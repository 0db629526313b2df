package config

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config holds every externally configured setting of the server, the CLI and
// the audit lambda. Field names map 1:1 to environment variables.
type Config struct {
	Port      string `mapstructure:"PORT"`
	GinMode   string `mapstructure:"GIN_MODE"`
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogPretty bool   `mapstructure:"LOG_PRETTY"`

	JWTSecret            string `mapstructure:"JWT_SECRET"`
	JWTExpirationMinutes int    `mapstructure:"JWT_EXPIRATION_MINUTES" validate:"gte=1"`
	CORSOrigin           string `mapstructure:"CORS_ORIGIN"`

	ContentDriver     string `mapstructure:"CONTENT_DRIVER" validate:"oneof=mongo postgres memory"`
	MongoURI          string `mapstructure:"MONGO_URI" validate:"required_if=ContentDriver mongo"`
	MongoDatabase     string `mapstructure:"MONGO_DATABASE" validate:"required_if=ContentDriver mongo"`
	DatabaseURL       string `mapstructure:"DATABASE_URL" validate:"required_if=ContentDriver postgres"`
	DatabaseSecretARN string `mapstructure:"DATABASE_SECRET_ARN"`

	StorageDriver string `mapstructure:"STORAGE_DRIVER" validate:"oneof=s3 memory"`
	S3Endpoint    string `mapstructure:"S3_ENDPOINT" validate:"omitempty,url"`
	S3Region      string `mapstructure:"S3_REGION" validate:"required_if=StorageDriver s3"`
	S3AccessKey   string `mapstructure:"S3_ACCESS_KEY" validate:"required_with=S3SecretKey"`
	S3SecretKey   string `mapstructure:"S3_SECRET_KEY" validate:"required_with=S3AccessKey"`
	S3Bucket      string `mapstructure:"S3_BUCKET" validate:"required_if=StorageDriver s3"`
	MediaBaseURL  string `mapstructure:"MEDIA_BASE_URL" validate:"omitempty,url"`
	UploadMaxMB   int    `mapstructure:"UPLOAD_MAX_MB" validate:"gte=1"`

	SESFromEmail     string `mapstructure:"SES_FROM_EMAIL" validate:"omitempty,email"`
	ContactRecipient string `mapstructure:"CONTACT_RECIPIENT" validate:"omitempty,email"`

	// MetricsNamespace enables CloudWatch metrics from the media audit.
	MetricsNamespace string `mapstructure:"METRICS_NAMESPACE"`
}

// SecretFetcher returns the SecretString of the given secret.
type SecretFetcher func(ctx context.Context, arn string) (string, error)

var defaults = map[string]any{
	"PORT":                   "8080",
	"GIN_MODE":               "",
	"LOG_LEVEL":              "info",
	"LOG_PRETTY":             false,
	"JWT_SECRET":             "",
	"JWT_EXPIRATION_MINUTES": 60,
	"CORS_ORIGIN":            "",
	"CONTENT_DRIVER":         "mongo",
	"MONGO_URI":              "",
	"MONGO_DATABASE":         "website",
	"DATABASE_URL":           "",
	"DATABASE_SECRET_ARN":    "",
	"STORAGE_DRIVER":         "s3",
	"S3_ENDPOINT":            "",
	"S3_REGION":              "eu-central-1",
	"S3_ACCESS_KEY":          "",
	"S3_SECRET_KEY":          "",
	"S3_BUCKET":              "",
	"MEDIA_BASE_URL":         "",
	"UPLOAD_MAX_MB":          20,
	"SES_FROM_EMAIL":         "",
	"CONTACT_RECIPIENT":      "",
	"METRICS_NAMESPACE":      "",
}

// Load reads .env (if present) and the process environment, resolves database
// credentials from AWS Secrets Manager when DATABASE_SECRET_ARN is set, and
// validates the result. Any error here is a fatal configuration error.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}
	return load(ctx, fetchAWSSecret)
}

func load(ctx context.Context, fetch SecretFetcher) (*Config, error) {
	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("bind %s: %w", k, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.ContentDriver = strings.ToLower(strings.TrimSpace(cfg.ContentDriver))
	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(cfg.StorageDriver))

	if cfg.DatabaseSecretARN != "" {
		if err := cfg.applySecret(ctx, fetch); err != nil {
			return nil, err
		}
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applySecret(ctx context.Context, fetch SecretFetcher) error {
	raw, err := fetch(ctx, c.DatabaseSecretARN)
	if err != nil {
		return fmt.Errorf("get secret: %w", err)
	}
	var payload struct {
		DatabaseURL string `json:"DATABASE_URL"`
		MongoURI    string `json:"MONGO_URI"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return fmt.Errorf("parse secret: %w", err)
	}
	if c.DatabaseURL == "" {
		c.DatabaseURL = payload.DatabaseURL
	}
	if c.MongoURI == "" {
		c.MongoURI = payload.MongoURI
	}
	return nil
}

func fetchAWSSecret(ctx context.Context, arn string) (string, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return "", err
	}
	out, err := secretsmanager.NewFromConfig(awsCfg).GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{SecretId: &arn})
	if err != nil {
		return "", err
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("secret %s has no string value", arn)
	}
	return *out.SecretString, nil
}

// JWTExpiration is the lifetime of issued access tokens.
func (c *Config) JWTExpiration() time.Duration {
	return time.Duration(c.JWTExpirationMinutes) * time.Minute
}

// MaxUploadBytes is the largest accepted multipart upload.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.UploadMaxMB) << 20
}

// ContactEnabled reports whether the contact form can send mail.
func (c *Config) ContactEnabled() bool {
	return c.SESFromEmail != "" && c.ContactRecipient != ""
}
