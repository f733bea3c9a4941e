package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Environment string
	Port        string
	LogLevel    string

	// APIURL is the root of the conference backend.
	APIURL string

	IdentityProvider string // "local" or "toolkit"
	IdentityAPIKey   string
	IdentityURL      string
	JWTSecret        string
	TokenExpiry      time.Duration

	HintStore   string // "memory" or "postgres"
	DatabaseURL string

	SignupRedirectDelay time.Duration
	InstanceIdleTTL     time.Duration
	HintTTL             time.Duration
	CORSOrigins         []string
	SecureCookies       bool

	EmailProvider         string // "ses" or "noop"
	EmailFrom             string
	EmailFromName         string
	AppURL                string
	AWSRegion             string
	AWSAccessKeyID        string
	AWSSecretAccessKey    string
	SESInsecureSkipVerify bool
}

// Load loads configuration from environment variables
// It attempts to load from .env file if not in production
func Load() (*Config, error) {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// In production .env might not exist and we rely on system environment variables.
	if env != "production" {
		if err := godotenv.Load(); err != nil {
			slog.Warn(".env file not found or couldn't be loaded", "err", err)
		}
	}

	cfg := &Config{
		Environment:        env,
		Port:               getenv("PORT", "8080"),
		LogLevel:           getenv("LOG_LEVEL", "info"),
		APIURL:             getenv("API_URL", "http://localhost:5000/api"),
		IdentityProvider:   strings.ToLower(getenv("IDENTITY_PROVIDER", "local")),
		IdentityAPIKey:     os.Getenv("IDENTITY_API_KEY"),
		IdentityURL:        getenv("IDENTITY_URL", "https://identitytoolkit.googleapis.com/v1"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		HintStore:          strings.ToLower(getenv("HINT_STORE", "memory")),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		CORSOrigins:        splitList(os.Getenv("CORS_ORIGINS")),
		EmailProvider:      strings.ToLower(getenv("EMAIL_PROVIDER", "noop")),
		EmailFrom:          os.Getenv("EMAIL_FROM"),
		EmailFromName:      getenv("EMAIL_FROM_NAME", "ConferNet"),
		AppURL:             getenv("APP_URL", "http://localhost:8080"),
		AWSRegion:          getenv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
	}

	var errs []error
	cfg.TokenExpiry = duration("TOKEN_EXPIRY", time.Hour, &errs)
	cfg.SignupRedirectDelay = duration("SIGNUP_REDIRECT_DELAY", time.Second, &errs)
	cfg.InstanceIdleTTL = duration("INSTANCE_IDLE_TTL", 30*time.Minute, &errs)
	cfg.HintTTL = duration("HINT_TTL", 30*24*time.Hour, &errs)
	cfg.SecureCookies = boolean("SECURE_COOKIES", env == "production", &errs)
	cfg.SESInsecureSkipVerify = boolean("SES_INSECURE_SKIP_VERIFY", false, &errs)
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	var errs []error
	switch c.IdentityProvider {
	case "local":
		if c.JWTSecret == "" {
			errs = append(errs, errors.New("JWT_SECRET is required for the local identity provider"))
		}
	case "toolkit":
		if c.IdentityAPIKey == "" {
			errs = append(errs, errors.New("IDENTITY_API_KEY is required for the toolkit identity provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("IDENTITY_PROVIDER: unknown provider %q", c.IdentityProvider))
	}
	switch c.HintStore {
	case "memory":
	case "postgres":
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres hint store"))
		}
	default:
		errs = append(errs, fmt.Errorf("HINT_STORE: unknown store %q", c.HintStore))
	}
	if c.EmailProvider == "ses" && c.EmailFrom == "" {
		errs = append(errs, errors.New("EMAIL_FROM is required for the ses email provider"))
	}
	if c.HintTTL > 0 && c.HintTTL < c.InstanceIdleTTL {
		errs = append(errs, errors.New("HINT_TTL must not be shorter than INSTANCE_IDLE_TTL"))
	}
	if c.APIURL == "" {
		errs = append(errs, errors.New("API_URL is required"))
	}
	return errors.Join(errs...)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func duration(key string, def time.Duration, errs *[]error) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		*errs = append(*errs, fmt.Errorf("%s: invalid duration %q", key, s))
		return def
	}
	return d
}

func boolean(key string, def bool, errs *[]error) bool {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: invalid boolean %q", key, s))
		return def
	}
	return b
}

// splitList parses a comma-separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
