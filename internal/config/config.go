package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

const (
	defaultJWTSecret        = "change-me-jwt-secret"
	defaultVerifyCodePepper = "change-me-verification-pepper"
)

// Config holds the API server configuration loaded from the environment.
type Config struct {
	AppEnv        string `env:"APP_ENV" envDefault:"dev"`
	Debug         bool   `env:"DEBUG" envDefault:"false"`
	HTTPAddr      string `env:"HTTP_ADDR" envDefault:":8080"`
	DatabaseURL   string `env:"DATABASE_URL" envDefault:"marketplace.db"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`
	UploadsDir    string `env:"UPLOADS_DIR" envDefault:"./uploads"`
	// DevConsoleDelivery prints verification codes and reset links to the log.
	DevConsoleDelivery bool `env:"DEV_CONSOLE_DELIVERY" envDefault:"true"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	Auth struct {
		JWTSecret              string        `env:"JWT_SECRET" envDefault:"change-me-jwt-secret"`
		JWTTTL                 time.Duration `env:"JWT_TTL" envDefault:"24h"`
		VerificationCodePepper string        `env:"VERIFICATION_CODE_PEPPER" envDefault:"change-me-verification-pepper"`
		VerifyCodeTTL          time.Duration `env:"VERIFY_CODE_TTL" envDefault:"10m"`
		VerifyResendCooldown   time.Duration `env:"VERIFY_RESEND_COOLDOWN" envDefault:"60s"`
		VerifiedWindow         time.Duration `env:"VERIFIED_WINDOW" envDefault:"30m"`
		ResetTokenTTL          time.Duration `env:"RESET_TOKEN_TTL" envDefault:"1h"`
		ResetURLBase           string        `env:"RESET_URL_BASE" envDefault:"http://localhost:3000/reset-password"`
	}

	// Redis is optional; when Addr is empty verification codes live in the
	// main database.
	Redis struct {
		Addr     string `env:"REDIS_ADDR" envDefault:""`
		Password string `env:"REDIS_PASSWORD" envDefault:""`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
	}

	WhatsApp struct {
		APIURL string `env:"WHATSAPP_API_URL" envDefault:""`
		Token  string `env:"WHATSAPP_TOKEN" envDefault:""`
	}

	Mail struct {
		WebhookURL string `env:"MAIL_WEBHOOK_URL" envDefault:""`
		From       string `env:"MAIL_FROM" envDefault:"no-reply@marketplace.local"`
	}
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	// .env is optional: in production the variables are set directly.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.AppEnv = strings.ToLower(strings.TrimSpace(cfg.AppEnv))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Auth.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if c.Auth.VerifyCodeTTL <= 0 {
		return fmt.Errorf("VERIFY_CODE_TTL must be > 0")
	}
	if c.Auth.VerifyResendCooldown <= 0 {
		return fmt.Errorf("VERIFY_RESEND_COOLDOWN must be > 0")
	}
	if c.Auth.VerifiedWindow <= 0 {
		return fmt.Errorf("VERIFIED_WINDOW must be > 0")
	}
	if c.Auth.ResetTokenTTL <= 0 {
		return fmt.Errorf("RESET_TOKEN_TTL must be > 0")
	}
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}

	if c.IsProd() {
		if isEmptyOrDefault(c.Auth.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if isEmptyOrDefault(c.Auth.VerificationCodePepper, defaultVerifyCodePepper) {
			return fmt.Errorf("in prod/release VERIFICATION_CODE_PEPPER must be set and not default")
		}
		if c.DevConsoleDelivery {
			return fmt.Errorf("in prod/release DEV_CONSOLE_DELIVERY must be false")
		}
	}

	return nil
}

func (c *Config) IsProd() bool {
	env := strings.ToLower(strings.TrimSpace(c.AppEnv))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}
