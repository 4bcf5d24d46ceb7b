package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Env         string
	DatabaseURL string

	Cognito CognitoConfig

	SMTP SMTPConfig

	UploadDir     string
	UploadBaseURL string
}

type CognitoConfig struct {
	Region          string
	UserPoolID      string
	AppClientID     string
	AppClientSecret string
	// Domain is the Cognito hosted-UI domain, e.g. "remarket.auth.eu-west-1.amazoncognito.com".
	Domain string

	RedirectURL string

	JWKSRefreshInterval time.Duration
	JWKSHTTPTimeout     time.Duration
	JWTLeeway           time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	jwksRefresh, err := time.ParseDuration(getEnv("JWKS_REFRESH_INTERVAL", "1h"))
	if err != nil {
		jwksRefresh = time.Hour
	}

	jwksTimeout, err := time.ParseDuration(getEnv("JWKS_HTTP_TIMEOUT", "10s"))
	if err != nil {
		jwksTimeout = 10 * time.Second
	}

	leeway, err := time.ParseDuration(getEnv("JWT_LEEWAY", "30s"))
	if err != nil {
		leeway = 30 * time.Second
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		Cognito: CognitoConfig{
			Region:          getEnvOrPanic("COGNITO_REGION"),
			UserPoolID:      getEnvOrPanic("COGNITO_USER_POOL_ID"),
			AppClientID:     getEnvOrPanic("COGNITO_APP_CLIENT_ID"),
			AppClientSecret: getEnv("COGNITO_APP_CLIENT_SECRET", ""),
			Domain:          getEnv("COGNITO_DOMAIN", ""),
			RedirectURL:     getEnv("COGNITO_REDIRECT_URL", ""),

			JWKSRefreshInterval: jwksRefresh,
			JWKSHTTPTimeout:     jwksTimeout,
			JWTLeeway:           leeway,
		},

		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnv("SMTP_PORT", "587"),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", ""),
		},

		UploadDir:     getEnv("UPLOAD_DIR", "./uploads"),
		UploadBaseURL: getEnv("UPLOAD_BASE_URL", "/static/uploads"),
	}, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// IssuerURL is the Cognito user-pool issuer, also the base of the JWKS endpoint.
func (c *CognitoConfig) IssuerURL() string {
	return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", c.Region, c.UserPoolID)
}

func (c *CognitoConfig) JWKSURL() string {
	return c.IssuerURL() + "/.well-known/jwks.json"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvOrPanic(key string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		panic("required environment variable not set: " + key)
	}
	return value
}
