package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	ModeDev  = "dev"
	ModeProd = "prod"

	devJWTSecret = "dev-only-diary-jwt-secret-change-me"
)

type Config struct {
	Mode     string
	Database DatabaseConfig
	JWT      JWTConfig
	Server   ServerConfig
	Security SecurityConfig
	CORS     CORSConfig
	OAuth    OAuthConfig
	Cleanup  CleanupConfig
	Log      LogConfig
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
}

type JWTConfig struct {
	Secret             string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

type ServerConfig struct {
	Port    string
	GinMode string
}

// SecurityConfig holds the cookie posture derived from the deployment mode.
type SecurityConfig struct {
	CookieSecure bool
	SameSite     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type OAuthConfig struct {
	GoogleClientID string
}

type CleanupConfig struct {
	Interval time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

func LoadConfig() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	mode := strings.ToLower(getEnv("APP_MODE", ModeDev))
	if mode != ModeProd {
		mode = ModeDev
	}

	defaultGinMode := "debug"
	defaultSameSite := "lax"
	defaultSecure := false
	if mode == ModeProd {
		defaultGinMode = "release"
		defaultSameSite = "none"
		defaultSecure = true
	}

	config := &Config{
		Mode: mode,
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "3306"),
			User:     getEnv("DB_USER", "root"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "diary"),
		},
		JWT: JWTConfig{
			Secret:             getEnv("JWT_SECRET", devJWTSecret),
			AccessTokenExpiry:  parseDuration(getEnv("ACCESS_TOKEN_EXPIRY", "2h"), 2*time.Hour),
			RefreshTokenExpiry: parseDuration(getEnv("REFRESH_TOKEN_EXPIRY", "336h"), 14*24*time.Hour),
		},
		Server: ServerConfig{
			Port:    getEnv("PORT", "8080"),
			GinMode: getEnv("GIN_MODE", defaultGinMode),
		},
		Security: SecurityConfig{
			CookieSecure: parseBool(getEnv("COOKIE_SECURE", ""), defaultSecure),
			SameSite:     strings.ToLower(getEnv("COOKIE_SAMESITE", defaultSameSite)),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseOrigins(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),
		},
		OAuth: OAuthConfig{
			GoogleClientID: getEnv("GOOGLE_CLIENT_ID", ""),
		},
		Cleanup: CleanupConfig{
			Interval: parseDuration(getEnv("REFRESH_CLEANUP_INTERVAL", "1h"), time.Hour),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}

	return config
}

// Validate rejects configurations that must not reach a running server.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if c.Mode == ModeProd && c.JWT.Secret == devJWTSecret {
		return errors.New("JWT_SECRET must be set in prod mode")
	}
	if c.Mode == ModeProd && c.Security.SameSite == "none" && !c.Security.CookieSecure {
		return errors.New("SameSite=None cookies require COOKIE_SECURE=true")
	}
	return nil
}

func (c *Config) IsProd() bool {
	return c.Mode == ModeProd
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil || duration <= 0 {
		logrus.Warnf("Invalid duration format '%s', using %s", s, fallback)
		return fallback
	}
	return duration
}

func parseBool(s string, fallback bool) bool {
	if s == "" {
		return fallback
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		logrus.Warnf("Invalid boolean '%s', using %t", s, fallback)
		return fallback
	}
	return v
}

func parseOrigins(s string) []string {
	origins := []string{}
	for _, origin := range strings.Split(s, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
