package config

import (
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
)

type Config struct {
	Env      string
	LogLevel string

	ServerPort              string
	ServerReadHeaderTimeout time.Duration
	ServerReadTimeout       time.Duration
	ServerWriteTimeout      time.Duration
	ServerIdleTimeout       time.Duration
	RequestTimeout          time.Duration

	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	JWTSecret     string
	JWTAccessTTL  time.Duration
	JWTRefreshTTL time.Duration
	ResetTokenTTL time.Duration

	CookieName   string
	CookieDomain string

	CORSOrigins      []string
	RateLimitRPM     int
	AuthRateLimitRPM int
	// TrustedProxies lists the reverse proxies whose X-Forwarded-For is
	// believed. Empty means clients are identified by the socket address.
	TrustedProxies []netip.Prefix

	CacheDriver string
	RedisURL    string
	CacheTTL    time.Duration

	SMTPHost         string
	SMTPPort         int
	SMTPUser         string
	SMTPPass         string
	SMTPFromName     string
	SMTPFromEmail    string
	EmailSendTimeout time.Duration
	FrontendURL      string

	StorageDriver   string
	UploadDir       string
	PublicUploadURL string
	MaxUploadSize   int64
	S3Bucket        string
	S3Region        string
	S3Endpoint      string
	S3AccessKey     string
	S3SecretKey     string
	S3PublicURL     string

	AdminEmail         string
	AdminPassword      string
	AdminName          string
	DefaultProfileSlug string
	MetricsEnabled     bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:      strings.ToLower(getEnv("APP_ENV", EnvDevelopment)),
		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),

		ServerPort:              getEnv("PORT", "5000"),
		ServerReadHeaderTimeout: getDuration("SERVER_READ_HEADER_TIMEOUT", 5*time.Second),
		ServerReadTimeout:       getDuration("SERVER_READ_TIMEOUT", 15*time.Second),
		ServerWriteTimeout:      getDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		ServerIdleTimeout:       getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		RequestTimeout:          getDuration("REQUEST_TIMEOUT", 30*time.Second),

		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DBMaxConns:  int32(getInt("DB_MAX_CONNS", 10)),
		DBMinConns:  int32(getInt("DB_MIN_CONNS", 1)),

		JWTSecret:     strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTAccessTTL:  getDuration("JWT_ACCESS_TTL", 15*time.Minute),
		JWTRefreshTTL: getDuration("JWT_REFRESH_TTL", 7*24*time.Hour),
		ResetTokenTTL: getDuration("RESET_TOKEN_TTL", time.Hour),

		CookieName:   getEnv("COOKIE_NAME", "accessToken"),
		CookieDomain: strings.TrimSpace(os.Getenv("COOKIE_DOMAIN")),

		CORSOrigins:      splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		RateLimitRPM:     getInt("RATE_LIMIT_RPM", 100),
		AuthRateLimitRPM: getInt("AUTH_RATE_LIMIT_RPM", 5),

		RedisURL: strings.TrimSpace(os.Getenv("REDIS_URL")),
		CacheTTL: getDuration("CACHE_TTL", 5*time.Minute),

		SMTPHost:         getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:         getInt("SMTP_PORT", 587),
		SMTPUser:         strings.TrimSpace(os.Getenv("SMTP_USER")),
		SMTPPass:         os.Getenv("SMTP_PASS"),
		SMTPFromName:     getEnv("SMTP_FROM_NAME", "Portfolio"),
		SMTPFromEmail:    strings.TrimSpace(os.Getenv("SMTP_FROM_EMAIL")),
		EmailSendTimeout: getDuration("EMAIL_SEND_TIMEOUT", 10*time.Second),
		FrontendURL:      strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),

		StorageDriver:   strings.ToLower(getEnv("STORAGE_DRIVER", "local")),
		UploadDir:       getEnv("UPLOAD_DIR", "./uploads"),
		PublicUploadURL: strings.TrimRight(getEnv("PUBLIC_UPLOAD_URL", "/uploads"), "/"),
		MaxUploadSize:   getInt64("MAX_UPLOAD_SIZE", 5*1024*1024),
		S3Bucket:        strings.TrimSpace(os.Getenv("S3_BUCKET")),
		S3Region:        getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:      strings.TrimSpace(os.Getenv("S3_ENDPOINT")),
		S3AccessKey:     strings.TrimSpace(os.Getenv("S3_ACCESS_KEY")),
		S3SecretKey:     strings.TrimSpace(os.Getenv("S3_SECRET_KEY")),
		S3PublicURL:     strings.TrimRight(strings.TrimSpace(os.Getenv("S3_PUBLIC_URL")), "/"),

		AdminEmail:         strings.TrimSpace(os.Getenv("ADMIN_EMAIL")),
		AdminPassword:      os.Getenv("ADMIN_PASSWORD"),
		AdminName:          getEnv("ADMIN_NAME", "Administrator"),
		DefaultProfileSlug: getEnv("DEFAULT_PROFILE_SLUG", "bishal-ghale"),
		MetricsEnabled:     getBool("METRICS_ENABLED", true),
	}

	proxies, err := parsePrefixes(splitCSV(os.Getenv("TRUSTED_PROXIES")))
	if err != nil {
		return nil, fmt.Errorf("TRUSTED_PROXIES: %w", err)
	}
	cfg.TrustedProxies = proxies

	cfg.CacheDriver = strings.ToLower(getEnv("CACHE_DRIVER", "none"))
	if cfg.RedisURL != "" && strings.TrimSpace(os.Getenv("CACHE_DRIVER")) == "" {
		cfg.CacheDriver = "redis"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.ServerPort == "" {
		return fmt.Errorf("PORT cannot be empty")
	}

	if c.JWTAccessTTL <= 0 || c.JWTRefreshTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL and JWT_REFRESH_TTL must be positive")
	}

	if c.ResetTokenTTL <= 0 {
		return fmt.Errorf("RESET_TOKEN_TTL must be positive")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	if c.EmailSendTimeout <= 0 {
		return fmt.Errorf("EMAIL_SEND_TIMEOUT must be positive")
	}

	if c.MaxUploadSize <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE must be positive")
	}

	if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS/DB_MAX_CONNS are inconsistent")
	}

	switch c.CacheDriver {
	case "none", "memory":
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when CACHE_DRIVER=redis")
		}
	default:
		return fmt.Errorf("unknown CACHE_DRIVER %q", c.CacheDriver)
	}

	switch c.StorageDriver {
	case "local":
		if strings.TrimSpace(c.UploadDir) == "" {
			return fmt.Errorf("UPLOAD_DIR cannot be empty")
		}
	case "s3":
		if c.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when STORAGE_DRIVER=s3")
		}
	case "none":
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	if c.IsProduction() && c.CookieDomain == "" {
		return fmt.Errorf("COOKIE_DOMAIN is required in production")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// EmailEnabled reports whether SMTP credentials are present.
func (c *Config) EmailEnabled() bool {
	return c.SMTPUser != "" && c.SMTPPass != ""
}

func getEnv(key string, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}

	return v
}

func getInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getInt64(key string, fallback int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}

	return v
}

func getBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return v
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}

	return out
}

// parsePrefixes accepts CIDR blocks and bare addresses.
func parsePrefixes(values []string) ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(values))
	for _, v := range values {
		if strings.Contains(v, "/") {
			p, err := netip.ParsePrefix(v)
			if err != nil {
				return nil, err
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}

		addr, err := netip.ParseAddr(v)
		if err != nil {
			return nil, err
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}
