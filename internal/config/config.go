package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAssetRoot = "/var/lib/storyapi/assets"
	defaultCDNBase   = "http://localhost:8080/assets"
	defaultConfig    = "config.yaml"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// AssetConfig describes where published assets live on disk and where they are served from.
type AssetConfig struct {
	// Root is the physical root directory for all asset categories.
	Root string
	// CDNBase is the public base URL that mirrors Root.
	CDNBase string
	// HostAliases are hostnames historically stored in asset fields that must be
	// rewritten to the CDNBase host before a URL is mapped back to a path.
	HostAliases []string
	// Backend selects the AssetStore implementation: "disk" or "minio".
	Backend string
	// Serve exposes Root under the CDN base path from this process (disk backend only).
	Serve bool
}

// PushConfig configures the follower notification fan-out.
type PushConfig struct {
	Endpoint    string
	AccessToken string
	Concurrency int
	RatePerSec  float64
	TimeoutSec  int
}

// RateLimitConfig configures the per-client limiter on write routes.
type RateLimitConfig struct {
	RPS   int
	Burst int
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables, then an optional YAML file, then hardcoded defaults.
type AppConfig struct {
	AppHost   string
	Port      string
	Timezone  string
	Database  DatabaseConfig
	MinIO     MinIOConfig
	Asset     AssetConfig
	Push      PushConfig
	RateLimit RateLimitConfig
}

// Load reads configuration from environment variables with the YAML file named by
// CONFIG_FILE (default config.yaml) as fallback. A missing file is not an error.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
func Load() (*AppConfig, error) {
	fc, err := readFile(getEnv("CONFIG_FILE", defaultConfig))
	if err != nil {
		return nil, err
	}

	return &AppConfig{
		AppHost:  getEnv("APP_HOST", "localhost:8080"),
		Port:     getEnv("PORT", "8080"), // default only for non-sensitive value
		Timezone: getEnv("APP_TIMEZONE", "UTC"),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Asset: AssetConfig{
			Root:        getEnv("ASSET_ROOT", firstNonEmpty(fc.Asset.Root, defaultAssetRoot)),
			CDNBase:     strings.TrimRight(getEnv("ASSET_CDN_BASE", firstNonEmpty(fc.Asset.CDNBase, defaultCDNBase)), "/"),
			HostAliases: getEnvList("ASSET_CDN_HOST_ALIASES", fc.Asset.HostAliases),
			Backend:     getEnv("ASSET_BACKEND", firstNonEmpty(fc.Asset.Backend, "disk")),
			Serve:       getEnvBool("ASSET_SERVE", true),
		},
		Push: PushConfig{
			Endpoint:    getEnv("PUSH_ENDPOINT", fc.Push.Endpoint),
			AccessToken: getEnv("PUSH_ACCESS_TOKEN", fc.Push.AccessToken),
			Concurrency: getEnvInt("PUSH_CONCURRENCY", firstPositive(fc.Push.Concurrency, 4)),
			RatePerSec:  getEnvFloat("PUSH_RATE_PER_SEC", fc.Push.RatePerSec),
			TimeoutSec:  getEnvInt("PUSH_TIMEOUT_SEC", firstPositive(fc.Push.TimeoutSec, 30)),
		},
		RateLimit: RateLimitConfig{
			RPS:   getEnvInt("RATE_LIMIT_RPS", 5),
			Burst: getEnvInt("RATE_LIMIT_BURST", 10),
		},
	}, nil
}

// Validate reports configuration the process cannot start with.
func (c *AppConfig) Validate() error {
	if c.Asset.Root == "" {
		return errors.New("asset root is not configured")
	}
	if c.Asset.CDNBase == "" {
		return errors.New("asset cdn base is not configured")
	}
	u, err := url.Parse(c.Asset.CDNBase)
	if err != nil {
		return fmt.Errorf("parse asset cdn base: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("asset cdn base %q must be an absolute url", c.Asset.CDNBase)
	}
	switch c.Asset.Backend {
	case "disk", "minio":
	default:
		return fmt.Errorf("unknown asset backend %q", c.Asset.Backend)
	}
	return nil
}

// Location resolves the configured timezone, falling back to UTC.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}

// getEnvList splits a comma separated variable, dropping blanks.
func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstPositive(vals ...int) int {
	for _, v := range vals {
		if v > 0 {
			return v
		}
	}
	return 0
}
