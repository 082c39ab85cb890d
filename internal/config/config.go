package config

import (
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Version is reported by the health and root endpoints.
const Version = "1.0.0"

// Config holds all runtime settings for the photo archive service.
type Config struct {
	// Application
	AppName     string
	Environment string
	Host        string
	Port        string
	APIPrefix   string

	// Database
	DatabaseURL  string
	PoolMaxConns int32
	PoolMinConns int32

	// CORS
	AllowedOrigins []string

	// Media storage
	StorageDir   string
	ThumbnailDir string
	AvatarDir    string

	// Upload limits
	AllowedExtensions map[string]bool
	MaxImageSize      int64
	MaxVideoSize      int64

	// Thumbnails
	ThumbnailSize int
	FFmpegPath    string
	FFmpegTimeout time.Duration

	// Logging
	LogLevel  string
	LogFormat string
	SentryDSN string
}

// Load reads configuration from the environment, falling back to a .env
// file when present. Every key has a development-friendly default.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	cfg := &Config{
		AppName:     envString("APP_NAME", "photo-archive"),
		Environment: envString("APP_ENV", "development"),
		Host:        envString("HOST", "0.0.0.0"),
		Port:        envString("PORT", "8080"),
		APIPrefix:   envString("API_V1_PREFIX", "/api/v1"),

		DatabaseURL:  databaseURL(),
		PoolMaxConns: int32(envInt("DB_POOL_MAX_CONNS", 10)),
		PoolMinConns: int32(envInt("DB_POOL_MIN_CONNS", 2)),

		AllowedOrigins: splitList(envString("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:8080")),

		StorageDir:   envString("STORAGE_DIR", "data/photos"),
		ThumbnailDir: envString("THUMBNAIL_DIR", "data/thumbnails"),
		AvatarDir:    envString("AVATAR_DIR", "data/avatars"),

		AllowedExtensions: extensionSet(envString("ALLOWED_EXTENSIONS", ".jpg,.jpeg,.png,.webp,.mp4,.mov,.avi,.webm")),
		MaxImageSize:      envInt64("MAX_IMAGE_SIZE", 10<<20),
		MaxVideoSize:      envInt64("MAX_VIDEO_SIZE", 100<<20),

		ThumbnailSize: envInt("THUMBNAIL_SIZE", 200),
		FFmpegPath:    envString("FFMPEG_PATH", "ffmpeg"),
		FFmpegTimeout: envDuration("FFMPEG_TIMEOUT", 10*time.Second),

		LogLevel:  envString("LOG_LEVEL", "info"),
		LogFormat: envString("LOG_FORMAT", "text"),
		SentryDSN: envString("SENTRY_DSN", ""),
	}

	return cfg
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// CORSOrigins returns the origin list for the CORS middleware. Production
// restricts to the configured origins; development allows any origin.
func (c *Config) CORSOrigins() string {
	if c.IsProduction() {
		return strings.Join(c.AllowedOrigins, ",")
	}
	return "*"
}

// ExtensionList renders the allowed extensions sorted for error messages.
func (c *Config) ExtensionList() string {
	exts := make([]string, 0, len(c.AllowedExtensions))
	for ext := range c.AllowedExtensions {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return strings.Join(exts, ", ")
}

// databaseURL prefers DATABASE_URL and falls back to composing one from
// the individual POSTGRES_* variables.
func databaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	return "postgres://" + envString("POSTGRES_USER", "postgres") + ":" +
		envString("POSTGRES_PASSWORD", "postgres") + "@" +
		envString("POSTGRES_HOST", "localhost") + ":" +
		envString("POSTGRES_PORT", "5432") + "/" +
		envString("POSTGRES_DB", "photo_archive") + "?sslmode=disable"
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// extensionSet normalizes a comma-separated extension list into a lookup
// set with lowercased, dot-prefixed keys.
func extensionSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, ext := range splitList(s) {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = true
	}
	return set
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envInt64(key string, def int64) int64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}
