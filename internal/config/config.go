package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Transport strategies for the storage gateway.
const (
	TransportRemote = "remote" // spreadsheet-backed web endpoint
	TransportBridge = "bridge" // host-provided key-value store (Redis)
	TransportLocal  = "local"  // fallback slot only
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request deadline on the router (ex: 30s)

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Storage gateway
	Transport         string        // remote | bridge | local (resolved, never empty)
	EndpointURL       string        // spreadsheet web app URL (ex: https://script.google.com/macros/s/.../exec)
	EndpointWriteOnly bool          // true => POST responses are not read, success is assumed
	EndpointTimeout   time.Duration // HTTP client timeout for the endpoint (ex: 20s)
	FallbackDir       string        // badger directory for the fallback slot (empty => in-memory)

	// Categories
	CategoryFile    string // optional YAML file with the seed categories
	DefaultCategory string // preselected category on new bookmarks

	ReloadInterval time.Duration // interval to refresh the collection (0 = disabled)

	// Suggestion service
	AIAPIKey      string        // empty => suggestions always degrade to a random placeholder
	AIModel       string        // ex: gemini-2.5-flash
	AIBaseURL     string        // ex: https://generativelanguage.googleapis.com
	AITimeout     time.Duration // ex: 30s
	ScrapeTimeout time.Duration // page metadata fetch timeout (ex: 3s)

	// Thumbnails
	MaxUploadBytes int64 // max accepted upload size
	ThumbMaxWidth  int   // ex: 320
	ThumbQuality   int   // JPEG quality 1-100 (ex: 40)

	// Redis (bridge transport only)
	BridgeImport        bool          // copy the fallback slot into an empty bridge on startup
	RedisAddr           string        // ex: "localhost:6379"
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisDT             time.Duration // Redis dial timeout (ex: 5s)
	RedisRT             time.Duration // Redis read timeout (ex: 3s)
	RedisWT             time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait        time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout    time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize       int           // Redis connection pool size
	RedisConnectTimeout time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval  time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold  int           // warn after this many attempts

	// Access restrictions
	AllowedHosts []string // optional, restrict access to specific Host headers
	AllowedCIDRS []string // optional, restrict access to specific IP (e.g. "1.2.3.4, 5.6.7.8")
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)

	AllowedOrigins []string // CORS origins allowed to call the API ("*" for any, empty disables CORS)

	// Write routes rate limit
	RateLimitBurst  int // bucket capacity per client IP
	RateLimitPerMin int // tokens refilled per minute per client IP
}

// Load reads the configuration from the environment. A .env file (or the file
// named by REELMARK_ENV_FILE) is loaded first; variables already set win.
func Load() *Config {
	loadEnvFile(getenv("REELMARK_ENV_FILE", ".env"))

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("REELMARK_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("REELMARK_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("REELMARK_REQUEST_TIMEOUT", 30*time.Second),

		// Logging
		LogLevel:  getenv("REELMARK_LOG_LEVEL", "info"),
		PrettyLog: mustBool("REELMARK_PRETTY_LOG", true),

		// Storage
		EndpointURL:       getenv("REELMARK_ENDPOINT_URL", ""),
		EndpointWriteOnly: mustBool("REELMARK_ENDPOINT_WRITE_ONLY", true),
		EndpointTimeout:   mustDuration("REELMARK_ENDPOINT_TIMEOUT", 20*time.Second),
		FallbackDir:       lookupEnv("REELMARK_FALLBACK_DIR", "/data/fallback"),

		// Categories
		CategoryFile:    getenv("REELMARK_CATEGORY_FILE", ""),
		DefaultCategory: getenv("REELMARK_DEFAULT_CATEGORY", ""),
		ReloadInterval:  mustDuration("REELMARK_RELOAD_INTERVAL", 0),

		// Suggestions
		AIAPIKey:      getenv("REELMARK_AI_API_KEY", ""),
		AIModel:       getenv("REELMARK_AI_MODEL", "gemini-2.5-flash"),
		AIBaseURL:     getenv("REELMARK_AI_BASE_URL", "https://generativelanguage.googleapis.com"),
		AITimeout:     mustDuration("REELMARK_AI_TIMEOUT", 30*time.Second),
		ScrapeTimeout: mustDuration("REELMARK_SCRAPE_TIMEOUT", 3*time.Second),

		// Thumbnails
		MaxUploadBytes: int64(getenvInt("REELMARK_MAX_UPLOAD_BYTES", 10<<20)),
		ThumbMaxWidth:  getenvInt("REELMARK_THUMB_MAX_WIDTH", 320),
		ThumbQuality:   getenvInt("REELMARK_THUMB_QUALITY", 40),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("REELMARK_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("REELMARK_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("REELMARK_TRUST_PROXY", true),

		AllowedOrigins: splitAndTrim(getenv("REELMARK_CORS_ORIGINS", "")),

		RateLimitBurst:  getenvInt("REELMARK_RATE_LIMIT_BURST", 20),
		RateLimitPerMin: getenvInt("REELMARK_RATE_LIMIT_PER_MIN", 60),
	}

	cfg.Transport = resolveTransport(getenv("REELMARK_TRANSPORT", ""), cfg.EndpointURL)

	switch cfg.Transport {
	case TransportRemote:
		if cfg.EndpointURL == "" {
			panic("❌ FATAL: REELMARK_ENDPOINT_URL is required when REELMARK_TRANSPORT=remote")
		}
	case TransportBridge:
		loadRedis(cfg)
	}

	if cfg.ThumbQuality < 1 || cfg.ThumbQuality > 100 {
		panic(fmt.Sprintf("❌ FATAL: REELMARK_THUMB_QUALITY must be within 1..100, got %d", cfg.ThumbQuality))
	}
	if cfg.ThumbMaxWidth < 1 {
		panic(fmt.Sprintf("❌ FATAL: REELMARK_THUMB_MAX_WIDTH must be positive, got %d", cfg.ThumbMaxWidth))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		if cfg.RedisPassword != "" {
			cfgCopy.RedisPassword = "***REDACTED***"
		}
		if cfg.AIAPIKey != "" {
			cfgCopy.AIAPIKey = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

func loadRedis(cfg *Config) {
	cfg.BridgeImport = mustBool("REELMARK_BRIDGE_IMPORT", true)
	cfg.RedisAddr = requireEnv("REELMARK_REDIS_ADDR")
	cfg.RedisUser = getenv("REELMARK_REDIS_USERNAME", "default")
	cfg.RedisPassword = getenv("REELMARK_REDIS_PASSWORD", "")
	cfg.RedisDB = requireEnvInt("REELMARK_REDIS_DB")
	cfg.RedisDT = mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second)
	cfg.RedisRT = mustDuration("REDIS_READ_TIMEOUT", 3*time.Second)
	cfg.RedisWT = mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second)
	cfg.RedisMaxWait = mustDuration("REDIS_MAX_WAIT", 10*time.Second)
	cfg.RedisPingTimeout = mustDuration("REDIS_PING_TIMEOUT", 5*time.Second)
	cfg.RedisPoolSize = getenvInt("REDIS_POOL_SIZE", 10)
	cfg.RedisConnectTimeout = mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second)
	cfg.RedisRetryInterval = mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second)
	cfg.RedisWarnThreshold = getenvInt("REDIS_WARN_THRESHOLD", 3)
}

// resolveTransport picks the gateway strategy once. An explicit value wins;
// otherwise remote when an endpoint is configured, local when not.
func resolveTransport(explicit, endpoint string) string {
	switch strings.ToLower(strings.TrimSpace(explicit)) {
	case TransportRemote:
		return TransportRemote
	case TransportBridge:
		return TransportBridge
	case TransportLocal:
		return TransportLocal
	case "":
		if endpoint != "" {
			return TransportRemote
		}
		return TransportLocal
	default:
		panic(fmt.Sprintf("❌ FATAL: unknown REELMARK_TRANSPORT %q (want remote, bridge or local)", explicit))
	}
}

func loadEnvFile(path string) {
	if path == "" {
		return
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("[WARN] failed to load env file %s: %v", path, err)
	}
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// lookupEnv is getenv for keys where an explicitly empty value means "off".
func lookupEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(v)
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func requireEnvInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: Invalid integer value for %s: %s", key, v))
	}
	return i
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
