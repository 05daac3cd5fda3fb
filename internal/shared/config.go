package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	SourceHTTP = "http"
	SourceFile = "file"

	BackendRedis  = "redis"
	BackendMySQL  = "mysql"
	BackendMemory = "memory"
)

type Config struct {
	AppEnv      string
	LogLevel    string
	HTTPAddr    string
	MetricsAddr string
	CORSOrigins []string

	SourceMode  string
	ReviewsBase string
	ReviewsKey  string
	PlaceRefs   []string
	MockDataDir string

	StateBackend string
	MySQLDSN     string
	RedisAddr    string
	RedisDB      int
	RedisPass    string

	SnapshotTTL time.Duration
	PageSize    int
	UpstreamRPS int
	Workers     int
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:       env("APP_ENV", "prod"),
		LogLevel:     env("LOG_LEVEL", "info"),
		HTTPAddr:     env("HTTP_ADDR", ":8080"),
		MetricsAddr:  env("METRICS_ADDR", ":9100"),
		CORSOrigins:  splitList(env("CORS_ORIGINS", "")),
		SourceMode:   strings.ToLower(env("SOURCE_MODE", SourceHTTP)),
		ReviewsBase:  env("REVIEWS_API_BASE", "http://localhost:8000"),
		ReviewsKey:   env("REVIEWS_API_KEY", ""),
		PlaceRefs:    splitList(env("GOOGLE_PLACE_REFS", "flex-shoreditch")),
		MockDataDir:  env("MOCK_DATA_DIR", "./data"),
		StateBackend: strings.ToLower(env("STATE_BACKEND", BackendRedis)),
		MySQLDSN:     env("MYSQL_DSN", "root:root@tcp(localhost:3306)/flex?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:    env("REDIS_ADDR", "localhost:6379"),
		RedisDB:      atoi("REDIS_DB", 0),
		RedisPass:    env("REDIS_PASSWORD", ""),
		SnapshotTTL:  time.Duration(atoi("SNAPSHOT_TTL_SECONDS", 300)) * time.Second,
		PageSize:     atoi("PAGE_SIZE", 8),
		UpstreamRPS:  atoi("UPSTREAM_RPS", 5),
		Workers:      atoi("INGEST_WORKERS", 4),
	}
	switch c.SourceMode {
	case SourceHTTP, SourceFile:
	default:
		log.Warn().Str("SOURCE_MODE", c.SourceMode).Msg("unknown source mode, using http")
		c.SourceMode = SourceHTTP
	}
	switch c.StateBackend {
	case BackendRedis, BackendMySQL, BackendMemory:
	default:
		log.Warn().Str("STATE_BACKEND", c.StateBackend).Msg("unknown state backend, using memory")
		c.StateBackend = BackendMemory
	}
	if c.PageSize <= 0 {
		c.PageSize = 8
	}
	if len(c.PlaceRefs) == 0 {
		log.Warn().Msg("GOOGLE_PLACE_REFS is empty; only Hostaway reviews will load")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
