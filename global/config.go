package global

import (
	"os"
	"strconv"
	"strings"
	"time"

	"VoChat/tools/ids"
)

// Config is the process configuration, read from env once at boot and
// injected everywhere; no ambient lookups after that.
type Config struct {
	HTTPAddr string // listen address for HTTP + WebSocket
	NodeID   string // gateway node id, recorded in the presence mirror

	MongoURI string
	MongoDB  string

	RedisAddr     string // empty disables the presence mirror
	RedisPassword string
	RedisDB       int

	JWTSecret []byte
	JWTTTL    time.Duration

	AllowedOrigins []string // empty allows any origin

	PresenceTTL time.Duration // redis presence key lifetime
	SendQueue   int           // per-connection outbound queue size
}

func Load() *Config {
	cfg := &Config{
		HTTPAddr:      getenv("HTTP_ADDR", ":8080"),
		NodeID:        getenv("NODE_ID", "vochat-gw-1"),
		MongoURI:      getenv("MONGO_URI", "mongodb://127.0.0.1:27017"),
		MongoDB:       getenv("MONGO_DB", "vochat"),
		RedisAddr:     getenv("REDIS_ADDR", ""),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getenvInt("REDIS_DB", 0),
		JWTSecret:     []byte(getenv("JWT_SECRET", "dev-secret-change-me")),
		JWTTTL:        getenvDuration("JWT_TTL", 7*24*time.Hour),
		PresenceTTL:   getenvDuration("PRESENCE_TTL", 60*time.Second),
		SendQueue:     getenvInt("SEND_QUEUE", 256),
	}
	if origins := getenv("ALLOWED_ORIGINS", ""); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}
	return cfg
}

// ConfigIds seeds the snowflake node from SNOWFLAKE_NODE.
func ConfigIds() {
	ids.SetNodeID(int64(getenvInt("SNOWFLAKE_NODE", 1)))
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
