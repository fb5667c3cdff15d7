package configs

import (
	"fmt"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/quizdefense/quizdefense/internal/infrastructure/env"
)

type Config struct {
	HTTP        HTTPConfig        `koanf:"http"`
	RateLimiter RateLimiterConfig `koanf:"rateLimiter"`
	Rooms       RoomsConfig       `koanf:"rooms"`
	Sync        SyncConfig        `koanf:"sync"`
	Tracing     TracingConfig     `koanf:"tracing"`
}

type HTTPConfig struct {
	Host           string        `koanf:"host"`
	Port           uint16        `koanf:"port"`
	AllowedOrigins []string      `koanf:"allowed_origins"`
	ReadTimeout    time.Duration `koanf:"read_timeout"`
	WriteTimeout   time.Duration `koanf:"write_timeout"`
}

type RateLimiterConfig struct {
	RequestsPerTimeFrame int           `koanf:"requestsPerTimeFrame"`
	TimeFrame            time.Duration `koanf:"timeFrame"`
}

type RoomsConfig struct {
	Capacity uint `koanf:"capacity"`
}

// SyncConfig sets the host's broadcast cadences. The delta interval keeps
// peer positions smooth; the snapshot interval bounds how long a peer can
// stay unaware of an entity it missed the spawn for.
type SyncConfig struct {
	PositionInterval time.Duration `koanf:"position_interval"`
	SnapshotInterval time.Duration `koanf:"snapshot_interval"`
	StatsInterval    time.Duration `koanf:"stats_interval"`
	TickInterval     time.Duration `koanf:"tick_interval"`
}

type TracingConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Endpoint string `koanf:"endpoint"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Load from YAML file if it exists
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	// Apply defaults and environment variable overrides
	applyDefaults(k)
	applyEnvOverrides(k)

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(k *koanf.Koanf) {
	// HTTP defaults
	setDefault(k, "http.host", "0.0.0.0")
	setDefault(k, "http.port", 3000)
	setDefault(k, "http.read_timeout", 10*time.Second)
	setDefault(k, "http.write_timeout", 30*time.Second)
	setDefault(k, "http.allowed_origins", []string{"*"})

	// Rate limiter defaults
	setDefault(k, "rateLimiter.requestsPerTimeFrame", 20)
	setDefault(k, "rateLimiter.timeFrame", 5*time.Second)

	// Room registry defaults
	setDefault(k, "rooms.capacity", 100)

	// Sync cadence defaults
	setDefault(k, "sync.position_interval", 100*time.Millisecond)
	setDefault(k, "sync.snapshot_interval", 2*time.Second)
	setDefault(k, "sync.stats_interval", time.Second)
	setDefault(k, "sync.tick_interval", 50*time.Millisecond)

	// Tracing defaults
	setDefault(k, "tracing.enabled", false)
	setDefault(k, "tracing.endpoint", "http://localhost:4318")
}

func applyEnvOverrides(k *koanf.Koanf) {
	if host := env.GetString("HTTP_HOST", ""); host != "" {
		k.Set("http.host", host)
	}
	if port := env.GetInt("HTTP_PORT", 0); port > 0 {
		k.Set("http.port", port)
	}
	if readTimeout := env.GetDuration("HTTP_READ_TIMEOUT", 0); readTimeout > 0 {
		k.Set("http.read_timeout", readTimeout)
	}
	if writeTimeout := env.GetDuration("HTTP_WRITE_TIMEOUT", 0); writeTimeout > 0 {
		k.Set("http.write_timeout", writeTimeout)
	}

	if maxRequests := env.GetInt("RATE_LIMIT_REQUESTS", 0); maxRequests > 0 {
		k.Set("rateLimiter.requestsPerTimeFrame", maxRequests)
	}
	if timeFrame := env.GetDuration("RATE_LIMIT_TIME_FRAME", 0); timeFrame > 0 {
		k.Set("rateLimiter.timeFrame", timeFrame)
	}

	if roomCapacity := env.GetInt("ROOM_CAPACITY", 0); roomCapacity > 0 {
		k.Set("rooms.capacity", uint(roomCapacity))
	}

	if endpoint := env.GetString("OTLP_ENDPOINT", ""); endpoint != "" {
		k.Set("tracing.enabled", true)
		k.Set("tracing.endpoint", endpoint)
	}
}

// setDefault only sets the value if the key doesn't already exist
func setDefault(k *koanf.Koanf, key string, value interface{}) {
	if !k.Exists(key) {
		k.Set(key, value)
	}
}
