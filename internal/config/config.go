package config

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/model"
)

// EnvPrefix prefixes every environment override (RABBLE_SERVER_PORT, ...)
const EnvPrefix = "RABBLE"

// Storage backends
const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

// Config is the complete server configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Game     GameConfig     `mapstructure:"game"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Realtime RealtimeConfig `mapstructure:"realtime"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// StaticDir, when set, is served at / for the game client
	StaticDir string `mapstructure:"static_dir"`
}

type GameConfig struct {
	ID string `mapstructure:"id"`
	// PointLevels is decoded separately so both YAML lists and
	// comma-separated environment values are accepted
	PointLevels []float64 `mapstructure:"-"`
}

type StorageConfig struct {
	Type     string         `mapstructure:"type"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type RedisConfig struct {
	URL          string `mapstructure:"url"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
	KeyPrefix    string `mapstructure:"key_prefix"`
}

type PostgresConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	SlowThreshold   time.Duration `mapstructure:"slow_threshold"`
}

type RealtimeConfig struct {
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	PingPeriod      time.Duration `mapstructure:"ping_period"`
	PongWait        time.Duration `mapstructure:"pong_wait"`
	WriteWait       time.Duration `mapstructure:"write_wait"`
	MaxMessageSize  int64         `mapstructure:"max_message_size"`
	SendBufferSize  int           `mapstructure:"send_buffer_size"`
	EventsPerSecond float64       `mapstructure:"events_per_second"`
	EventBurst      int           `mapstructure:"event_burst"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"-"`
}

type AdminConfig struct {
	// TokenHash is the bcrypt hash of the admin bearer token. Empty disables
	// the admin routes.
	TokenHash string `mapstructure:"token_hash"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.static_dir", "")

	v.SetDefault("game.id", "duck")
	v.SetDefault("game.point_levels", []float64{20, 1000, 5000})

	v.SetDefault("storage.type", StorageMemory)
	v.SetDefault("storage.redis.url", "redis://localhost:6379")
	v.SetDefault("storage.redis.pool_size", 10)
	v.SetDefault("storage.redis.min_idle_conns", 2)
	v.SetDefault("storage.redis.key_prefix", "rabble")
	v.SetDefault("storage.postgres.dsn", "host=localhost port=5432 user=rabble password=rabble dbname=rabble sslmode=disable")
	v.SetDefault("storage.postgres.max_idle_conns", 10)
	v.SetDefault("storage.postgres.max_open_conns", 100)
	v.SetDefault("storage.postgres.conn_max_lifetime", time.Hour)
	v.SetDefault("storage.postgres.slow_threshold", time.Second)

	v.SetDefault("realtime.request_timeout", 10*time.Second)
	v.SetDefault("realtime.ping_period", 54*time.Second)
	v.SetDefault("realtime.pong_wait", 60*time.Second)
	v.SetDefault("realtime.write_wait", 10*time.Second)
	v.SetDefault("realtime.max_message_size", 8*1024)
	v.SetDefault("realtime.send_buffer_size", 64)
	v.SetDefault("realtime.events_per_second", 20)
	v.SetDefault("realtime.event_burst", 40)

	v.SetDefault("cors.allowed_origins", []string{"*"})

	v.SetDefault("admin.token_hash", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Load reads configuration from path and RABBLE_* environment variables.
// path may name a YAML file or a directory searched for config.yaml; an
// empty path searches the working directory. A missing file is not an
// error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	switch ext := filepath.Ext(path); {
	case ext == ".yaml" || ext == ".yml":
		v.SetConfigFile(path)
	case path != "":
		v.AddConfigPath(path)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	default:
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	levels, err := parsePointLevels(v.Get("game.point_levels"))
	if err != nil {
		return nil, err
	}
	cfg.Game.PointLevels = levels
	cfg.CORS.AllowedOrigins = parseList(v.Get("cors.allowed_origins"))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// parseList accepts a list value or a comma-separated string
func parseList(raw any) []string {
	if s, ok := raw.(string); ok {
		raw = strings.Split(s, ",")
	}
	var out []string
	for _, item := range cast.ToStringSlice(raw) {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parsePointLevels(raw any) ([]float64, error) {
	var items []any
	switch val := raw.(type) {
	case string:
		for _, item := range parseList(val) {
			items = append(items, item)
		}
	case []float64:
		for _, item := range val {
			items = append(items, item)
		}
	default:
		var err error
		items, err = cast.ToSliceE(raw)
		if err != nil {
			return nil, fmt.Errorf("game.point_levels: %w", err)
		}
	}

	levels := make([]float64, 0, len(items))
	for _, item := range items {
		level, err := cast.ToFloat64E(item)
		if err != nil {
			return nil, fmt.Errorf("game.point_levels: invalid level %v: %w", item, err)
		}
		levels = append(levels, level)
	}
	return levels, nil
}

// Validate checks the values that have no usable fallback
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Game.ID) == "" {
		return errors.New("game.id is required")
	}
	if len(c.Game.PointLevels) == 0 {
		return errors.New("game.point_levels must name at least one level")
	}
	seen := make(map[float64]bool, len(c.Game.PointLevels))
	for _, level := range c.Game.PointLevels {
		if level < 0 {
			return fmt.Errorf("game.point_levels: negative level %v", level)
		}
		if seen[level] {
			return fmt.Errorf("game.point_levels: duplicate level %v", level)
		}
		seen[level] = true
	}

	switch c.Storage.Type {
	case StorageMemory, StorageRedis, StoragePostgres:
	default:
		return fmt.Errorf("storage.type: unknown backend %q", c.Storage.Type)
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port: out of range %d", c.Server.Port)
	}
	if c.Realtime.PingPeriod >= c.Realtime.PongWait {
		return errors.New("realtime.ping_period must be shorter than realtime.pong_wait")
	}
	if c.Realtime.SendBufferSize < 1 {
		return fmt.Errorf("realtime.send_buffer_size: must be at least 1, got %d", c.Realtime.SendBufferSize)
	}
	if c.Realtime.EventsPerSecond > 0 && c.Realtime.EventBurst < 1 {
		return fmt.Errorf("realtime.event_burst: must be at least 1 when events_per_second is set, got %d", c.Realtime.EventBurst)
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("log.format: unknown format %q", c.Log.Format)
	}
	return nil
}

// GameConfig returns the game the server is bound to
func (c *Config) GameConfig() model.GameConfig {
	levels := make([]model.PointLevel, len(c.Game.PointLevels))
	for i, level := range c.Game.PointLevels {
		levels[i] = model.PointLevel(level)
	}
	return model.GameConfig{
		ID:          model.GameID(c.Game.ID),
		PointLevels: levels,
	}
}

// SlogLevel parses the configured level name
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}
