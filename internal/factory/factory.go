package factory

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/dependencies/clock"
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/dependencies/idgen"
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/metrics"
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/model"
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/realtime"
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/services/arcade"
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/services/codes"
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/services/records"
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/services/unlock"
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/storage"
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/storage/memory"
	pgstorage "github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/storage/postgres"
	redisstorage "github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypeRedis    = "redis"
	StorageTypePostgres = "postgres"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage
	closer  io.Closer

	// External dependencies
	Clock clock.Clock
	IDs   idgen.Generator

	// Game is the configuration every service is bound to
	Game model.GameConfig

	// Metrics
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	// Services
	CodeService   *codes.Service
	Evaluator     *unlock.Evaluator
	RecordManager *records.Manager
	ArcadeService *arcade.Service

	// Realtime transport
	Hub      *realtime.Hub
	Realtime *realtime.Server
}

// Config holds configuration for the application factory
type Config struct {
	// Game is the game to serve. If it has no ID, model.DefaultGameConfig() is used.
	Game model.GameConfig
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "postgres")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// PostgresConfig holds database settings (required if StorageType is "postgres")
	PostgresConfig *pgstorage.Config
	// Realtime holds websocket session settings
	// If zero value, defaults to realtime.DefaultConfig()
	Realtime realtime.Config
}

// New creates a new application with all dependencies wired.
// The realtime hub is running when New returns; Close stops it.
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var (
		store  storage.Storage
		closer io.Closer
	)
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		store, closer = redisStore, redisStore
	case StorageTypePostgres:
		if cfg.PostgresConfig == nil {
			return nil, errors.New("PostgresConfig required when StorageType is postgres")
		}
		pgStore, err := pgstorage.New(*cfg.PostgresConfig, logger)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		store, closer = pgStore, pgStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'postgres'")
	}

	game := cfg.Game
	if game.ID == "" {
		game = model.DefaultGameConfig()
	}

	rtCfg := cfg.Realtime
	if rtCfg.RequestTimeout == 0 {
		rtCfg = realtime.DefaultConfig()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	app := newWithDependencies(store, clock.New(), idgen.New(), game, rtCfg, registry, logger)
	app.closer = closer
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	ids idgen.Generator,
	game model.GameConfig,
	rtCfg realtime.Config,
	registry *prometheus.Registry,
	logger *slog.Logger,
) *App {
	appMetrics := metrics.New(registry)

	// Create services
	codeService := codes.New(store, appMetrics, logger)
	evaluator := unlock.New(codeService, logger)
	recordManager := records.NewManager(store, clk, ids, logger)
	arcadeService := arcade.New(game, recordManager, evaluator, appMetrics, logger)

	// Create realtime transport
	hub := realtime.NewHub(appMetrics, logger)
	go hub.Run()
	dispatcher := realtime.NewDispatcher(arcadeService, rtCfg.RequestTimeout, appMetrics, logger)
	// Session ids never consume record ids
	server := realtime.NewServer(hub, dispatcher, idgen.New(), rtCfg, logger)

	return &App{
		Storage:       store,
		Clock:         clk,
		IDs:           ids,
		Game:          game,
		Registry:      registry,
		Metrics:       appMetrics,
		CodeService:   codeService,
		Evaluator:     evaluator,
		RecordManager: recordManager,
		ArcadeService: arcadeService,
		Hub:           hub,
		Realtime:      server,
	}
}

// Close disconnects every session and releases the storage backend
func (a *App) Close() error {
	a.Hub.Close()
	a.Hub.Wait()
	if a.closer != nil {
		return a.closer.Close()
	}
	return nil
}
