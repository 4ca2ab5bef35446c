package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/api"
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/config"
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/factory"
)

func main() {
	var configPath string

	cmd := &cobra.Command{
		Use:   "rabble-server",
		Short: "Score submission and reward code server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), configPath)
		},
		SilenceUsage: true,
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file or directory containing config.yaml (env: RABBLE_CONFIG)")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	// A .env file is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	if configPath == "" {
		configPath = os.Getenv("RABBLE_CONFIG")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	factoryCfg := factory.Config{
		Game:        cfg.GameConfig(),
		Logger:      logger,
		StorageType: cfg.Storage.Type,
		Realtime:    cfg.RealtimeSessions(),
	}
	switch cfg.Storage.Type {
	case config.StorageRedis:
		redisCfg := cfg.RedisStorage()
		factoryCfg.RedisConfig = &redisCfg
	case config.StoragePostgres:
		pgCfg := cfg.PostgresStorage()
		factoryCfg.PostgresConfig = &pgCfg
	}

	// Create application factory
	app, err := factory.New(factoryCfg)
	if err != nil {
		logger.Error("failed to create application", slog.Any("error", err))
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("failed to close application", slog.Any("error", err))
		}
	}()

	if cfg.Admin.TokenHash == "" {
		logger.Warn("admin API disabled: admin.token_hash is not set")
	}

	router := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		Game:           app.Game,
		ArcadeService:  app.ArcadeService,
		CodeService:    app.CodeService,
		RecordManager:  app.RecordManager,
		Realtime:       app.Realtime,
		Gatherer:       app.Registry,
		AdminTokenHash: cfg.Admin.TokenHash,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		StaticDir:      cfg.Server.StaticDir,
	})

	serverCfg := api.DefaultServerConfig()
	serverCfg.Host = cfg.Server.Host
	serverCfg.Port = cfg.Server.Port
	serverCfg.ReadTimeout = cfg.Server.ReadTimeout
	serverCfg.WriteTimeout = cfg.Server.WriteTimeout
	serverCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout

	server := api.NewServer(router, serverCfg, logger)
	server.RegisterOnShutdown(app.Hub.Close)
	if err := server.Listen(); err != nil {
		logger.Error("failed to bind", slog.Any("error", err))
		return err
	}

	logger.Info("serving game",
		slog.String("game_id", string(app.Game.ID)),
		slog.Any("point_levels", cfg.Game.PointLevels),
		slog.String("storage", cfg.Storage.Type))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")
		return server.Shutdown(context.Background())
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", slog.Any("error", err))
		return err
	}

	logger.Info("server stopped")
	return nil
}

// newLogger builds the process logger from the log settings
func newLogger(cfg config.LogConfig) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch cfg.Format {
	case "text":
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(handler), nil
}
