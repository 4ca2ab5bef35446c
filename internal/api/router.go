package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/api/handler"
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/api/middleware"
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/api/response"
	basemiddleware "github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/middleware"
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/model"
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/services/arcade"
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/services/codes"
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/services/records"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger        *slog.Logger
	Game          model.GameConfig
	ArcadeService *arcade.Service
	CodeService   *codes.Service
	RecordManager *records.Manager

	// Realtime serves the websocket endpoint at /ws
	Realtime http.Handler
	// Gatherer is exposed at /metrics when set
	Gatherer prometheus.Gatherer

	// AdminTokenHash is the bcrypt hash of the admin bearer token.
	// Empty disables the admin routes.
	AdminTokenHash string
	// AllowedOrigins configures CORS; "*" allows any origin
	AllowedOrigins []string
	// StaticDir, when set, is served at / for the game client
	StaticDir string
}

// NewRouter creates the HTTP handler with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	leaderboardHandler := handler.NewLeaderboardHandler(cfg.ArcadeService)
	adminHandler := handler.NewAdminHandler(cfg.Game, cfg.CodeService, cfg.RecordManager, cfg.Logger)

	// Create middleware
	adminMiddleware := middleware.AdminToken(cfg.AdminTokenHash)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
	api.HandleFunc("/leaderboard", leaderboardHandler.Get).Methods(http.MethodGet)

	// Admin routes
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(adminMiddleware)
	admin.HandleFunc("/codes", adminHandler.CodeStats).Methods(http.MethodGet)
	admin.HandleFunc("/codes/{level}", adminHandler.ProvisionCodes).Methods(http.MethodPost)
	admin.HandleFunc("/players", adminHandler.FindPlayers).Methods(http.MethodGet)
	admin.HandleFunc("/players/{player_id}", adminHandler.GetPlayer).Methods(http.MethodGet)
	admin.HandleFunc("/players/{player_id}", adminHandler.DeletePlayer).Methods(http.MethodDelete)

	// Realtime endpoint
	if cfg.Realtime != nil {
		r.Handle("/ws", recoveryMiddleware(loggingMiddleware(cfg.Realtime))).Methods(http.MethodGet)
	}

	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	if cfg.StaticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(cfg.StaticDir))).Methods(http.MethodGet, http.MethodHead)
	}

	return cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Content-Type", basemiddleware.RequestIDHeader},
		ExposedHeaders: []string{basemiddleware.RequestIDHeader},
	}).Handler(r)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}
