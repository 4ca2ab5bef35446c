package realtime

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/cors"

	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/dependencies/idgen"
)

// Server upgrades HTTP requests to websocket sessions
type Server struct {
	hub        *Hub
	dispatcher *Dispatcher
	ids        idgen.Generator
	cfg        Config
	upgrader   websocket.Upgrader
	logger     *slog.Logger
}

// NewServer creates a new Server. The hub must be running.
func NewServer(hub *Hub, dispatcher *Dispatcher, ids idgen.Generator, cfg Config, logger *slog.Logger) *Server {
	origins := cors.New(cors.Options{AllowedOrigins: cfg.AllowedOrigins})
	return &Server{
		hub:        hub,
		dispatcher: dispatcher,
		ids:        ids,
		cfg:        cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Non-browser clients send no Origin
				if r.Header.Get("Origin") == "" {
					return true
				}
				return origins.OriginAllowed(r)
			},
		},
		logger: logger.With(slog.String("component", "realtime")),
	}
}

// ServeHTTP handles GET /ws
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already written the error response
		s.logger.Warn("websocket upgrade failed",
			slog.String("remote_addr", r.RemoteAddr),
			slog.Any("error", err))
		return
	}

	client := newClient(s.ids.NewID(), s.hub, conn, s.dispatcher, s.cfg, s.logger)
	if !s.hub.Register(client) {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		_ = conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// Hub returns the session hub
func (s *Server) Hub() *Hub {
	return s.hub
}
