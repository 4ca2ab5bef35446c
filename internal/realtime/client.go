package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/services/arcade"
)

// Client is one websocket session
type Client struct {
	id          string
	remoteAddr  string
	connectedAt time.Time

	hub        *Hub
	conn       *websocket.Conn
	dispatcher *Dispatcher
	limiter    *rate.Limiter
	cfg        Config
	logger     *slog.Logger

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newClient(id string, hub *Hub, conn *websocket.Conn, dispatcher *Dispatcher, cfg Config, logger *slog.Logger) *Client {
	var limiter *rate.Limiter
	if cfg.EventsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.EventsPerSecond), cfg.EventBurst)
	}
	return &Client{
		id:          id,
		remoteAddr:  conn.RemoteAddr().String(),
		connectedAt: time.Now(),
		hub:         hub,
		conn:        conn,
		dispatcher:  dispatcher,
		limiter:     limiter,
		cfg:         cfg,
		logger:      logger.With(slog.String("session_id", id)),
		send:        make(chan []byte, cfg.SendBufferSize),
		done:        make(chan struct{}),
	}
}

// shutdown signals the write pump to close the connection
func (c *Client) shutdown() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// readPump processes inbound frames one at a time until the connection fails
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.shutdown()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				c.logger.Warn("session read failed", slog.Any("error", err))
			}
			return
		}
		if messageType != websocket.TextMessage {
			c.logger.Warn("non-text frame ignored")
			continue
		}

		var env Envelope
		if err := json.Unmarshal(message, &env); err != nil || env.Event == "" {
			c.logger.Warn("malformed envelope ignored", slog.Any("error", err))
			continue
		}

		if c.limiter != nil && !c.limiter.Allow() {
			c.logger.Warn("event rate limited", slog.String("event", env.Event))
			if env.Ack != nil {
				c.enqueue(ackFrame(*env.Ack, map[string]any{"success": false, "error": arcade.MsgTooManyRequests}))
			}
			continue
		}

		for _, out := range c.dispatcher.Dispatch(c.hub.Context(), env) {
			c.enqueue(out)
		}
	}
}

// enqueue hands a frame to the write pump, dropping it when the session
// is closing or its buffer is full
func (c *Client) enqueue(out Outbound) {
	frame, err := out.Encode()
	if err != nil {
		c.logger.Error("failed to encode frame",
			slog.String("event", out.Event),
			slog.Any("error", err))
		return
	}
	select {
	case c.send <- frame:
	case <-c.done:
	default:
		c.logger.Warn("frame dropped - session buffer full", slog.String("event", out.Event))
	}
}

// writePump writes queued frames and keepalive pings
func (c *Client) writePump() {
	ticker := time.NewTicker(c.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.drain()
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(c.cfg.WriteWait))
			return
		}
	}
}

// drain flushes frames queued before the session closed
func (c *Client) drain() {
	for {
		select {
		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		default:
			return
		}
	}
}
