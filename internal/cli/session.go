package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// frame is one realtime protocol message
type frame struct {
	Event string          `json:"event"`
	Ack   *int64          `json:"ack,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Session is a websocket connection speaking the realtime protocol
type Session struct {
	conn    *websocket.Conn
	nextAck int64
}

// realtimeURL maps the HTTP server URL to its websocket endpoint
func realtimeURL(serverURL string) (string, error) {
	u, err := url.Parse(strings.TrimSuffix(serverURL, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported server URL scheme %q", u.Scheme)
	}
	u.Path += "/ws"
	return u.String(), nil
}

// Dial opens a session against the server
func Dial(ctx context.Context, serverURL string) (*Session, error) {
	wsURL, err := realtimeURL(serverURL)
	if err != nil {
		return nil, err
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", wsURL, err)
	}
	return &Session{conn: conn}, nil
}

// Close closes the session
func (s *Session) Close() error {
	_ = s.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return s.conn.Close()
}

// Call sends event with an acknowledgement id and decodes the ack payload into result
func (s *Session) Call(ctx context.Context, event string, data, result any) error {
	s.nextAck++
	id := s.nextAck
	if err := s.send(frame{Event: event, Ack: &id}, data); err != nil {
		return err
	}

	for {
		f, err := s.receive(ctx)
		if err != nil {
			return err
		}
		if f.Event == "ack" && f.Ack != nil && *f.Ack == id {
			return decodeData(f, result)
		}
	}
}

// Request sends event and waits for the first push whose event is in replies
func (s *Session) Request(ctx context.Context, event string, data any, replies ...string) (string, json.RawMessage, error) {
	if err := s.send(frame{Event: event}, data); err != nil {
		return "", nil, err
	}

	for {
		f, err := s.receive(ctx)
		if err != nil {
			return "", nil, err
		}
		for _, reply := range replies {
			if f.Event == reply {
				return f.Event, f.Data, nil
			}
		}
	}
}

func (s *Session) send(f frame, data any) error {
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		f.Data = raw
	}
	msg, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal frame: %w", err)
	}
	return s.conn.WriteMessage(websocket.TextMessage, msg)
}

func (s *Session) receive(ctx context.Context) (frame, error) {
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(30 * time.Second)
	}
	_ = s.conn.SetReadDeadline(deadline)

	_, msg, err := s.conn.ReadMessage()
	if err != nil {
		return frame{}, fmt.Errorf("read from server: %w", err)
	}

	var f frame
	if err := json.Unmarshal(msg, &f); err != nil {
		return frame{}, fmt.Errorf("failed to parse frame: %w", err)
	}
	return f, nil
}

func decodeData(f frame, result any) error {
	if result == nil || len(f.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(f.Data, result); err != nil {
		return fmt.Errorf("failed to parse %s payload: %w", f.Event, err)
	}
	return nil
}
