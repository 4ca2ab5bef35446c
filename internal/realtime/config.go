package realtime

import "time"

// Config holds websocket session settings
type Config struct {
	// RequestTimeout bounds the processing of one inbound event
	RequestTimeout time.Duration

	// Keepalive settings. PingPeriod must be shorter than PongWait.
	PingPeriod time.Duration
	PongWait   time.Duration
	WriteWait  time.Duration

	// MaxMessageSize is the largest inbound frame accepted, in bytes
	MaxMessageSize int64

	// SendBufferSize is the number of outbound frames queued per session
	SendBufferSize int

	// EventsPerSecond and EventBurst rate limit inbound events per session.
	// Zero EventsPerSecond disables limiting.
	EventsPerSecond float64
	EventBurst      int

	// AllowedOrigins lists the origins allowed to open a session; "*" allows any
	AllowedOrigins []string
}

// DefaultConfig returns sensible defaults for websocket sessions
func DefaultConfig() Config {
	return Config{
		RequestTimeout:  10 * time.Second,
		PingPeriod:      54 * time.Second,
		PongWait:        60 * time.Second,
		WriteWait:       10 * time.Second,
		MaxMessageSize:  8 * 1024,
		SendBufferSize:  64,
		EventsPerSecond: 20,
		EventBurst:      40,
		AllowedOrigins:  []string{"*"},
	}
}
