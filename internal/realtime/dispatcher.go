package realtime

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/metrics"
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/middleware"
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/services/arcade"
)

// Handler serves the protocol operations
type Handler interface {
	UserData(ctx context.Context, req arcade.UserDataRequest) arcade.Push
	ScoreUpdate(ctx context.Context, req arcade.ScoreUpdateRequest) arcade.ScoreUpdateAck
	DeleteData(ctx context.Context, req arcade.DeleteDataRequest) arcade.DeleteDataAck
	Leaderboard(ctx context.Context) arcade.Push
}

// Dispatcher routes inbound envelopes to the Handler and shapes the replies
type Dispatcher struct {
	handler Handler
	timeout time.Duration
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewDispatcher creates a new Dispatcher
func NewDispatcher(handler Handler, timeout time.Duration, metrics *metrics.Metrics, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		handler: handler,
		timeout: timeout,
		metrics: metrics,
		logger:  logger.With(slog.String("component", "realtime-dispatcher")),
	}
}

// Dispatch handles one envelope and returns the frames to send back.
// Unknown events yield nothing and are not observed. A panicking handler
// is reported to the client as an internal error.
func (d *Dispatcher) Dispatch(ctx context.Context, env Envelope) (out []Outbound) {
	start := time.Now()
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	known := true
	defer func() {
		if rec := recover(); rec != nil {
			middleware.LogPanic(d.logger, "event handler panicked", rec, slog.String("event", env.Event))
			out = []Outbound{d.failure(env, arcade.MsgInternalServerError)}
		}
		if known {
			d.metrics.ObserveEvent(env.Event, time.Since(start))
		}
	}()

	switch env.Event {
	case arcade.EventUserData:
		var req arcade.UserDataRequest
		if !d.decode(env, &req) {
			return []Outbound{d.failure(env, arcade.MsgInvalidPayload)}
		}
		out = []Outbound{pushFrame(d.handler.UserData(ctx, req))}

	case arcade.EventScoreUpdate:
		var req arcade.ScoreUpdateRequest
		if !d.decode(env, &req) {
			return []Outbound{d.failure(env, arcade.MsgInvalidPayload)}
		}
		ack := d.handler.ScoreUpdate(ctx, req)
		if env.Ack != nil {
			out = []Outbound{ackFrame(*env.Ack, ack)}
		}

	case arcade.EventDeleteData:
		var req arcade.DeleteDataRequest
		if !d.decode(env, &req) {
			return []Outbound{d.failure(env, arcade.MsgInvalidPayload)}
		}
		ack := d.handler.DeleteData(ctx, req)
		if env.Ack != nil {
			out = []Outbound{ackFrame(*env.Ack, ack)}
		}

	case arcade.EventLeaderboard:
		out = []Outbound{pushFrame(d.handler.Leaderboard(ctx))}

	default:
		known = false
		d.logger.Warn("unknown event ignored", slog.String("event", env.Event))
		return nil
	}

	return out
}

// failure builds the reply for a request that could not be served: an
// acknowledgement when one is expected, otherwise an error push
func (d *Dispatcher) failure(env Envelope, message string) Outbound {
	if env.Ack != nil {
		return ackFrame(*env.Ack, map[string]any{"success": false, "error": message})
	}
	return Outbound{Event: arcade.EventError, Data: arcade.ErrorMessage{Message: message}}
}

func pushFrame(p arcade.Push) Outbound {
	return Outbound{Event: p.Event, Data: p.Data}
}

// decode fills req from the envelope data. Absent data leaves req zero.
func (d *Dispatcher) decode(env Envelope, req any) bool {
	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return true
	}
	if err := json.Unmarshal(data, req); err != nil {
		d.logger.Warn("malformed event payload",
			slog.String("event", env.Event),
			slog.Any("error", err))
		return false
	}
	return true
}
