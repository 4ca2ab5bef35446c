package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gorilla/websocket"
)

// PanicHandler writes the response for a recovered panic
type PanicHandler func(w http.ResponseWriter, r *http.Request, err any)

// LogPanic logs a recovered value together with the current stack
func LogPanic(logger *slog.Logger, msg string, recovered any, attrs ...slog.Attr) {
	args := make([]any, 0, len(attrs)+2)
	args = append(args,
		slog.String("panic", fmt.Sprint(recovered)),
		slog.String("stack", string(debug.Stack())),
	)
	for _, a := range attrs {
		args = append(args, a)
	}
	logger.Error(msg, args...)
}

// Recovery creates panic recovery middleware with a custom panic handler.
// Websocket upgrade requests get no response: the connection may already
// belong to the realtime session.
func Recovery(logger *slog.Logger, handler PanicHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					LogPanic(logger, "panic recovered", err,
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
					)

					if websocket.IsWebSocketUpgrade(r) {
						return
					}
					handler(w, r, err)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
