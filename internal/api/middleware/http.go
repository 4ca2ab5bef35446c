package middleware

import (
	"log/slog"
	"net/http"

	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/api/apierr"
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/middleware"
)

// Logging logs every API request under the http component
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger.With(slog.String("component", "http")))
}

// Recovery turns handler panics into a JSON 500 response
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger.With(slog.String("component", "http")), writeInternalError)
}

func writeInternalError(w http.ResponseWriter, _ *http.Request, _ any) {
	apierr.WriteError(w, apierr.NewInternalError())
}
