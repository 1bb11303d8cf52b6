package middleware

import (
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	customerrors "github.com/reloop/portal/internal/customErrors"
)

// LoggingMiddleware writes one access log line per request.
func LoggingMiddleware(log *zap.Logger) func(HandlerFunc) HandlerFunc {
	return func(next HandlerFunc) HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) error {
			start := time.Now()

			err := next(w, r)

			status := http.StatusOK
			if err != nil {
				status = customerrors.GetStatus(err)
			}

			fields := []zap.Field{
				zap.String("request_id", chimiddleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Duration("duration", time.Since(start)),
			}
			switch {
			case status >= http.StatusInternalServerError:
				log.Warn("request failed", fields...)
			case err != nil:
				log.Info("request rejected", append(fields, zap.String("reason", customerrors.GetMessage(err)))...)
			default:
				log.Info("request completed", fields...)
			}

			return err
		}
	}
}
