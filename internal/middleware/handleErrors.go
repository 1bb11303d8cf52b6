package middleware

import (
	"encoding/json"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	customerrors "github.com/reloop/portal/internal/customErrors"
)

type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// ErrorHandler renders the error a handler returns as a customerrors.Error body.
// Server-side failures are logged with their cause; clients only see the generic message.
func ErrorHandler(log *zap.Logger) func(HandlerFunc) http.HandlerFunc {
	return func(h HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			err := h(w, r)
			if err == nil {
				return
			}

			res := &customerrors.Error{
				Code:    customerrors.GetStatus(err),
				Message: customerrors.GetMessage(err),
			}
			if res.Code >= http.StatusInternalServerError {
				log.Error("handler error",
					zap.String("request_id", chimiddleware.GetReqID(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", res.Code),
					zap.Error(err),
				)
			}
			writeError(w, res)
		}
	}
}

func writeError(w http.ResponseWriter, res *customerrors.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.Code)
	_ = json.NewEncoder(w).Encode(res)
}
