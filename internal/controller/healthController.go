package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	customerrors "github.com/reloop/portal/internal/customErrors"
	"github.com/reloop/portal/internal/dto"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthController struct {
	db Pinger
}

func NewHealthController(db Pinger) *HealthController {
	return &HealthController{db: db}
}

func (c *HealthController) HealthCheck(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := c.db.Ping(ctx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return customerrors.ErrDbTimeout
		}
		return customerrors.ErrDbUnreacheable
	}

	return respond(w, http.StatusOK, dto.HealthResponse{
		Status:   "OK",
		Database: "Connected",
	})
}
