package controller

import (
	"context"
	"net/http"
	"time"

	dto "github.com/vibast-solutions/ms-go-mood-journal/app/dto/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// Pinger checks that a backing store is reachable.
type Pinger func(ctx context.Context) error

type HealthController struct {
	ping Pinger
}

// NewHealthController accepts a nil ping for stores with nothing to dial.
func NewHealthController(ping Pinger) *HealthController {
	return &HealthController{ping: ping}
}

func (c *HealthController) Health(ctx echo.Context) error {
	if c.ping != nil {
		pingCtx, cancel := context.WithTimeout(ctx.Request().Context(), 2*time.Second)
		defer cancel()

		if err := c.ping(pingCtx); err != nil {
			logrus.WithError(err).Warn("Health check failed")
			return ctx.JSON(http.StatusServiceUnavailable, dto.HealthResponse{Status: "unavailable"})
		}
	}
	return ctx.JSON(http.StatusOK, dto.HealthResponse{Status: "ok"})
}
