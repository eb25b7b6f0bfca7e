package handlers

import (
	"context"
	"net/http"
	"time"

	"referralhub/internal/utils"
	"referralhub/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Pinger is satisfied by the database and cache clients.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ClientCounter reports connected live feed clients.
type ClientCounter interface {
	ClientCount() int
}

type HealthHandler struct {
	version      string
	dependencies map[string]Pinger
	live         ClientCounter
	logger       *logger.Logger
}

func NewHealthHandler(version string, dependencies map[string]Pinger, log *logger.Logger) *HealthHandler {
	return &HealthHandler{version: version, dependencies: dependencies, logger: log}
}

// WithLiveFeed adds the live feed client count to health responses.
func (h *HealthHandler) WithLiveFeed(live ClientCounter) *HealthHandler {
	h.live = live
	return h
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := make(map[string]string, len(h.dependencies))
	healthy := true
	for name, dep := range h.dependencies {
		if err := dep.Ping(ctx); err != nil {
			h.logger.WithError(err).WithField("dependency", name).Warn("Health check failed")
			checks[name] = "down"
			healthy = false
			continue
		}
		checks[name] = "up"
	}

	data := gin.H{"version": h.version, "checks": checks}
	if h.live != nil {
		data["live_clients"] = h.live.ClientCount()
	}
	if !healthy {
		c.JSON(http.StatusServiceUnavailable, utils.APIResponse{
			Status:    utils.StatusError,
			Message:   "Service degraded",
			Data:      data,
			Timestamp: time.Now(),
		})
		return
	}

	utils.SuccessResponse(c, "Service healthy", data)
}
