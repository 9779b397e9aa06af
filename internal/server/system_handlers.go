package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"gymhub/internal/api"
	"gymhub/internal/logger"
)

type HealthResponse struct {
	Status   string `json:"status" example:"ok"`
	Database string `json:"database" example:"up"`
	Redis    string `json:"redis" example:"up"`
}

// @Summary      Health check
// @Description  Reports database and Redis reachability. Redis being down degrades but does not fail the check.
// @Tags         system
// @Produce      json
// @Success      200 {object} server.HealthResponse
// @Failure      503 {object} server.HealthResponse
// @Router       /health [get]
func Health(database *sqlx.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		resp := HealthResponse{Status: "ok", Database: "up", Redis: "up"}
		status := http.StatusOK

		if database != nil {
			if err := database.PingContext(ctx); err != nil {
				logger.Warn("health check: database unreachable", "error", err)
				resp.Status, resp.Database = "unavailable", "down"
				status = http.StatusServiceUnavailable
			}
		}
		if rdb != nil {
			if err := rdb.Ping(ctx).Err(); err != nil {
				logger.Warn("health check: redis unreachable", "error", err)
				resp.Redis = "down"
				if status == http.StatusOK {
					resp.Status = "degraded"
				}
			}
		}

		c.JSON(status, resp)
	}
}

// @Summary      Liveness probe
// @Tags         system
// @Produce      json
// @Success      200 {object} api.HealthResponse
// @Router       /health/live [get]
func Live(c *gin.Context) {
	c.JSON(http.StatusOK, api.HealthResponse{Status: "ok"})
}

// @Summary      Prometheus metrics
// @Description  Exposes Prometheus metrics in text format
// @Tags         system
// @Produce      text/plain
// @Success      200 {string} string
// @Router       /metrics [get]
func Metrics() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
