// Package api provides HTTP handlers for topicd.
package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/clustermail/topicd/internal/dbpool"
)

// HealthHandler serves health check endpoints.
type HealthHandler struct {
	pool       *dbpool.Pool
	log        *logrus.Logger
	httpClient *http.Client
	version    string
	startTime  time.Time
	clusterURL string
}

// NewHealthHandler creates a HealthHandler with the given dependencies.
func NewHealthHandler(pool *dbpool.Pool, log *logrus.Logger, version, clusterURL string) *HealthHandler {
	return &HealthHandler{
		pool:       pool,
		log:        log,
		httpClient: &http.Client{Timeout: 2 * time.Second},
		version:    version,
		startTime:  time.Now(),
		clusterURL: clusterURL,
	}
}

// readinessResponse is the JSON payload returned by the readiness endpoint.
type readinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// healthResponse is the JSON payload returned by the health/liveness endpoint.
type healthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	Database      string  `json:"database"`
	Clustering    string  `json:"clustering"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// Liveness handles GET /api/health. It reports status with db, clustering, and uptime info.
func (h *HealthHandler) Liveness(c *gin.Context) {
	resp := healthResponse{
		Status:        "ok",
		Version:       h.version,
		Database:      "connected",
		Clustering:    "unconfigured",
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	}

	// Best-effort database ping (non-fatal for liveness).
	if h.pool != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := h.pool.HealthCheck(ctx); err != nil {
			resp.Database = "disconnected"
		}
	} else {
		resp.Database = "not_configured"
	}

	if h.clusterURL != "" {
		resp.Clustering = h.clusterURL
	}

	c.JSON(http.StatusOK, resp)
}

// Readiness handles GET /api/ready. It checks the DB, schema, and the clustering sidecar.
func (h *HealthHandler) Readiness(c *gin.Context) {
	checks := map[string]string{
		"database":   "ok",
		"schema":     "ok",
		"clustering": "ok",
	}
	status := "ready"
	statusCode := http.StatusOK

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	// Check database connectivity.
	if err := h.pool.HealthCheck(ctx); err != nil {
		h.log.WithError(err).Error("readiness: database health check failed")
		checks["database"] = "error"
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	// Check schema by querying the emails table.
	if checks["database"] == "ok" {
		if err := h.checkSchema(ctx); err != nil {
			h.log.WithError(err).Error("readiness: schema check failed")
			checks["schema"] = "error"
			status = "not_ready"
			statusCode = http.StatusServiceUnavailable
		}
	} else {
		checks["schema"] = "unknown"
	}

	// Check the clustering sidecar (best-effort, non-blocking).
	if err := h.checkCluster(); err != nil {
		h.log.WithError(err).Warn("readiness: clustering check failed")
		checks["clustering"] = "degraded"
	}

	c.JSON(statusCode, readinessResponse{
		Status: status,
		Checks: checks,
	})
}

// checkSchema verifies the database schema by querying the emails table.
func (h *HealthHandler) checkSchema(ctx context.Context) error {
	var count int
	err := h.pool.QueryRow(ctx, "SELECT COUNT(*) FROM emails").Scan(&count)
	if err != nil {
		return fmt.Errorf("schema check: %w", err)
	}

	return nil
}

// checkCluster does a best-effort connectivity check to the clustering sidecar.
func (h *HealthHandler) checkCluster() error {
	if h.clusterURL == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.clusterURL+"/health", http.NoBody)
	if err != nil {
		return fmt.Errorf("cluster request: %w", err)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("cluster service unreachable: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cluster service returned status %d", resp.StatusCode)
	}

	return nil
}
