package handler

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/scopecraft/estimation-api/internal/database"
)

// HealthHandler serves liveness and readiness checks
type HealthHandler struct {
	db      *sql.DB
	version string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *sql.DB, version string) *HealthHandler {
	return &HealthHandler{db: db, version: version}
}

// Health reports service and database status
func (h *HealthHandler) Health(c *gin.Context) {
	dbStatus := "ok"
	status := http.StatusOK

	if err := h.db.PingContext(c.Request.Context()); err != nil {
		dbStatus = "unavailable"
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status":    dbStatus,
		"version":   h.version,
		"timestamp": time.Now().UTC(),
		"database": gin.H{
			"status": dbStatus,
			"pool":   database.GetPoolStats(h.db),
		},
	})
}
