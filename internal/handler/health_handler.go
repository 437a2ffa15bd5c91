package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/afero"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	fs      afero.Fs
	rootDir string
	db      *sqlx.DB
}

// NewHealthHandler creates a new HealthHandler. db may be nil when the run ledger is disabled.
func NewHealthHandler(fsys afero.Fs, rootDir string, db *sqlx.DB) *HealthHandler {
	return &HealthHandler{fs: fsys, rootDir: rootDir, db: db}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz
func (h *HealthHandler) Readiness(c *gin.Context) {
	info, err := h.fs.Stat(h.rootDir)
	if err != nil || !info.IsDir() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "workspace root not readable"})
		return
	}
	if h.db != nil {
		if err := h.db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "database not reachable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
