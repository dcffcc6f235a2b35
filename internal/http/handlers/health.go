package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/skillquest-backend/internal/platform/logger"
)

type HealthHandler struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewHealthHandler(db *gorm.DB, log *logger.Logger) *HealthHandler {
	return &HealthHandler{db: db, log: log.With("handler", "HealthHandler")}
}

// HealthCheck reports liveness and pings the database.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	if h.db == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		h.log.Warn("Health check database ping failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "down"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "up"})
}
