package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"masterdata-service/pkg/logger"
)

// HealthHandler reports service and database liveness
type HealthHandler struct {
	service string
	db      *gorm.DB
}

// NewHealthHandler creates a HealthHandler
func NewHealthHandler(service string, db *gorm.DB) *HealthHandler {
	return &HealthHandler{service: service, db: db}
}

// HealthCheck handles the health check endpoint
func (h *HealthHandler) HealthCheck(c echo.Context) error {
	code, status, database := http.StatusOK, "healthy", "up"

	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request().Context())
	}
	if err != nil {
		logger.FromContext(c).Error("Database ping failed", zap.Error(err))
		code, status, database = http.StatusServiceUnavailable, "unhealthy", "down"
	}

	return c.JSON(code, echo.Map{
		"status":   status,
		"service":  h.service,
		"database": database,
	})
}
