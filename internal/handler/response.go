package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"masterdata-service/internal/repository"
	"masterdata-service/internal/service"
	"masterdata-service/internal/validation"
	"masterdata-service/pkg/logger"
)

// MsgInvalidData is the message of every 422 response
const MsgInvalidData = "The given data was invalid."

// respondError translates a service error into its HTTP response.
// Unexpected errors are logged and answered with a generic 500.
func respondError(c echo.Context, entity string, err error) error {
	log := logger.FromContext(c)

	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		log.Info("Validation failed", zap.String("entity", entity), zap.Any("errors", verrs))
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"message": MsgInvalidData,
			"errors":  verrs,
		})
	case errors.Is(err, repository.ErrNotFound):
		log.Info("Record not found", zap.String("entity", entity))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": entity + " not found",
		})
	case errors.Is(err, repository.ErrForbidden):
		log.Warn("Tenant boundary violation", zap.String("entity", entity))
		return c.JSON(http.StatusForbidden, echo.Map{
			"error": "you may not modify this " + entity,
		})
	case errors.Is(err, repository.ErrInvalidFilter),
		errors.Is(err, service.ErrInvalidUpload),
		errors.Is(err, service.ErrInvalidImport):
		log.Info("Bad request", zap.String("entity", entity), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": err.Error(),
		})
	case errors.Is(err, service.ErrInvalidCredentials):
		log.Info("Invalid credentials")
		return c.JSON(http.StatusUnauthorized, echo.Map{
			"error": "invalid credentials",
		})
	}

	log.Error("Request failed", zap.String("entity", entity), zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{
		"error": "internal server error",
	})
}

// badRequest answers a body or form that could not be read
func badRequest(c echo.Context, message string, err error) error {
	logger.FromContext(c).Info(message, zap.Error(err))
	return c.JSON(http.StatusBadRequest, echo.Map{
		"error": message,
	})
}
