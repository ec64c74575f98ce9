package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"masterdata-service/pkg/logger"
)

// RequestIDHeader carries the request id, accepted from the client when present
const RequestIDHeader = "X-Request-ID"

// RequestIDMiddleware adds a unique request ID to each request and a request
// logger carrying it
func RequestIDMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := c.Request().Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}

		c.Set("request_id", requestID)
		c.Response().Header().Set(RequestIDHeader, requestID)

		logger.Attach(c, logger.GetLogger().With(zap.String("request_id", requestID)))

		return next(c)
	}
}
