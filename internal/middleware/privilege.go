package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"masterdata-service/internal/auth"
	"masterdata-service/pkg/logger"
	"masterdata-service/prometheus"
)

// MsgForbidden is returned with 403 responses of the privilege gate
const MsgForbidden = "you do not have permission to perform this action"

// RequirePrivileges lets a request through when the caller holds any of the
// required privileges, directly or through a wildcard. Requests without a
// UserContext are denied.
func RequirePrivileges(required ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			uc := auth.FromEcho(c)
			if uc == nil {
				log.Warn("Privilege check without user context", zap.String("path", c.Path()))
				prometheus.PrivilegeDeniedCounter.WithLabelValues(c.Path()).Inc()
				return c.JSON(http.StatusForbidden, echo.Map{"error": MsgForbidden})
			}

			if !auth.Allowed(uc.Privileges, required) {
				log.Warn("Missing privilege",
					zap.String("path", c.Path()),
					zap.Strings("required", required),
					zap.Strings("granted", uc.Privileges))
				prometheus.PrivilegeDeniedCounter.WithLabelValues(c.Path()).Inc()
				return c.JSON(http.StatusForbidden, echo.Map{"error": MsgForbidden})
			}

			return next(c)
		}
	}
}
