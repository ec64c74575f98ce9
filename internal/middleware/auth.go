package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"masterdata-service/internal/auth"
	"masterdata-service/pkg/jwtutil"
	"masterdata-service/pkg/logger"
	"masterdata-service/prometheus"
)

// Messages returned with 401 responses
const (
	MsgMissingToken = "missing authorization token"
	MsgInvalidToken = "invalid token"
	MsgExpiredToken = "token has expired"
)

// AuthMiddleware resolves the UserContext from the bearer token. Requests
// without a valid token are rejected before reaching any handler.
func AuthMiddleware(jwt *jwtutil.JWTUtil) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			header := strings.TrimSpace(c.Request().Header.Get(echo.HeaderAuthorization))
			if header == "" {
				log.Warn("Missing authorization token")
				prometheus.RecordAuthError("missing_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": MsgMissingToken})
			}

			scheme, token, ok := strings.Cut(header, " ")
			token = strings.TrimSpace(token)
			if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
				log.Warn("Malformed authorization header")
				prometheus.RecordAuthError("malformed_header")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": MsgInvalidToken})
			}

			claims, err := jwt.ValidateToken(token)
			if err != nil {
				if errors.Is(err, jwtutil.ErrTokenExpired) {
					log.Warn("Expired token", zap.Error(err))
					prometheus.RecordAuthError("expired_token")
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": MsgExpiredToken})
				}
				log.Warn("Invalid token", zap.Error(err))
				prometheus.RecordAuthError("invalid_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": MsgInvalidToken})
			}

			prometheus.AuthSuccessCounter.Inc()

			uc := auth.FromClaims(claims)
			auth.Set(c, uc)
			logger.Attach(c, log.With(uc.Fields()...))

			return next(c)
		}
	}
}
