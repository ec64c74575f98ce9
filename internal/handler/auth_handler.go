package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"masterdata-service/internal/auth"
	"masterdata-service/internal/service"
	"masterdata-service/internal/validation"
	"masterdata-service/pkg/logger"
	"masterdata-service/prometheus"
)

// LoginRequest is the body of POST /auth/login. Login accepts a login id or an email.
type LoginRequest struct {
	LoginID  string `json:"login_id" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthHandler serves login and the current user profile
type AuthHandler struct {
	svc       *service.AuthService
	validator *validation.Validator
}

// NewAuthHandler creates an AuthHandler
func NewAuthHandler(svc *service.AuthService, v *validation.Validator) *AuthHandler {
	return &AuthHandler{svc: svc, validator: v}
}

// Login verifies the credentials and issues a token
func (h *AuthHandler) Login(c echo.Context) error {
	log := logger.FromContext(c)

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		prometheus.RecordAuthError("invalid_request")
		return badRequest(c, "Invalid request data", err)
	}
	if err := h.validator.Validate(&req); err != nil {
		prometheus.RecordAuthError("invalid_request")
		return respondError(c, "user", err)
	}

	result, err := h.svc.Login(c.Request().Context(), req.LoginID, req.Password)
	if err != nil {
		return respondError(c, "user", err)
	}

	log.Info("Login successful",
		zap.Uint("user_id", result.User.ID),
		zap.String("login_id", result.User.LoginID))
	return c.JSON(http.StatusOK, result)
}

// Me returns the authenticated user with the grants of the token
func (h *AuthHandler) Me(c echo.Context) error {
	profile, err := h.svc.Me(c.Request().Context(), auth.FromEcho(c))
	if err != nil {
		return respondError(c, "user", err)
	}
	return c.JSON(http.StatusOK, profile)
}
