package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"masterdata-service/internal/auth"
	"masterdata-service/internal/service"
	"masterdata-service/pkg/logger"
)

// RolePrivilegesRequest is the body of PUT /api/roles/:id/privileges
type RolePrivilegesRequest struct {
	Privileges []string `json:"privileges"`
}

// RoleHandler serves the role privilege assignment
type RoleHandler struct {
	svc *service.RoleService
}

// NewRoleHandler creates a RoleHandler
func NewRoleHandler(svc *service.RoleService) *RoleHandler {
	return &RoleHandler{svc: svc}
}

// SetPrivileges replaces the privileges granted by a role
func (h *RoleHandler) SetPrivileges(c echo.Context) error {
	var req RolePrivilegesRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request data", err)
	}

	role, err := h.svc.SetPrivileges(c.Request().Context(), auth.FromEcho(c), c.Param("id"), req.Privileges)
	if err != nil {
		return respondError(c, "role", err)
	}

	logger.FromContext(c).Info("Role privileges replaced",
		zap.Uint("role_id", role.ID),
		zap.Strings("privileges", role.PrivilegeNames()))
	return c.JSON(http.StatusOK, role)
}
