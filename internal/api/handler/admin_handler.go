package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medbuddy/second-opinion-api/internal/core/domain"
	"github.com/medbuddy/second-opinion-api/internal/core/ports"
)

type AdminHandler struct {
	adminService ports.AdminService
	authService  ports.AuthService
	caseService  ports.CaseService
}

func NewAdminHandler(adminService ports.AdminService, authService ports.AuthService, caseService ports.CaseService) *AdminHandler {
	return &AdminHandler{adminService: adminService, authService: authService, caseService: caseService}
}

type resetPasswordRequest struct {
	Email       string `json:"email"       validate:"required,email"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

type resetPasswordResponse struct {
	Message string               `json:"message"`
	User    domain.PublicProfile `json:"user"`
}

type userListResponse struct {
	Users []ports.UserSummary `json:"users"`
}

// Stats returns platform-wide aggregate counters.
//
// @Summary      Platform statistics
// @Tags         admin
// @Produce      json
// @Success      200  {object}  ports.Stats
// @Security     BearerAuth
// @Router       /api/admin/stats [get]
func (h *AdminHandler) Stats(c echo.Context) error {
	stats, err := h.adminService.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// ListUsers returns all registered users without credential material.
//
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Success      200  {object}  userListResponse
// @Security     BearerAuth
// @Router       /api/admin/users [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
	users, err := h.adminService.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userListResponse{Users: users})
}

// ResetPassword replaces a user's password on their behalf.
//
// @Summary      Reset a user's password
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body      resetPasswordRequest  true  "Target user and new password"
// @Success      200  {object}  resetPasswordResponse
// @Failure      404  {object}  errorResponse
// @Security     BearerAuth
// @Router       /api/admin/reset-password [post]
func (h *AdminHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.authService.ResetPassword(c.Request().Context(), req.Email, req.NewPassword)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resetPasswordResponse{
		Message: "Password reset successfully",
		User:    user,
	})
}

// CaseEvents returns the audit trail of a case, oldest first.
//
// @Summary      Case audit trail
// @Tags         admin
// @Produce      json
// @Param        id   path      string  true  "Case ID"
// @Success      200  {object}  eventListResponse
// @Security     BearerAuth
// @Router       /api/admin/cases/{id}/events [get]
func (h *AdminHandler) CaseEvents(c echo.Context) error {
	events, err := h.caseService.Events(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, eventListResponse{Events: events})
}
