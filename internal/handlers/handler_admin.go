package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/FIAP-Tech-Challenge-SOAT-10/auth-microservice/internal/core/ports/services"
	"github.com/FIAP-Tech-Challenge-SOAT-10/auth-microservice/internal/dto"
	"github.com/FIAP-Tech-Challenge-SOAT-10/auth-microservice/internal/middleware"
)

// AdminHandler handles administrative requests. All of its routes sit behind
// the admin role gate.
type AdminHandler struct {
	userService portssvc.UserSvcFacade
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(userService portssvc.UserSvcFacade) *AdminHandler {
	return &AdminHandler{userService: userService}
}

// DashboardResponse is the admin dashboard payload.
type DashboardResponse struct {
	Message    string                  `json:"message"`
	Statistics portssvc.DashboardStats `json:"statistics"`
	AdminUser  string                  `json:"admin_user"`
}

// GetDashboard godoc
// @Summary Get admin dashboard
// @Description Get admin dashboard with user and session statistics. Requires admin role.
// @Tags admin
// @Produce json
// @Success 200 {object} DashboardResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /admin/dashboard [get]
func (h *AdminHandler) GetDashboard(c *gin.Context) {
	admin, ok := middleware.GetCurrentUser(c)
	if !ok {
		unauthorized(c, "Could not validate credentials")
		return
	}

	stats, err := h.userService.GetDashboardStats(c.Request.Context())
	if err != nil {
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		logger.Error("Failed to collect dashboard statistics", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to collect dashboard statistics"})
		return
	}

	c.JSON(http.StatusOK, DashboardResponse{
		Message:    "Welcome to the admin dashboard, " + admin.Username + "!",
		Statistics: *stats,
		AdminUser:  admin.Username,
	})
}

// ListUsers godoc
// @Summary List all users
// @Description Get the list of all users with basic information. Requires admin role.
// @Tags admin
// @Produce json
// @Success 200 {object} dto.ListUsersResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers(c.Request.Context())
	if err != nil {
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		logger.Error("Failed to list users", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list users"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListUsersResponse(users))
}
