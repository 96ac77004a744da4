package handlers

import (
	"net/http"
	"strconv"

	"careops/internal/repo"
	"careops/pkg/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

const defaultAlertLimit = 50

// AlertHandler handles alert listing and acknowledgement
type AlertHandler struct {
	alertRepo *repo.AlertRepository
	logRepo   *repo.AutomationLogRepository
}

// NewAlertHandler creates a new alert handler
func NewAlertHandler(db *gorm.DB) *AlertHandler {
	return &AlertHandler{
		alertRepo: repo.NewAlertRepository(db),
		logRepo:   repo.NewAutomationLogRepository(db),
	}
}

// List godoc
// @Summary List alerts
// @Description List workspace alerts, newest first, paginated
// @Tags alerts
// @Produce json
// @Param unread_only query bool false "Only unread alerts"
// @Param page query int false "Page number (default 1)"
// @Param per_page query int false "Results per page (default 50, max 200)"
// @Success 200 {object} models.PaginationResult[models.Alert]
// @Router /alerts [get]
// @Security BearerAuth
func (h *AlertHandler) List(c echo.Context) error {
	workspaceID := c.Get("workspace_id").(uuid.UUID)

	unreadOnly := c.QueryParam("unread_only") == "true"
	page := 1
	if raw := c.QueryParam("page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			page = parsed
		}
	}
	perPage := defaultAlertLimit
	if raw := c.QueryParam("per_page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 200 {
			perPage = parsed
		}
	}

	alerts, total, err := h.alertRepo.ListByWorkspacePaged(workspaceID, unreadOnly, page, perPage)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to list alerts"})
	}

	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	return c.JSON(http.StatusOK, models.PaginationResult[models.Alert]{
		Data:       alerts,
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
	})
}

// MarkRead godoc
// @Summary Mark alert as read
// @Tags alerts
// @Produce json
// @Param id path string true "Alert ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /alerts/{id}/read [put]
// @Security BearerAuth
func (h *AlertHandler) MarkRead(c echo.Context) error {
	workspaceID := c.Get("workspace_id").(uuid.UUID)

	alertID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid alert ID"})
	}

	if err := h.alertRepo.MarkRead(alertID, workspaceID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Alert not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to mark alert as read"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "read"})
}

// AutomationLog godoc
// @Summary List automation audit log
// @Description List recent automation runs, newest first
// @Tags alerts
// @Produce json
// @Param limit query int false "Max results (default 50)"
// @Success 200 {array} models.AutomationLog
// @Router /automation/log [get]
// @Security BearerAuth
func (h *AlertHandler) AutomationLog(c echo.Context) error {
	workspaceID := c.Get("workspace_id").(uuid.UUID)

	limit := defaultAlertLimit
	if raw := c.QueryParam("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}

	logs, err := h.logRepo.ListByWorkspace(workspaceID, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to list automation log"})
	}
	return c.JSON(http.StatusOK, logs)
}
