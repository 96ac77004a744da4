package handlers

import (
	"net/http"

	"careops/internal/repo"
	"careops/internal/services"
	"careops/pkg/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// InventoryHandler handles manual stock adjustments
type InventoryHandler struct {
	inventoryRepo *repo.InventoryRepository
	engine        *services.AutomationEngine
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(db *gorm.DB, engine *services.AutomationEngine) *InventoryHandler {
	return &InventoryHandler{
		inventoryRepo: repo.NewInventoryRepository(db),
		engine:        engine,
	}
}

// AdjustInventoryRequest represents a manual stock adjustment
type AdjustInventoryRequest struct {
	Change int    `json:"change" validate:"required"`
	Reason string `json:"reason"`
}

// Adjust godoc
// @Summary Adjust inventory quantity
// @Description Apply a manual stock change. Raises a low stock alert when the
// @Description quantity crosses the threshold from above.
// @Tags inventory
// @Accept json
// @Produce json
// @Param id path string true "Item ID"
// @Param adjustment body AdjustInventoryRequest true "Adjustment data"
// @Success 200 {object} models.InventoryItem
// @Router /inventory/{id}/adjust [post]
// @Security BearerAuth
func (h *InventoryHandler) Adjust(c echo.Context) error {
	workspaceID := c.Get("workspace_id").(uuid.UUID)

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid item ID"})
	}

	var req AdjustInventoryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	item, err := h.inventoryRepo.GetByIDAndWorkspace(itemID, workspaceID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Item not found"})
	}

	wasAbove := item.Quantity > item.LowStockThreshold
	item.Quantity += req.Change
	if item.Quantity < 0 {
		item.Quantity = 0
	}
	if err := h.inventoryRepo.Update(item); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update item"})
	}

	reason := req.Reason
	if reason == "" {
		reason = "manual"
	}
	if err := h.inventoryRepo.CreateLog(&models.InventoryLog{
		ItemID: item.ID,
		Change: req.Change,
		Reason: reason,
	}); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to log adjustment"})
	}

	// Alert only on the crossing, not on every adjustment below threshold
	if wasAbove && item.Quantity <= item.LowStockThreshold {
		h.engine.Trigger(workspaceID, models.TriggerInventoryLow, &services.TriggerContext{
			Item: item,
		})
	}

	return c.JSON(http.StatusOK, item)
}
