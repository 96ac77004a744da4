package handlers

import (
	"io"
	"net/http"
	"time"

	"careops/internal/repo"
	"careops/internal/services"
	"careops/internal/utils"
	"careops/pkg/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// ContactHandler handles contact intake
type ContactHandler struct {
	contactRepo      *repo.ContactRepository
	conversationRepo *repo.ConversationRepository
	engine           *services.AutomationEngine
}

// NewContactHandler creates a new contact handler
func NewContactHandler(db *gorm.DB, engine *services.AutomationEngine) *ContactHandler {
	return &ContactHandler{
		contactRepo:      repo.NewContactRepository(db),
		conversationRepo: repo.NewConversationRepository(db),
		engine:           engine,
	}
}

// CreateContactRequest represents contact intake data
type CreateContactRequest struct {
	Name   string `json:"name" validate:"required"`
	Email  string `json:"email" validate:"omitempty,email"`
	Phone  string `json:"phone"`
	Notes  string `json:"notes"`
	Source string `json:"source"`
}

// Create godoc
// @Summary Create contact
// @Description Create a new contact, open its conversation and run intake automation
// @Tags contacts
// @Accept json
// @Produce json
// @Param contact body CreateContactRequest true "Contact data"
// @Success 201 {object} models.Contact
// @Failure 400 {object} map[string]string
// @Router /contacts [post]
// @Security BearerAuth
func (h *ContactHandler) Create(c echo.Context) error {
	workspaceID := c.Get("workspace_id").(uuid.UUID)

	var req CreateContactRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if req.Email == "" && req.Phone == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Contact needs an email or a phone number"})
	}

	source := req.Source
	if source == "" {
		source = models.ContactSourceManual
	}

	contact := &models.Contact{
		BaseWorkspaceModel: models.BaseWorkspaceModel{WorkspaceID: workspaceID},
		Name:               req.Name,
		Email:              req.Email,
		Phone:              req.Phone,
		Notes:              req.Notes,
		Source:             source,
	}
	if err := h.contactRepo.Create(contact); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create contact"})
	}

	now := time.Now().UTC()
	conversation := &models.Conversation{
		BaseWorkspaceModel: models.BaseWorkspaceModel{WorkspaceID: workspaceID},
		ContactID:          contact.ID,
		Subject:            "New contact: " + contact.Name,
		Status:             models.ConversationOpen,
		LastMessageAt:      &now,
	}
	if err := h.conversationRepo.Create(conversation); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to open conversation"})
	}

	h.engine.Trigger(workspaceID, models.TriggerContactCreated, &services.TriggerContext{
		ConversationID: &conversation.ID,
		Contact:        contact,
	})

	return c.JSON(http.StatusCreated, contact)
}

// ImportResult summarizes a CSV contact import
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// Import godoc
// @Summary Import contacts from CSV
// @Description Bulk import contacts from a CSV upload. Delimiter and header
// @Description row are autodetected. Imported contacts do not trigger
// @Description welcome automation.
// @Tags contacts
// @Accept mpfd
// @Produce json
// @Param file formData file true "CSV file"
// @Success 200 {object} ImportResult
// @Router /contacts/import [post]
// @Security BearerAuth
func (h *ContactHandler) Import(c echo.Context) error {
	workspaceID := c.Get("workspace_id").(uuid.UUID)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Missing file upload"})
	}
	file, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Failed to open upload"})
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Failed to read upload"})
	}

	rows, _, err := utils.ParseContactCSV(content)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	result := ImportResult{}
	for _, row := range rows {
		contact := &models.Contact{
			BaseWorkspaceModel: models.BaseWorkspaceModel{WorkspaceID: workspaceID},
			Name:               row.Name,
			Email:              row.Email,
			Phone:              row.Phone,
			Notes:              row.Notes,
			Source:             models.ContactSourceManual,
		}
		if err := h.contactRepo.Create(contact); err != nil {
			result.Skipped++
			continue
		}
		result.Imported++
	}

	return c.JSON(http.StatusOK, result)
}
