package handlers

import (
	"net/http"
	"time"

	"careops/internal/repo"
	"careops/internal/services"
	"careops/pkg/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// FormHandler handles form submissions and reminder requests
type FormHandler struct {
	formRepo    *repo.FormSubmissionRepository
	contactRepo *repo.ContactRepository
	engine      *services.AutomationEngine
}

// NewFormHandler creates a new form handler
func NewFormHandler(db *gorm.DB, engine *services.AutomationEngine) *FormHandler {
	return &FormHandler{
		formRepo:    repo.NewFormSubmissionRepository(db),
		contactRepo: repo.NewContactRepository(db),
		engine:      engine,
	}
}

// Remind godoc
// @Summary Resend a form reminder
// @Description Email the contact a reminder for a pending form submission
// @Tags forms
// @Produce json
// @Param id path string true "Submission ID"
// @Success 202 {object} map[string]string
// @Router /forms/submissions/{id}/remind [post]
// @Security BearerAuth
func (h *FormHandler) Remind(c echo.Context) error {
	workspaceID := c.Get("workspace_id").(uuid.UUID)

	submissionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid submission ID"})
	}

	submission, err := h.formRepo.GetByIDAndWorkspace(submissionID, workspaceID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Submission not found"})
	}
	if submission.Status != models.SubmissionPending {
		return c.JSON(http.StatusConflict, map[string]string{"error": "Submission is not pending"})
	}

	contact, err := h.contactRepo.GetByID(submission.ContactID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load contact"})
	}

	h.engine.Trigger(workspaceID, models.TriggerFormPending, &services.TriggerContext{
		Submission: submission,
		Contact:    contact,
	})

	return c.JSON(http.StatusAccepted, map[string]string{"status": "reminder queued"})
}

// SubmitFormRequest represents a public form submission payload
type SubmitFormRequest struct {
	Data string `json:"data" validate:"required"`
}

// Submit godoc
// @Summary Submit a form
// @Description Public endpoint completing a pending form submission
// @Tags forms
// @Accept json
// @Produce json
// @Param id path string true "Submission ID"
// @Param submission body SubmitFormRequest true "Form data"
// @Success 200 {object} models.FormSubmission
// @Router /public/form/{id} [post]
func (h *FormHandler) Submit(c echo.Context) error {
	submissionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid submission ID"})
	}

	var req SubmitFormRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	submission, err := h.formRepo.GetByID(submissionID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Submission not found"})
	}
	if submission.Status == models.SubmissionCompleted {
		return c.JSON(http.StatusConflict, map[string]string{"error": "Form already submitted"})
	}

	now := time.Now().UTC()
	submission.Status = models.SubmissionCompleted
	submission.Data = req.Data
	submission.SubmittedAt = &now
	if err := h.formRepo.Update(submission); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save submission"})
	}

	return c.JSON(http.StatusOK, submission)
}
