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

// PublicHandler serves the unauthenticated intake surface reached from a
// workspace's public pages: the contact form and self-service booking.
// Workspaces are addressed by slug and must be active.
type PublicHandler struct {
	workspaceRepo    *repo.WorkspaceRepository
	contactRepo      *repo.ContactRepository
	conversationRepo *repo.ConversationRepository
	messageRepo      *repo.MessageRepository
	serviceRepo      *repo.ServiceRepository
	bookingRepo      *repo.BookingRepository
	calendar         *services.CalendarService
	engine           *services.AutomationEngine
}

// NewPublicHandler creates a new public intake handler
func NewPublicHandler(db *gorm.DB, calendar *services.CalendarService, engine *services.AutomationEngine) *PublicHandler {
	return &PublicHandler{
		workspaceRepo:    repo.NewWorkspaceRepository(db),
		contactRepo:      repo.NewContactRepository(db),
		conversationRepo: repo.NewConversationRepository(db),
		messageRepo:      repo.NewMessageRepository(db),
		serviceRepo:      repo.NewServiceRepository(db),
		bookingRepo:      repo.NewBookingRepository(db),
		calendar:         calendar,
		engine:           engine,
	}
}

// ContactFormRequest represents a public contact form submission
type ContactFormRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// ContactForm godoc
// @Summary Submit public contact form
// @Description Create or match a contact for the workspace and open a conversation
// @Tags public
// @Accept json
// @Produce json
// @Param slug path string true "Workspace slug"
// @Param form body ContactFormRequest true "Contact form data"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /public/contact/{slug} [post]
func (h *PublicHandler) ContactForm(c echo.Context) error {
	workspace, err := h.workspaceRepo.GetActiveBySlug(c.Param("slug"))
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Workspace not found"})
	}

	var req ContactFormRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if req.Email == "" && req.Phone == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Email or phone is required"})
	}

	contact, isNew, err := h.findOrCreateContact(workspace.ID, req.Name, req.Email, req.Phone, models.ContactSourceContactForm)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create contact"})
	}

	conversation, err := h.conversationRepo.GetNotClosedByContact(contact.ID, workspace.ID)
	if err != nil {
		now := time.Now().UTC()
		conversation = &models.Conversation{
			BaseWorkspaceModel: models.BaseWorkspaceModel{WorkspaceID: workspace.ID},
			ContactID:          contact.ID,
			Subject:            "Inquiry from " + contact.Name,
			Status:             models.ConversationOpen,
			LastMessageAt:      &now,
		}
		if err := h.conversationRepo.Create(conversation); err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to open conversation"})
		}
	}

	if req.Message != "" {
		messageType := models.MessageTypeSMS
		if req.Email != "" {
			messageType = models.MessageTypeEmail
		}
		message := &models.Message{
			BaseWorkspaceModel: models.BaseWorkspaceModel{WorkspaceID: workspace.ID},
			ConversationID:     conversation.ID,
			Type:               messageType,
			Direction:          models.MessageInbound,
			Content:            req.Message,
			Status:             models.MessageStatusDelivered,
		}
		if err := h.messageRepo.Create(message); err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to record message"})
		}
		now := time.Now().UTC()
		conversation.LastMessageAt = &now
		if err := h.conversationRepo.Update(conversation); err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update conversation"})
		}
	}

	// Returning visitors do not re-run the welcome automation.
	if isNew {
		h.engine.Trigger(workspace.ID, models.TriggerContactCreated, &services.TriggerContext{
			ConversationID: &conversation.ID,
			Contact:        contact,
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Thank you! We'll be in touch shortly.",
	})
}

// PublicBookingRequest represents a self-service booking submission
type PublicBookingRequest struct {
	ServiceID   string    `json:"service_id" validate:"required,uuid"`
	BookingDate time.Time `json:"booking_date" validate:"required"`
	Name        string    `json:"name"`
	Email       string    `json:"email" validate:"omitempty,email"`
	Phone       string    `json:"phone"`
	Notes       string    `json:"notes"`
}

// CreateBooking godoc
// @Summary Create public booking
// @Description Book a service slot from the public booking page. Rejects taken slots.
// @Tags public
// @Accept json
// @Produce json
// @Param slug path string true "Workspace slug"
// @Param booking body PublicBookingRequest true "Booking data"
// @Success 201 {object} models.Booking
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /public/booking/{slug} [post]
func (h *PublicHandler) CreateBooking(c echo.Context) error {
	workspace, err := h.workspaceRepo.GetActiveBySlug(c.Param("slug"))
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Workspace not found"})
	}

	var req PublicBookingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if req.Email == "" && req.Phone == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Email or phone is required"})
	}

	service, err := h.serviceRepo.GetActiveByIDAndWorkspace(uuid.MustParse(req.ServiceID), workspace.ID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Service not found"})
	}

	contact := h.findContact(workspace.ID, req.Email, req.Phone)
	if contact == nil {
		if req.Name == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Customer name is required"})
		}
		contact = &models.Contact{
			BaseWorkspaceModel: models.BaseWorkspaceModel{WorkspaceID: workspace.ID},
			Name:               req.Name,
			Email:              req.Email,
			Phone:              req.Phone,
			Source:             models.ContactSourceBooking,
		}
		if err := h.contactRepo.Create(contact); err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create contact"})
		}
	}

	start := req.BookingDate.UTC()
	end := start.Add(time.Duration(service.DurationMinutes) * time.Minute)

	conflicts, err := h.calendar.CountConflicts(service.ID, start, end)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to check availability"})
	}
	if conflicts > 0 {
		return c.JSON(http.StatusConflict, map[string]string{"error": "This time slot is no longer available"})
	}

	booking := &models.Booking{
		BaseWorkspaceModel: models.BaseWorkspaceModel{WorkspaceID: workspace.ID},
		ContactID:          contact.ID,
		ServiceID:          service.ID,
		Status:             models.BookingConfirmed,
		BookingDate:        start,
		EndTime:            end,
		Notes:              req.Notes,
	}
	if err := h.bookingRepo.Create(booking); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create booking"})
	}

	if _, err := h.conversationRepo.GetByContact(contact.ID, workspace.ID); err != nil {
		now := time.Now().UTC()
		conversation := &models.Conversation{
			BaseWorkspaceModel: models.BaseWorkspaceModel{WorkspaceID: workspace.ID},
			ContactID:          contact.ID,
			Subject:            "Booking - " + service.Name,
			Status:             models.ConversationOpen,
			LastMessageAt:      &now,
		}
		if err := h.conversationRepo.Create(conversation); err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to open conversation"})
		}
	}

	h.engine.Trigger(workspace.ID, models.TriggerBookingCreated, &services.TriggerContext{
		Contact: contact,
		Service: service,
		Booking: booking,
	})

	return c.JSON(http.StatusCreated, booking)
}

// findContact matches an existing contact by email first, then phone.
func (h *PublicHandler) findContact(workspaceID uuid.UUID, email, phone string) *models.Contact {
	if email != "" {
		if contact, err := h.contactRepo.FindByEmail(workspaceID, email); err == nil {
			return contact
		}
	}
	if phone != "" {
		if contact, err := h.contactRepo.FindByPhone(workspaceID, phone); err == nil {
			return contact
		}
	}
	return nil
}

func (h *PublicHandler) findOrCreateContact(workspaceID uuid.UUID, name, email, phone, source string) (*models.Contact, bool, error) {
	if contact := h.findContact(workspaceID, email, phone); contact != nil {
		return contact, false, nil
	}
	contact := &models.Contact{
		BaseWorkspaceModel: models.BaseWorkspaceModel{WorkspaceID: workspaceID},
		Name:               name,
		Email:              email,
		Phone:              phone,
		Source:             source,
	}
	if err := h.contactRepo.Create(contact); err != nil {
		return nil, false, err
	}
	return contact, true, nil
}
