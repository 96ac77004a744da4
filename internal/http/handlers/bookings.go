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

// BookingHandler handles booking creation and the public slot surface
type BookingHandler struct {
	bookingRepo *repo.BookingRepository
	serviceRepo *repo.ServiceRepository
	contactRepo *repo.ContactRepository
	calendar    *services.CalendarService
	engine      *services.AutomationEngine
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(db *gorm.DB, calendar *services.CalendarService, engine *services.AutomationEngine) *BookingHandler {
	return &BookingHandler{
		bookingRepo: repo.NewBookingRepository(db),
		serviceRepo: repo.NewServiceRepository(db),
		contactRepo: repo.NewContactRepository(db),
		calendar:    calendar,
		engine:      engine,
	}
}

// CreateBookingRequest represents booking creation data
type CreateBookingRequest struct {
	ContactID   string    `json:"contact_id" validate:"required,uuid"`
	ServiceID   string    `json:"service_id" validate:"required,uuid"`
	BookingDate time.Time `json:"booking_date" validate:"required"`
	Notes       string    `json:"notes"`
}

// Create godoc
// @Summary Create booking
// @Description Book a service slot for a contact. Rejects overlapping slots.
// @Tags bookings
// @Accept json
// @Produce json
// @Param booking body CreateBookingRequest true "Booking data"
// @Success 201 {object} models.Booking
// @Failure 409 {object} map[string]string
// @Router /bookings [post]
// @Security BearerAuth
func (h *BookingHandler) Create(c echo.Context) error {
	workspaceID := c.Get("workspace_id").(uuid.UUID)

	var req CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	contactID := uuid.MustParse(req.ContactID)
	serviceID := uuid.MustParse(req.ServiceID)

	contact, err := h.contactRepo.GetByIDAndWorkspace(contactID, workspaceID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Contact not found"})
	}
	service, err := h.serviceRepo.GetByIDAndWorkspace(serviceID, workspaceID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Service not found"})
	}

	start := req.BookingDate.UTC()
	end := start.Add(time.Duration(service.DurationMinutes) * time.Minute)

	conflicts, err := h.calendar.CountConflicts(service.ID, start, end)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to check availability"})
	}
	if conflicts > 0 {
		return c.JSON(http.StatusConflict, map[string]string{"error": "Time slot already booked"})
	}

	booking := &models.Booking{
		BaseWorkspaceModel: models.BaseWorkspaceModel{WorkspaceID: workspaceID},
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

	h.engine.Trigger(workspaceID, models.TriggerBookingCreated, &services.TriggerContext{
		Contact: contact,
		Service: service,
		Booking: booking,
	})

	return c.JSON(http.StatusCreated, booking)
}

// Slots godoc
// @Summary List available slots
// @Description List free booking slots for a service on a given date
// @Tags bookings
// @Produce json
// @Param service_id path string true "Service ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {array} services.Slot
// @Router /bookings/slots/{service_id} [get]
func (h *BookingHandler) Slots(c echo.Context) error {
	serviceID, err := uuid.Parse(c.Param("service_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid service ID"})
	}
	date, err := time.Parse("2006-01-02", c.QueryParam("date"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid date, expected YYYY-MM-DD"})
	}

	service, err := h.serviceRepo.GetActiveByID(serviceID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Service not found"})
	}

	slots, err := h.calendar.AvailableSlots(service, date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to compute slots"})
	}
	return c.JSON(http.StatusOK, slots)
}

// ICS godoc
// @Summary Download booking as iCalendar
// @Tags bookings
// @Produce plain
// @Param id path string true "Booking ID"
// @Success 200 {string} string
// @Router /bookings/{id}/ics [get]
// @Security BearerAuth
func (h *BookingHandler) ICS(c echo.Context) error {
	workspaceID := c.Get("workspace_id").(uuid.UUID)

	event, err := h.loadEvent(c.Param("id"), workspaceID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Booking not found"})
	}

	ics := h.calendar.GenerateICS(*event)
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="booking.ics"`)
	return c.Blob(http.StatusOK, "text/calendar", []byte(ics))
}

// GoogleLink godoc
// @Summary Get Google Calendar link for a booking
// @Tags bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} map[string]string
// @Router /bookings/{id}/google-link [get]
// @Security BearerAuth
func (h *BookingHandler) GoogleLink(c echo.Context) error {
	workspaceID := c.Get("workspace_id").(uuid.UUID)

	event, err := h.loadEvent(c.Param("id"), workspaceID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Booking not found"})
	}

	return c.JSON(http.StatusOK, map[string]string{"url": h.calendar.GoogleCalendarLink(*event)})
}

func (h *BookingHandler) loadEvent(idParam string, workspaceID uuid.UUID) (*services.CalendarEvent, error) {
	id, err := uuid.Parse(idParam)
	if err != nil {
		return nil, err
	}
	booking, err := h.bookingRepo.GetByIDAndWorkspace(id, workspaceID)
	if err != nil {
		return nil, err
	}
	service, err := h.serviceRepo.GetByID(booking.ServiceID)
	if err != nil {
		return nil, err
	}
	return &services.CalendarEvent{
		ID:          booking.ID,
		Title:       service.Name,
		Start:       booking.BookingDate,
		End:         booking.EndTime,
		Description: service.Description,
		Location:    service.Location,
	}, nil
}
