package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"careops/internal/services"
	"careops/pkg/models"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

func countAutomationRuns(t *testing.T, db *gorm.DB, workspaceID uuid.UUID, trigger models.AutomationTrigger) int {
	t.Helper()
	var rows []models.AutomationLog
	if err := db.Where("workspace_id = ?", workspaceID).Find(&rows).Error; err != nil {
		t.Fatalf("failed to load automation log: %v", err)
	}
	count := 0
	for _, row := range rows {
		if row.Trigger == string(trigger) {
			count++
		}
	}
	return count
}

func newPublicHandler(db *gorm.DB) *PublicHandler {
	engine := services.NewAutomationEngine(db, services.NewGateway())
	return NewPublicHandler(db, services.NewCalendarService(db), engine)
}

func publicRequest(t *testing.T, handler echo.HandlerFunc, slug, body string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	c := e.NewContext(req, rec)
	c.SetParamNames("slug")
	c.SetParamValues(slug)

	if err := handler(c); err != nil {
		c.Error(err)
	}
	return rec
}

func createPublicWorkspace(t *testing.T, db *gorm.DB) *models.Workspace {
	t.Helper()
	workspace := &models.Workspace{
		Name:         "Riverside Clinic",
		Slug:         "riverside",
		ContactEmail: "hello@riverside.test",
		IsActive:     true,
	}
	if err := db.Create(workspace).Error; err != nil {
		t.Fatalf("failed to create workspace: %v", err)
	}
	return workspace
}

func createPublicService(t *testing.T, db *gorm.DB, workspaceID uuid.UUID) *models.Service {
	t.Helper()
	service := &models.Service{
		BaseWorkspaceModel: models.BaseWorkspaceModel{WorkspaceID: workspaceID},
		Name:               "Consultation",
		DurationMinutes:    30,
		IsActive:           true,
	}
	if err := db.Create(service).Error; err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return service
}

func TestPublicBookingCreatesContactBookingAndConversation(t *testing.T) {
	db := newHandlerTestDB(t)
	handler := newPublicHandler(db)
	workspace := createPublicWorkspace(t, db)
	service := createPublicService(t, db, workspace.ID)

	start := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Hour)
	body := fmt.Sprintf(`{"service_id": %q, "booking_date": %q, "name": "Dana Reyes", "email": "dana@example.com"}`,
		service.ID, start.Format(time.RFC3339))

	rec := publicRequest(t, handler.CreateBooking, "riverside", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var contact models.Contact
	if err := db.Where("workspace_id = ? AND email = ?", workspace.ID, "dana@example.com").First(&contact).Error; err != nil {
		t.Fatalf("contact not created: %v", err)
	}
	if contact.Source != models.ContactSourceBooking {
		t.Errorf("contact source = %q, want %q", contact.Source, models.ContactSourceBooking)
	}

	var booking models.Booking
	if err := db.Where("contact_id = ?", contact.ID).First(&booking).Error; err != nil {
		t.Fatalf("booking not created: %v", err)
	}
	if booking.Status != models.BookingConfirmed {
		t.Errorf("booking status = %q, want confirmed", booking.Status)
	}
	if !booking.EndTime.Equal(start.Add(30 * time.Minute)) {
		t.Errorf("booking end = %v, want %v", booking.EndTime, start.Add(30*time.Minute))
	}

	var conversation models.Conversation
	if err := db.Where("contact_id = ?", contact.ID).First(&conversation).Error; err != nil {
		t.Fatalf("conversation not created: %v", err)
	}
	if conversation.Subject != "Booking - Consultation" {
		t.Errorf("conversation subject = %q", conversation.Subject)
	}

	if countAutomationRuns(t, db, workspace.ID, models.TriggerBookingCreated) == 0 {
		t.Error("expected booking_created automation run to be recorded")
	}
}

func TestPublicBookingRejectsTakenSlot(t *testing.T) {
	db := newHandlerTestDB(t)
	handler := newPublicHandler(db)
	workspace := createPublicWorkspace(t, db)
	service := createPublicService(t, db, workspace.ID)

	start := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Hour)
	body := fmt.Sprintf(`{"service_id": %q, "booking_date": %q, "name": "Dana Reyes", "email": "dana@example.com"}`,
		service.ID, start.Format(time.RFC3339))

	if rec := publicRequest(t, handler.CreateBooking, "riverside", body); rec.Code != http.StatusCreated {
		t.Fatalf("first booking status = %d, body %s", rec.Code, rec.Body.String())
	}

	rival := fmt.Sprintf(`{"service_id": %q, "booking_date": %q, "name": "Lee Park", "email": "lee@example.com"}`,
		service.ID, start.Add(15*time.Minute).Format(time.RFC3339))
	rec := publicRequest(t, handler.CreateBooking, "riverside", rival)
	if rec.Code != http.StatusConflict {
		t.Fatalf("overlapping booking status = %d, want 409", rec.Code)
	}

	var response map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if response["error"] != "This time slot is no longer available" {
		t.Errorf("error = %q", response["error"])
	}
}

func TestPublicBookingReusesExistingContact(t *testing.T) {
	db := newHandlerTestDB(t)
	handler := newPublicHandler(db)
	workspace := createPublicWorkspace(t, db)
	service := createPublicService(t, db, workspace.ID)

	existing := &models.Contact{
		BaseWorkspaceModel: models.BaseWorkspaceModel{WorkspaceID: workspace.ID},
		Name:               "Dana Reyes",
		Email:              "dana@example.com",
		Source:             models.ContactSourceContactForm,
	}
	if err := db.Create(existing).Error; err != nil {
		t.Fatalf("failed to create contact: %v", err)
	}

	start := time.Now().UTC().Add(72 * time.Hour).Truncate(time.Hour)
	body := fmt.Sprintf(`{"service_id": %q, "booking_date": %q, "email": "dana@example.com"}`,
		service.ID, start.Format(time.RFC3339))

	rec := publicRequest(t, handler.CreateBooking, "riverside", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var contacts int64
	db.Model(&models.Contact{}).Where("workspace_id = ?", workspace.ID).Count(&contacts)
	if contacts != 1 {
		t.Errorf("contact count = %d, want 1 (matched by email)", contacts)
	}

	var booking models.Booking
	if err := db.Where("contact_id = ?", existing.ID).First(&booking).Error; err != nil {
		t.Fatalf("booking not linked to existing contact: %v", err)
	}
}

func TestPublicBookingRequiresNameForNewContact(t *testing.T) {
	db := newHandlerTestDB(t)
	handler := newPublicHandler(db)
	workspace := createPublicWorkspace(t, db)
	service := createPublicService(t, db, workspace.ID)

	start := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Hour)
	body := fmt.Sprintf(`{"service_id": %q, "booking_date": %q, "email": "stranger@example.com"}`,
		service.ID, start.Format(time.RFC3339))

	rec := publicRequest(t, handler.CreateBooking, "riverside", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestPublicBookingUnknownOrInactiveWorkspace(t *testing.T) {
	db := newHandlerTestDB(t)
	handler := newPublicHandler(db)

	dormant := &models.Workspace{Name: "Dormant", Slug: "dormant", ContactEmail: "hi@dormant.test", IsActive: false}
	if err := db.Create(dormant).Error; err != nil {
		t.Fatalf("failed to create workspace: %v", err)
	}

	for _, slug := range []string{"missing", "dormant"} {
		rec := publicRequest(t, handler.CreateBooking, slug, `{}`)
		if rec.Code != http.StatusNotFound {
			t.Errorf("slug %q: status = %d, want 404", slug, rec.Code)
		}
	}
}

func TestPublicContactFormCreatesContactAndConversation(t *testing.T) {
	db := newHandlerTestDB(t)
	handler := newPublicHandler(db)
	workspace := createPublicWorkspace(t, db)

	body := `{"name": "Dana Reyes", "email": "dana@example.com", "message": "Do you take walk-ins?"}`
	rec := publicRequest(t, handler.ContactForm, "riverside", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var contact models.Contact
	if err := db.Where("workspace_id = ? AND email = ?", workspace.ID, "dana@example.com").First(&contact).Error; err != nil {
		t.Fatalf("contact not created: %v", err)
	}
	if contact.Source != models.ContactSourceContactForm {
		t.Errorf("contact source = %q, want %q", contact.Source, models.ContactSourceContactForm)
	}

	var conversation models.Conversation
	if err := db.Where("contact_id = ?", contact.ID).First(&conversation).Error; err != nil {
		t.Fatalf("conversation not created: %v", err)
	}
	if conversation.Subject != "Inquiry from Dana Reyes" {
		t.Errorf("conversation subject = %q", conversation.Subject)
	}

	var message models.Message
	if err := db.Where("conversation_id = ?", conversation.ID).First(&message).Error; err != nil {
		t.Fatalf("inbound message not recorded: %v", err)
	}
	if message.Direction != models.MessageInbound || message.Status != models.MessageStatusDelivered {
		t.Errorf("message direction=%q status=%q, want inbound/delivered", message.Direction, message.Status)
	}
	if message.Type != models.MessageTypeEmail {
		t.Errorf("message type = %q, want email", message.Type)
	}

	if countAutomationRuns(t, db, workspace.ID, models.TriggerContactCreated) == 0 {
		t.Error("expected contact_created automation run to be recorded")
	}
}

func TestPublicContactFormDoesNotRetriggerForKnownContact(t *testing.T) {
	db := newHandlerTestDB(t)
	handler := newPublicHandler(db)
	workspace := createPublicWorkspace(t, db)

	body := `{"name": "Dana Reyes", "phone": "+15550001111", "message": "First visit"}`
	if rec := publicRequest(t, handler.ContactForm, "riverside", body); rec.Code != http.StatusOK {
		t.Fatalf("first submission status = %d", rec.Code)
	}

	again := `{"name": "Dana Reyes", "phone": "+15550001111", "message": "Following up"}`
	if rec := publicRequest(t, handler.ContactForm, "riverside", again); rec.Code != http.StatusOK {
		t.Fatalf("second submission status = %d", rec.Code)
	}

	var contacts int64
	db.Model(&models.Contact{}).Where("workspace_id = ?", workspace.ID).Count(&contacts)
	if contacts != 1 {
		t.Errorf("contact count = %d, want 1", contacts)
	}

	if runs := countAutomationRuns(t, db, workspace.ID, models.TriggerContactCreated); runs != 1 {
		t.Errorf("contact_created runs = %d, want 1 (new contacts only)", runs)
	}

	var messages int64
	db.Model(&models.Message{}).Where("workspace_id = ?", workspace.ID).Count(&messages)
	if messages < 2 {
		t.Errorf("inbound messages = %d, want both submissions recorded", messages)
	}
}

func TestPublicContactFormRequiresEmailOrPhone(t *testing.T) {
	db := newHandlerTestDB(t)
	handler := newPublicHandler(db)
	createPublicWorkspace(t, db)

	rec := publicRequest(t, handler.ContactForm, "riverside", `{"name": "Dana Reyes"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
