package services

import (
	"fmt"
	"os"
	"time"

	"careops/internal/repo"
	"careops/pkg/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// System default message templates, used when a workspace has not
// customized its own
const (
	defaultWelcomeMessage      = "Thank you for contacting us! We'll get back to you shortly."
	defaultConfirmationMessage = "Your booking has been confirmed. We look forward to seeing you!"
	defaultReminderMessage     = "This is a reminder about your upcoming appointment."
)

// TriggerContext carries the entities involved in a trigger. Handlers read
// only the fields relevant to their trigger kind.
type TriggerContext struct {
	ConversationID *uuid.UUID
	Contact        *models.Contact
	Booking        *models.Booking
	Service        *models.Service
	Submission     *models.FormSubmission
	Item           *models.InventoryItem
}

// automationEvent is one unit of work on the engine's internal queue.
// Follow-up triggers raised by a handler (inventory deduction crossing the
// low-stock threshold) are enqueued rather than dispatched recursively.
type automationEvent struct {
	trigger models.AutomationTrigger
	ctx     *TriggerContext
}

type handlerFunc func(workspaceID uuid.UUID, ctx *TriggerContext) []automationEvent

// AutomationEngine reacts to business events with side effects: outbound
// messages, form requests, inventory deductions and alerts. The engine is
// stateless; all state lives in the entities it reads and writes. Every
// invocation appends one audit row.
type AutomationEngine struct {
	workspaceRepo    *repo.WorkspaceRepository
	conversationRepo *repo.ConversationRepository
	messageRepo      *repo.MessageRepository
	serviceRepo      *repo.ServiceRepository
	formRepo         *repo.FormSubmissionRepository
	inventoryRepo    *repo.InventoryRepository
	bookingRepo      *repo.BookingRepository
	alertRepo        *repo.AlertRepository
	logRepo          *repo.AutomationLogRepository

	messenger     Messenger
	publicBaseURL string

	handlers map[models.AutomationTrigger]handlerFunc
}

// NewAutomationEngine creates a new automation engine
func NewAutomationEngine(db *gorm.DB, messenger Messenger) *AutomationEngine {
	baseURL := os.Getenv("PUBLIC_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:3000"
	}

	e := &AutomationEngine{
		workspaceRepo:    repo.NewWorkspaceRepository(db),
		conversationRepo: repo.NewConversationRepository(db),
		messageRepo:      repo.NewMessageRepository(db),
		serviceRepo:      repo.NewServiceRepository(db),
		formRepo:         repo.NewFormSubmissionRepository(db),
		inventoryRepo:    repo.NewInventoryRepository(db),
		bookingRepo:      repo.NewBookingRepository(db),
		alertRepo:        repo.NewAlertRepository(db),
		logRepo:          repo.NewAutomationLogRepository(db),
		messenger:        messenger,
		publicBaseURL:    baseURL,
	}

	// Dispatch table. booking_reminder is intentionally absent: reminder
	// sends are performed by the scheduler's sweep, not routed through the
	// engine.
	e.handlers = map[models.AutomationTrigger]handlerFunc{
		models.TriggerContactCreated: e.handleContactCreated,
		models.TriggerBookingCreated: e.handleBookingCreated,
		models.TriggerFormPending:    e.handleFormPending,
		models.TriggerInventoryLow:   e.handleInventoryLow,
		models.TriggerStaffReply:     e.handleStaffReply,
	}

	return e
}

// Trigger processes one automation trigger and any follow-up events it
// raises. Callers commit their own writes before calling; the engine commits
// its side effects immediately and never returns an error to the caller.
func (e *AutomationEngine) Trigger(workspaceID uuid.UUID, trigger models.AutomationTrigger, ctx *TriggerContext) {
	log.Info().
		Str("workspace_id", workspaceID.String()).
		Str("trigger", string(trigger)).
		Msg("Automation trigger")

	queue := []automationEvent{{trigger: trigger, ctx: ctx}}
	for len(queue) > 0 {
		event := queue[0]
		queue = queue[1:]
		queue = append(queue, e.dispatch(workspaceID, event)...)
	}
}

func (e *AutomationEngine) dispatch(workspaceID uuid.UUID, event automationEvent) []automationEvent {
	// Pause guard runs before any handler logic, for every trigger kind
	if event.ctx != nil && event.ctx.ConversationID != nil {
		conversation, err := e.conversationRepo.GetByID(*event.ctx.ConversationID)
		if err == nil && conversation.IsAutomationPaused {
			log.Info().
				Str("conversation_id", conversation.ID.String()).
				Str("trigger", string(event.trigger)).
				Msg("Automation paused for conversation")
			e.audit(workspaceID, event.trigger, "paused", models.AutomationStatusSkipped, "automation paused by staff reply")
			return nil
		}
	}

	handler, ok := e.handlers[event.trigger]
	if !ok {
		log.Warn().Str("trigger", string(event.trigger)).Msg("No handler registered for trigger")
		e.audit(workspaceID, event.trigger, "dispatch", models.AutomationStatusSkipped, "no handler registered")
		return nil
	}

	return handler(workspaceID, event.ctx)
}

// handleContactCreated sends the workspace welcome message over every
// channel the contact has and the workspace has connected
func (e *AutomationEngine) handleContactCreated(workspaceID uuid.UUID, ctx *TriggerContext) []automationEvent {
	workspace, err := e.workspaceRepo.GetByID(workspaceID)
	if err != nil || ctx == nil || ctx.Contact == nil {
		return nil
	}
	contact := ctx.Contact

	welcome := workspace.WelcomeMessage
	if welcome == "" {
		welcome = defaultWelcomeMessage
	}

	if ctx.ConversationID != nil {
		messageType := models.MessageTypeSMS
		if contact.Email != "" {
			messageType = models.MessageTypeEmail
		}
		message := &models.Message{
			BaseWorkspaceModel: models.BaseWorkspaceModel{WorkspaceID: workspaceID},
			ConversationID:     *ctx.ConversationID,
			Type:               messageType,
			Direction:          models.MessageOutbound,
			Content:            welcome,
			Status:             models.MessageStatusSent,
			IsAutomated:        true,
		}
		if err := e.messageRepo.Create(message); err != nil {
			log.Error().Err(err).Msg("Failed to persist welcome message")
		}
	}

	// Both channels may fire independently; there is no best-channel pick
	if contact.Email != "" && workspace.EmailConnected {
		e.send(e.messenger.SendEmail(workspace, contact.Email, "Welcome to "+workspace.Name, welcome))
	}
	if contact.Phone != "" && workspace.SMSConnected {
		e.send(e.messenger.SendSMS(workspace, contact.Phone, welcome))
	}

	e.audit(workspaceID, models.TriggerContactCreated, "send_welcome", models.AutomationStatusSuccess, "")
	return nil
}

// handleBookingCreated sends the confirmation, requests linked forms and
// deducts linked inventory. Callers invoke it exactly once per booking; the
// ConfirmationSent flag records that the side effects have fired.
func (e *AutomationEngine) handleBookingCreated(workspaceID uuid.UUID, ctx *TriggerContext) []automationEvent {
	workspace, err := e.workspaceRepo.GetByID(workspaceID)
	if err != nil || ctx == nil || ctx.Booking == nil || ctx.Contact == nil {
		return nil
	}
	booking := ctx.Booking
	contact := ctx.Contact

	service, err := e.serviceRepo.GetByID(booking.ServiceID)
	if err != nil {
		service = nil
	}

	confirmation := workspace.BookingConfirmationMessage
	if confirmation == "" {
		confirmation = defaultConfirmationMessage
	}
	serviceName := "N/A"
	if service != nil {
		serviceName = service.Name
	}
	confirmation += "\n\nService: " + serviceName
	confirmation += "\nDate: " + formatEventTime(booking.BookingDate)

	if contact.Email != "" && workspace.EmailConnected {
		e.send(e.messenger.SendEmail(workspace, contact.Email, "Booking Confirmation - "+workspace.Name, confirmation))
	}
	if contact.Phone != "" && workspace.SMSConnected {
		e.send(e.messenger.SendSMS(workspace, contact.Phone, confirmation))
	}

	if service != nil {
		e.requestLinkedForms(workspace, service, booking, contact)
	}

	var followUps []automationEvent
	if service != nil {
		followUps = e.deductLinkedInventory(service, booking)
	}

	booking.ConfirmationSent = true
	if err := e.bookingRepo.Update(booking); err != nil {
		log.Error().Err(err).Str("booking_id", booking.ID.String()).Msg("Failed to mark confirmation sent")
	}

	e.audit(workspaceID, models.TriggerBookingCreated, "send_confirmation", models.AutomationStatusSuccess, "")
	return followUps
}

// requestLinkedForms creates one pending submission per linked form, due one
// day before the booking, and emails the form link when possible
func (e *AutomationEngine) requestLinkedForms(workspace *models.Workspace, service *models.Service, booking *models.Booking, contact *models.Contact) {
	for _, formID := range service.LinkedFormIDs {
		templateID, err := uuid.Parse(formID)
		if err != nil {
			log.Warn().Str("form_id", formID).Msg("Skipping malformed linked form id")
			continue
		}

		dueDate := booking.BookingDate.Add(-24 * time.Hour)
		submission := &models.FormSubmission{
			BaseWorkspaceModel: models.BaseWorkspaceModel{WorkspaceID: workspace.ID},
			TemplateID:         templateID,
			ContactID:          contact.ID,
			BookingID:          &booking.ID,
			Status:             models.SubmissionPending,
			DueDate:            &dueDate,
		}
		if err := e.formRepo.Create(submission); err != nil {
			log.Error().Err(err).Msg("Failed to create form submission")
			continue
		}

		if contact.Email != "" && workspace.EmailConnected {
			link := e.publicBaseURL + "/public/form/" + submission.ID.String()
			e.send(e.messenger.SendEmail(workspace, contact.Email,
				"Please complete your form - "+workspace.Name,
				"Please complete this form before your appointment: "+link))
		}
	}
}

// deductLinkedInventory decrements stock for each linked item and raises
// inventory_low for every item left at or below its threshold
func (e *AutomationEngine) deductLinkedInventory(service *models.Service, booking *models.Booking) []automationEvent {
	var followUps []automationEvent
	for _, linked := range service.LinkedInventory {
		item, err := e.inventoryRepo.GetByID(linked.ItemID)
		if err != nil {
			continue
		}

		quantity := linked.QuantityPerBooking
		if quantity == 0 {
			quantity = 1
		}
		item.Quantity -= quantity
		if err := e.inventoryRepo.Update(item); err != nil {
			log.Error().Err(err).Str("item_id", item.ID.String()).Msg("Failed to deduct inventory")
			continue
		}
		if err := e.inventoryRepo.CreateLog(&models.InventoryLog{
			ItemID:    item.ID,
			Change:    -quantity,
			Reason:    "booking",
			BookingID: &booking.ID,
		}); err != nil {
			log.Error().Err(err).Msg("Failed to log inventory deduction")
		}

		if item.Quantity <= item.LowStockThreshold {
			followUps = append(followUps, automationEvent{
				trigger: models.TriggerInventoryLow,
				ctx:     &TriggerContext{Item: item},
			})
		}
	}
	return followUps
}

// handleFormPending emails a reminder with the form link. SMS is not sent
// for this trigger.
func (e *AutomationEngine) handleFormPending(workspaceID uuid.UUID, ctx *TriggerContext) []automationEvent {
	workspace, err := e.workspaceRepo.GetByID(workspaceID)
	if err != nil || ctx == nil || ctx.Submission == nil || ctx.Contact == nil {
		return nil
	}

	if ctx.Contact.Email != "" && workspace.EmailConnected {
		link := e.publicBaseURL + "/public/form/" + ctx.Submission.ID.String()
		e.send(e.messenger.SendEmail(workspace, ctx.Contact.Email,
			"Reminder: Please complete your form - "+workspace.Name,
			"You have a pending form. Please complete it here: "+link))
	}

	e.audit(workspaceID, models.TriggerFormPending, "send_reminder", models.AutomationStatusSuccess, "")
	return nil
}

// handleInventoryLow creates a low-stock alert. Every qualifying call
// creates a new alert; there is no deduplication for this alert type.
func (e *AutomationEngine) handleInventoryLow(workspaceID uuid.UUID, ctx *TriggerContext) []automationEvent {
	if ctx == nil || ctx.Item == nil {
		return nil
	}
	item := ctx.Item

	severity := models.SeverityWarning
	if item.Quantity <= 0 {
		severity = models.SeverityCritical
	}

	alert := &models.Alert{
		BaseWorkspaceModel: models.BaseWorkspaceModel{WorkspaceID: workspaceID},
		AlertType:          models.AlertLowInventory,
		Severity:           severity,
		Title:              "Low stock: " + item.Name,
		Message:            fmt.Sprintf("%s has %d %s remaining (threshold: %d)", item.Name, item.Quantity, item.Unit, item.LowStockThreshold),
		Link:               "/dashboard/inventory",
		RelatedID:          item.ID.String(),
	}
	if err := e.alertRepo.Create(alert); err != nil {
		log.Error().Err(err).Msg("Failed to create low stock alert")
		return nil
	}

	e.audit(workspaceID, models.TriggerInventoryLow, "create_alert", models.AutomationStatusSuccess, "")
	return nil
}

// handleStaffReply pauses automation for the conversation. This is the only
// place the pause is set; nothing in this subsystem ever clears it.
func (e *AutomationEngine) handleStaffReply(workspaceID uuid.UUID, ctx *TriggerContext) []automationEvent {
	if ctx == nil || ctx.ConversationID == nil {
		return nil
	}

	conversation, err := e.conversationRepo.GetByID(*ctx.ConversationID)
	if err == nil {
		conversation.IsAutomationPaused = true
		if err := e.conversationRepo.Update(conversation); err != nil {
			log.Error().Err(err).Str("conversation_id", conversation.ID.String()).Msg("Failed to pause automation")
		}
	}

	e.audit(workspaceID, models.TriggerStaffReply, "pause_automation", models.AutomationStatusSuccess, "")
	return nil
}

// send records a failed best-effort send; failures never abort the handler
func (e *AutomationEngine) send(result SendResult) {
	if !result.Success {
		log.Warn().Str("provider", result.Provider).Str("error", result.Error).Msg("Outbound message failed")
	}
}

// audit appends one row to the automation log
func (e *AutomationEngine) audit(workspaceID uuid.UUID, trigger models.AutomationTrigger, action, status, details string) {
	entry := &models.AutomationLog{
		BaseWorkspaceModel: models.BaseWorkspaceModel{WorkspaceID: workspaceID},
		Trigger:            string(trigger),
		Action:             action,
		Status:             status,
		Details:            details,
	}
	if err := e.logRepo.Create(entry); err != nil {
		log.Error().Err(err).Str("trigger", string(trigger)).Msg("Failed to write automation log")
	}
}

// formatEventTime renders a booking instant for customer-facing messages
func formatEventTime(t time.Time) string {
	return t.Format("January 2, 2006 at 3:04 PM")
}
