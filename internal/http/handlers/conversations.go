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

// ConversationHandler handles staff replies and automation resume
type ConversationHandler struct {
	conversationRepo *repo.ConversationRepository
	messageRepo      *repo.MessageRepository
	contactRepo      *repo.ContactRepository
	workspaceRepo    *repo.WorkspaceRepository
	messenger        services.Messenger
	engine           *services.AutomationEngine
}

// NewConversationHandler creates a new conversation handler
func NewConversationHandler(db *gorm.DB, messenger services.Messenger, engine *services.AutomationEngine) *ConversationHandler {
	return &ConversationHandler{
		conversationRepo: repo.NewConversationRepository(db),
		messageRepo:      repo.NewMessageRepository(db),
		contactRepo:      repo.NewContactRepository(db),
		workspaceRepo:    repo.NewWorkspaceRepository(db),
		messenger:        messenger,
		engine:           engine,
	}
}

// ReplyRequest represents a staff reply
type ReplyRequest struct {
	Content string `json:"content" validate:"required"`
	Type    string `json:"type" validate:"omitempty,oneof=email sms"`
}

// Reply godoc
// @Summary Reply to a conversation
// @Description Send a staff reply. Marks the thread replied and pauses automation.
// @Tags conversations
// @Accept json
// @Produce json
// @Param id path string true "Conversation ID"
// @Param reply body ReplyRequest true "Reply data"
// @Success 201 {object} models.Message
// @Router /conversations/{id}/reply [post]
// @Security BearerAuth
func (h *ConversationHandler) Reply(c echo.Context) error {
	workspaceID := c.Get("workspace_id").(uuid.UUID)

	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid conversation ID"})
	}

	var req ReplyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	conversation, err := h.conversationRepo.GetByIDAndWorkspace(conversationID, workspaceID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Conversation not found"})
	}
	contact, err := h.contactRepo.GetByID(conversation.ContactID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load contact"})
	}

	messageType := req.Type
	if messageType == "" {
		if contact.Email != "" {
			messageType = models.MessageTypeEmail
		} else {
			messageType = models.MessageTypeSMS
		}
	}

	userID := c.Get("user_id").(uuid.UUID)
	message := &models.Message{
		BaseWorkspaceModel: models.BaseWorkspaceModel{WorkspaceID: workspaceID},
		ConversationID:     conversation.ID,
		SenderID:           &userID,
		Type:               messageType,
		Direction:          models.MessageOutbound,
		Content:            req.Content,
		Status:             models.MessageStatusSent,
	}
	if err := h.messageRepo.Create(message); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save message"})
	}

	now := time.Now().UTC()
	conversation.Status = models.ConversationReplied
	conversation.LastMessageAt = &now
	if err := h.conversationRepo.Update(conversation); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update conversation"})
	}

	if workspace, wsErr := h.workspaceRepo.GetByID(workspaceID); wsErr == nil {
		if messageType == models.MessageTypeEmail && contact.Email != "" {
			h.messenger.SendEmail(workspace, contact.Email, "Re: "+conversation.Subject, req.Content)
		} else if contact.Phone != "" {
			h.messenger.SendSMS(workspace, contact.Phone, req.Content)
		}
	}

	h.engine.Trigger(workspaceID, models.TriggerStaffReply, &services.TriggerContext{
		ConversationID: &conversation.ID,
		Contact:        contact,
	})

	return c.JSON(http.StatusCreated, message)
}

// Resume godoc
// @Summary Resume automation on a conversation
// @Description Clear the automation pause set by a staff reply
// @Tags conversations
// @Produce json
// @Param id path string true "Conversation ID"
// @Success 200 {object} models.Conversation
// @Router /conversations/{id}/resume [post]
// @Security BearerAuth
func (h *ConversationHandler) Resume(c echo.Context) error {
	workspaceID := c.Get("workspace_id").(uuid.UUID)

	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid conversation ID"})
	}

	conversation, err := h.conversationRepo.GetByIDAndWorkspace(conversationID, workspaceID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Conversation not found"})
	}

	conversation.IsAutomationPaused = false
	if err := h.conversationRepo.Update(conversation); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update conversation"})
	}
	return c.JSON(http.StatusOK, conversation)
}

// Messages godoc
// @Summary List conversation messages
// @Tags conversations
// @Produce json
// @Param id path string true "Conversation ID"
// @Success 200 {array} models.Message
// @Router /conversations/{id}/messages [get]
// @Security BearerAuth
func (h *ConversationHandler) Messages(c echo.Context) error {
	workspaceID := c.Get("workspace_id").(uuid.UUID)

	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid conversation ID"})
	}

	conversation, err := h.conversationRepo.GetByIDAndWorkspace(conversationID, workspaceID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Conversation not found"})
	}

	messages, err := h.messageRepo.ListByConversation(conversation.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to list messages"})
	}
	return c.JSON(http.StatusOK, messages)
}
