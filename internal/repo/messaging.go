package repo

import (
	"time"

	"careops/pkg/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContactRepository handles contact data access
type ContactRepository struct {
	db *gorm.DB
}

// NewContactRepository creates a new contact repository
func NewContactRepository(db *gorm.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

// GetByID gets a contact by ID
func (r *ContactRepository) GetByID(id uuid.UUID) (*models.Contact, error) {
	var contact models.Contact
	err := r.db.Where("id = ?", id).First(&contact).Error
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

// GetByIDAndWorkspace gets a contact by ID scoped to a workspace
func (r *ContactRepository) GetByIDAndWorkspace(id, workspaceID uuid.UUID) (*models.Contact, error) {
	var contact models.Contact
	err := r.db.Where("id = ? AND workspace_id = ?", id, workspaceID).First(&contact).Error
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

// FindByEmail finds a contact by email within a workspace
func (r *ContactRepository) FindByEmail(workspaceID uuid.UUID, email string) (*models.Contact, error) {
	var contact models.Contact
	err := r.db.Where("workspace_id = ? AND email = ?", workspaceID, email).First(&contact).Error
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

// FindByPhone finds a contact by phone within a workspace
func (r *ContactRepository) FindByPhone(workspaceID uuid.UUID, phone string) (*models.Contact, error) {
	var contact models.Contact
	err := r.db.Where("workspace_id = ? AND phone = ?", workspaceID, phone).First(&contact).Error
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

// Create creates a new contact
func (r *ContactRepository) Create(contact *models.Contact) error {
	return r.db.Create(contact).Error
}

// ConversationRepository handles conversation data access
type ConversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository creates a new conversation repository
func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// GetByID gets a conversation by ID
func (r *ConversationRepository) GetByID(id uuid.UUID) (*models.Conversation, error) {
	var conversation models.Conversation
	err := r.db.Where("id = ?", id).First(&conversation).Error
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}

// GetByIDAndWorkspace gets a conversation by ID scoped to a workspace
func (r *ConversationRepository) GetByIDAndWorkspace(id, workspaceID uuid.UUID) (*models.Conversation, error) {
	var conversation models.Conversation
	err := r.db.Where("id = ? AND workspace_id = ?", id, workspaceID).First(&conversation).Error
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}

// GetOpenByContact gets the open conversation for a contact, if any
func (r *ConversationRepository) GetOpenByContact(contactID, workspaceID uuid.UUID) (*models.Conversation, error) {
	var conversation models.Conversation
	err := r.db.Where("contact_id = ? AND workspace_id = ? AND status = ?",
		contactID, workspaceID, models.ConversationOpen).First(&conversation).Error
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}

// GetNotClosedByContact gets a conversation for a contact that has not been
// closed, if any
func (r *ConversationRepository) GetNotClosedByContact(contactID, workspaceID uuid.UUID) (*models.Conversation, error) {
	var conversation models.Conversation
	err := r.db.Where("contact_id = ? AND workspace_id = ? AND status <> ?",
		contactID, workspaceID, models.ConversationClosed).First(&conversation).Error
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}

// GetByContact gets any conversation for a contact regardless of status
func (r *ConversationRepository) GetByContact(contactID, workspaceID uuid.UUID) (*models.Conversation, error) {
	var conversation models.Conversation
	err := r.db.Where("contact_id = ? AND workspace_id = ?",
		contactID, workspaceID).First(&conversation).Error
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}

// Create creates a new conversation
func (r *ConversationRepository) Create(conversation *models.Conversation) error {
	return r.db.Create(conversation).Error
}

// Update updates a conversation
func (r *ConversationRepository) Update(conversation *models.Conversation) error {
	return r.db.Save(conversation).Error
}

// ListStaleOpen returns open conversations whose last message is older than
// the given threshold. Conversations without any message are not considered.
func (r *ConversationRepository) ListStaleOpen(threshold time.Time) ([]models.Conversation, error) {
	var conversations []models.Conversation
	err := r.db.Where("status = ? AND last_message_at IS NOT NULL AND last_message_at < ?",
		models.ConversationOpen, threshold).Find(&conversations).Error
	return conversations, err
}

// MessageRepository handles message data access
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create creates a new message
func (r *MessageRepository) Create(message *models.Message) error {
	return r.db.Create(message).Error
}

// ListByConversation returns messages of a conversation in chronological order
func (r *MessageRepository) ListByConversation(conversationID uuid.UUID) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.Where("conversation_id = ?", conversationID).
		Order("created_at ASC").Find(&messages).Error
	return messages, err
}
