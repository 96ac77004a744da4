package models

import (
	"time"

	"github.com/google/uuid"
)

// Contact sources
const (
	ContactSourceContactForm = "contact_form"
	ContactSourceBooking     = "booking"
	ContactSourceManual      = "manual"
)

// Contact represents a lead or customer of a workspace
type Contact struct {
	BaseWorkspaceModel
	Name   string `gorm:"not null" json:"name" validate:"required"`
	Email  string `gorm:"index" json:"email,omitempty"`
	Phone  string `gorm:"index" json:"phone,omitempty"`
	Notes  string `gorm:"type:text" json:"notes,omitempty"`
	Source string `gorm:"default:'contact_form'" json:"source"`
	Tags   string `json:"tags,omitempty"`
}

// Conversation statuses
const (
	ConversationOpen    = "open"
	ConversationReplied = "replied"
	ConversationClosed  = "closed"
)

// Conversation represents a message thread with a contact
type Conversation struct {
	BaseWorkspaceModel
	ContactID uuid.UUID `gorm:"type:uuid;not null;index;constraint:OnDelete:RESTRICT" json:"contact_id"`
	Subject   string    `json:"subject,omitempty"`
	Status    string    `gorm:"default:'open'" json:"status"` // open, replied, closed
	// Once a staff member replies, automation stays suppressed until
	// manually re-enabled. Nothing in the automation subsystem clears this.
	IsAutomationPaused bool       `gorm:"default:false" json:"is_automation_paused"`
	LastMessageAt      *time.Time `json:"last_message_at,omitempty"`
	AssignedTo         *uuid.UUID `gorm:"type:uuid" json:"assigned_to,omitempty"`

	Contact *Contact `gorm:"foreignKey:ContactID" json:"contact,omitempty"`
}

// Message types
const (
	MessageTypeEmail  = "email"
	MessageTypeSMS    = "sms"
	MessageTypeSystem = "system"
)

// Message directions
const (
	MessageInbound  = "inbound"
	MessageOutbound = "outbound"
)

// Message statuses
const (
	MessageStatusPending   = "pending"
	MessageStatusSent      = "sent"
	MessageStatusDelivered = "delivered"
	MessageStatusFailed    = "failed"
)

// Message represents a single message in a conversation. Immutable once created.
type Message struct {
	BaseWorkspaceModel
	ConversationID uuid.UUID  `gorm:"type:uuid;not null;index;constraint:OnDelete:RESTRICT" json:"conversation_id"`
	SenderID       *uuid.UUID `gorm:"type:uuid" json:"sender_id,omitempty"` // null for automated or inbound messages
	Type           string     `gorm:"not null" json:"type"`                 // email, sms, system
	Direction      string     `gorm:"not null" json:"direction"`            // inbound, outbound
	Content        string     `gorm:"type:text;not null" json:"content"`
	Status         string     `gorm:"default:'pending'" json:"status"`
	IsAutomated    bool       `gorm:"default:false" json:"is_automated"`
	Metadata       string     `json:"metadata,omitempty"`

	Conversation *Conversation `gorm:"foreignKey:ConversationID" json:"conversation,omitempty"`
}
