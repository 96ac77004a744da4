package models

import (
	"time"

	"github.com/google/uuid"
)

// FormTemplate represents a reusable form definition
type FormTemplate struct {
	BaseWorkspaceModel
	Name        string `gorm:"not null" json:"name" validate:"required"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	FormType    string `gorm:"default:'intake'" json:"form_type"`
	Fields      string `gorm:"type:jsonb" json:"fields,omitempty"` // JSON array of field definitions
	IsActive    bool   `gorm:"default:true" json:"is_active"`
}

// Form submission statuses
const (
	SubmissionPending   = "pending"
	SubmissionCompleted = "completed"
	SubmissionOverdue   = "overdue"
)

// FormSubmission tracks one form instance requested from a contact,
// usually tied to a booking. Transitions pending -> completed on external
// submission, or pending -> overdue once the due date passes (one-way).
type FormSubmission struct {
	BaseWorkspaceModel
	TemplateID  uuid.UUID  `gorm:"type:uuid;not null;index;constraint:OnDelete:RESTRICT" json:"template_id"`
	ContactID   uuid.UUID  `gorm:"type:uuid;not null;index;constraint:OnDelete:RESTRICT" json:"contact_id"`
	BookingID   *uuid.UUID `gorm:"type:uuid;index" json:"booking_id,omitempty"`
	Status      string     `gorm:"default:'pending';index" json:"status"`
	Data        string     `gorm:"type:jsonb" json:"data,omitempty"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	DueDate     *time.Time `gorm:"index" json:"due_date,omitempty"`

	Template *FormTemplate `gorm:"foreignKey:TemplateID" json:"template,omitempty"`
	Contact  *Contact      `gorm:"foreignKey:ContactID" json:"contact,omitempty"`
}
