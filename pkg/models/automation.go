package models

// AutomationTrigger names a business event that may cause automated side effects
type AutomationTrigger string

const (
	TriggerContactCreated  AutomationTrigger = "contact_created"
	TriggerBookingCreated  AutomationTrigger = "booking_created"
	TriggerBookingReminder AutomationTrigger = "booking_reminder"
	TriggerFormPending     AutomationTrigger = "form_pending"
	TriggerInventoryLow    AutomationTrigger = "inventory_low"
	TriggerStaffReply      AutomationTrigger = "staff_reply"
)

// Automation log statuses
const (
	AutomationStatusSuccess = "success"
	AutomationStatusSkipped = "skipped"
	AutomationStatusFailed  = "failed"
)

// AutomationLog is an append-only audit row written per engine invocation.
// Never mutated or deleted.
type AutomationLog struct {
	BaseWorkspaceModel
	Trigger string `gorm:"not null" json:"trigger"`
	Action  string `gorm:"not null" json:"action"`
	Status  string `gorm:"default:'success'" json:"status"`
	Details string `gorm:"type:text" json:"details,omitempty"`
}

// Alert types
const (
	AlertMissedMessage      = "missed_message"
	AlertUnconfirmedBooking = "unconfirmed_booking"
	AlertOverdueForm        = "overdue_form"
	AlertLowInventory       = "low_inventory"
	AlertSystem             = "system"
)

// Alert severities
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Alert is a notification surfaced to operators in the alert inbox
type Alert struct {
	BaseWorkspaceModel
	AlertType string `gorm:"not null;index" json:"alert_type"`
	Severity  string `gorm:"default:'info'" json:"severity"`
	Title     string `gorm:"not null" json:"title"`
	Message   string `gorm:"type:text" json:"message,omitempty"`
	IsRead    bool   `gorm:"default:false;index" json:"is_read"`
	Link      string `json:"link,omitempty"`
	RelatedID string `gorm:"index" json:"related_id,omitempty"` // id of the entity that caused the alert
}
