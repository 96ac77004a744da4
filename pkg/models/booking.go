package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// StringList is a JSONB-backed list of string identifiers
type StringList []string

// LinkedInventoryItem links a service to an inventory item deducted per booking
type LinkedInventoryItem struct {
	ItemID             uuid.UUID `json:"item_id"`
	QuantityPerBooking int       `json:"quantity_per_booking"`
}

// LinkedInventoryList is a JSONB-backed list of inventory links
type LinkedInventoryList []LinkedInventoryItem

// Implement driver.Valuer interface for JSONB
func (s StringList) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *StringList) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if str, ok := value.(string); ok {
			bytes = []byte(str)
		} else {
			return fmt.Errorf("cannot scan %T into StringList", value)
		}
	}
	return json.Unmarshal(bytes, s)
}

func (l LinkedInventoryList) Value() (driver.Value, error) {
	return json.Marshal(l)
}

func (l *LinkedInventoryList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if str, ok := value.(string); ok {
			bytes = []byte(str)
		} else {
			return fmt.Errorf("cannot scan %T into LinkedInventoryList", value)
		}
	}
	return json.Unmarshal(bytes, l)
}

// Service represents a bookable offering
type Service struct {
	BaseWorkspaceModel
	Name            string              `gorm:"not null" json:"name" validate:"required"`
	Description     string              `gorm:"type:text" json:"description,omitempty"`
	DurationMinutes int                 `gorm:"not null;default:30" json:"duration_minutes" validate:"required,gt=0"`
	Location        string              `json:"location,omitempty"`
	Price           int64               `json:"price,omitempty"`
	IsActive        bool                `gorm:"default:true" json:"is_active"`
	Color           string              `gorm:"default:'#3B82F6'" json:"color"`
	LinkedFormIDs   StringList          `gorm:"type:jsonb" json:"linked_form_ids,omitempty"`
	LinkedInventory LinkedInventoryList `gorm:"type:jsonb" json:"linked_inventory,omitempty"`

	Availabilities []Availability `gorm:"foreignKey:ServiceID" json:"availabilities,omitempty"`
}

// Availability is a recurring weekly booking window for a service.
// Multiple rules per service/day are allowed; overlap is not validated.
type Availability struct {
	BaseModel
	ServiceID uuid.UUID `gorm:"type:uuid;not null;index;constraint:OnDelete:RESTRICT" json:"service_id"`
	DayOfWeek int       `gorm:"not null" json:"day_of_week" validate:"min=0,max=6"` // 0 = Monday
	StartTime string    `gorm:"size:5;not null" json:"start_time" validate:"required"`
	EndTime   string    `gorm:"size:5;not null" json:"end_time" validate:"required"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
}

// Booking statuses
const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCompleted = "completed"
	BookingCancelled = "cancelled"
	BookingNoShow    = "no_show"
)

// Booking occupies [BookingDate, EndTime) for one service and contact
type Booking struct {
	BaseWorkspaceModel
	ContactID uuid.UUID `gorm:"type:uuid;not null;index;constraint:OnDelete:RESTRICT" json:"contact_id"`
	ServiceID uuid.UUID `gorm:"type:uuid;not null;index;constraint:OnDelete:RESTRICT" json:"service_id"`
	Status    string    `gorm:"default:'confirmed'" json:"status"`
	// Half-open interval: a booking ending exactly when another starts
	// does not conflict.
	BookingDate time.Time `gorm:"not null;index" json:"booking_date"`
	EndTime     time.Time `gorm:"not null" json:"end_time"`
	Notes       string    `gorm:"type:text" json:"notes,omitempty"`

	// Idempotency flags: each automated side effect fires at most once
	ConfirmationSent bool `gorm:"default:false" json:"confirmation_sent"`
	ReminderSent     bool `gorm:"default:false" json:"reminder_sent"`

	Contact *Contact `gorm:"foreignKey:ContactID" json:"contact,omitempty"`
	Service *Service `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
}
