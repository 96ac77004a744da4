package models

import (
	"github.com/google/uuid"
)

// InventoryItem tracks stock for consumables linked to services
type InventoryItem struct {
	BaseWorkspaceModel
	Name              string `gorm:"not null" json:"name" validate:"required"`
	Description       string `gorm:"type:text" json:"description,omitempty"`
	Quantity          int    `gorm:"default:0" json:"quantity"`
	LowStockThreshold int    `gorm:"default:5" json:"low_stock_threshold"`
	Unit              string `gorm:"default:'units'" json:"unit"`
	IsActive          bool   `gorm:"default:true" json:"is_active"`
}

// InventoryLog records one stock adjustment, manual or booking-driven
type InventoryLog struct {
	BaseModel
	ItemID    uuid.UUID  `gorm:"type:uuid;not null;index;constraint:OnDelete:RESTRICT" json:"item_id"`
	Change    int        `gorm:"not null" json:"change"`
	Reason    string     `json:"reason,omitempty"`
	BookingID *uuid.UUID `gorm:"type:uuid" json:"booking_id,omitempty"`

	Item *InventoryItem `gorm:"foreignKey:ItemID" json:"item,omitempty"`
}
