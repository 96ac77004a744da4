package repo

import (
	"careops/pkg/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InventoryRepository handles inventory data access
type InventoryRepository struct {
	db *gorm.DB
}

// NewInventoryRepository creates a new inventory repository
func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// GetByID gets an inventory item by ID
func (r *InventoryRepository) GetByID(id uuid.UUID) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := r.db.Where("id = ?", id).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetByIDAndWorkspace gets an inventory item by ID scoped to a workspace
func (r *InventoryRepository) GetByIDAndWorkspace(id, workspaceID uuid.UUID) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := r.db.Where("id = ? AND workspace_id = ?", id, workspaceID).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Update updates an inventory item
func (r *InventoryRepository) Update(item *models.InventoryItem) error {
	return r.db.Save(item).Error
}

// CreateLog records a stock adjustment
func (r *InventoryRepository) CreateLog(log *models.InventoryLog) error {
	return r.db.Create(log).Error
}
