package repo

import (
	"careops/pkg/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WorkspaceRepository handles workspace data access
type WorkspaceRepository struct {
	db *gorm.DB
}

// NewWorkspaceRepository creates a new workspace repository
func NewWorkspaceRepository(db *gorm.DB) *WorkspaceRepository {
	return &WorkspaceRepository{db: db}
}

// GetByID gets a workspace by ID
func (r *WorkspaceRepository) GetByID(id uuid.UUID) (*models.Workspace, error) {
	var workspace models.Workspace
	err := r.db.Where("id = ?", id).First(&workspace).Error
	if err != nil {
		return nil, err
	}
	return &workspace, nil
}

// GetBySlug gets a workspace by its public slug
func (r *WorkspaceRepository) GetBySlug(slug string) (*models.Workspace, error) {
	var workspace models.Workspace
	err := r.db.Where("slug = ?", slug).First(&workspace).Error
	if err != nil {
		return nil, err
	}
	return &workspace, nil
}

// GetActiveBySlug gets an active workspace by its public slug. Inactive
// workspaces are invisible on the public surface.
func (r *WorkspaceRepository) GetActiveBySlug(slug string) (*models.Workspace, error) {
	var workspace models.Workspace
	err := r.db.Where("slug = ? AND is_active = ?", slug, true).First(&workspace).Error
	if err != nil {
		return nil, err
	}
	return &workspace, nil
}

// Update updates a workspace
func (r *WorkspaceRepository) Update(workspace *models.Workspace) error {
	return r.db.Save(workspace).Error
}
