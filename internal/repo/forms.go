package repo

import (
	"time"

	"careops/pkg/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FormSubmissionRepository handles form submission data access
type FormSubmissionRepository struct {
	db *gorm.DB
}

// NewFormSubmissionRepository creates a new form submission repository
func NewFormSubmissionRepository(db *gorm.DB) *FormSubmissionRepository {
	return &FormSubmissionRepository{db: db}
}

// GetByID gets a submission by ID
func (r *FormSubmissionRepository) GetByID(id uuid.UUID) (*models.FormSubmission, error) {
	var submission models.FormSubmission
	err := r.db.Where("id = ?", id).First(&submission).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

// GetByIDAndWorkspace gets a submission by ID scoped to a workspace
func (r *FormSubmissionRepository) GetByIDAndWorkspace(id, workspaceID uuid.UUID) (*models.FormSubmission, error) {
	var submission models.FormSubmission
	err := r.db.Where("id = ? AND workspace_id = ?", id, workspaceID).First(&submission).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

// Create creates a new submission
func (r *FormSubmissionRepository) Create(submission *models.FormSubmission) error {
	return r.db.Create(submission).Error
}

// Update updates a submission
func (r *FormSubmissionRepository) Update(submission *models.FormSubmission) error {
	return r.db.Save(submission).Error
}

// ListOverdue returns pending submissions with a due date in the past
func (r *FormSubmissionRepository) ListOverdue(now time.Time) ([]models.FormSubmission, error) {
	var submissions []models.FormSubmission
	err := r.db.Where("status = ? AND due_date IS NOT NULL AND due_date < ?",
		models.SubmissionPending, now).Find(&submissions).Error
	return submissions, err
}
