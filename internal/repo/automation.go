package repo

import (
	"careops/pkg/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AlertRepository handles alert data access
type AlertRepository struct {
	db *gorm.DB
}

// NewAlertRepository creates a new alert repository
func NewAlertRepository(db *gorm.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// Create creates a new alert
func (r *AlertRepository) Create(alert *models.Alert) error {
	return r.db.Create(alert).Error
}

// HasUnread reports whether an unread alert of the given type already exists
// for the same related entity. Used for missed-message deduplication.
func (r *AlertRepository) HasUnread(workspaceID uuid.UUID, alertType, relatedID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Alert{}).
		Where("workspace_id = ? AND alert_type = ? AND related_id = ? AND is_read = ?",
			workspaceID, alertType, relatedID, false).
		Count(&count).Error
	return count > 0, err
}

// ListByWorkspace returns alerts for a workspace, newest first
func (r *AlertRepository) ListByWorkspace(workspaceID uuid.UUID, unreadOnly bool, limit int) ([]models.Alert, error) {
	query := r.db.Where("workspace_id = ?", workspaceID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}
	var alerts []models.Alert
	err := query.Order("created_at DESC").Limit(limit).Find(&alerts).Error
	return alerts, err
}

// ListByWorkspacePaged returns a page of alerts for a workspace, newest
// first, along with the total row count for the filter.
func (r *AlertRepository) ListByWorkspacePaged(workspaceID uuid.UUID, unreadOnly bool, page, perPage int) ([]models.Alert, int64, error) {
	query := r.db.Model(&models.Alert{}).Where("workspace_id = ?", workspaceID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var alerts []models.Alert
	err := query.Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&alerts).Error
	return alerts, total, err
}

// MarkRead marks an alert as read
func (r *AlertRepository) MarkRead(id, workspaceID uuid.UUID) error {
	result := r.db.Model(&models.Alert{}).
		Where("id = ? AND workspace_id = ?", id, workspaceID).
		Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AutomationLogRepository handles automation audit log data access
type AutomationLogRepository struct {
	db *gorm.DB
}

// NewAutomationLogRepository creates a new automation log repository
func NewAutomationLogRepository(db *gorm.DB) *AutomationLogRepository {
	return &AutomationLogRepository{db: db}
}

// Create appends an audit row. Rows are never updated or deleted.
func (r *AutomationLogRepository) Create(log *models.AutomationLog) error {
	return r.db.Create(log).Error
}

// ListByWorkspace returns audit rows for a workspace, newest first
func (r *AutomationLogRepository) ListByWorkspace(workspaceID uuid.UUID, limit int) ([]models.AutomationLog, error) {
	var logs []models.AutomationLog
	err := r.db.Where("workspace_id = ?", workspaceID).
		Order("created_at DESC").Limit(limit).Find(&logs).Error
	return logs, err
}
