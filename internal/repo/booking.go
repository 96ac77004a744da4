package repo

import (
	"time"

	"careops/pkg/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ServiceRepository handles service data access
type ServiceRepository struct {
	db *gorm.DB
}

// NewServiceRepository creates a new service repository
func NewServiceRepository(db *gorm.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

// GetByID gets a service by ID
func (r *ServiceRepository) GetByID(id uuid.UUID) (*models.Service, error) {
	var service models.Service
	err := r.db.Where("id = ?", id).First(&service).Error
	if err != nil {
		return nil, err
	}
	return &service, nil
}

// GetByIDAndWorkspace gets a service by ID scoped to a workspace
func (r *ServiceRepository) GetByIDAndWorkspace(id, workspaceID uuid.UUID) (*models.Service, error) {
	var service models.Service
	err := r.db.Where("id = ? AND workspace_id = ?", id, workspaceID).First(&service).Error
	if err != nil {
		return nil, err
	}
	return &service, nil
}

// GetActiveByID gets an active service by ID (public booking surface)
func (r *ServiceRepository) GetActiveByID(id uuid.UUID) (*models.Service, error) {
	var service models.Service
	err := r.db.Where("id = ? AND is_active = ?", id, true).First(&service).Error
	if err != nil {
		return nil, err
	}
	return &service, nil
}

// GetActiveByIDAndWorkspace gets an active service by ID scoped to a workspace
func (r *ServiceRepository) GetActiveByIDAndWorkspace(id, workspaceID uuid.UUID) (*models.Service, error) {
	var service models.Service
	err := r.db.Where("id = ? AND workspace_id = ? AND is_active = ?", id, workspaceID, true).First(&service).Error
	if err != nil {
		return nil, err
	}
	return &service, nil
}

// AvailabilityRepository handles availability rule data access
type AvailabilityRepository struct {
	db *gorm.DB
}

// NewAvailabilityRepository creates a new availability repository
func NewAvailabilityRepository(db *gorm.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

// ListActiveForDay returns active availability rules for a service on a weekday
func (r *AvailabilityRepository) ListActiveForDay(serviceID uuid.UUID, dayOfWeek int) ([]models.Availability, error) {
	var rules []models.Availability
	err := r.db.Where("service_id = ? AND day_of_week = ? AND is_active = ?",
		serviceID, dayOfWeek, true).Order("created_at ASC").Find(&rules).Error
	return rules, err
}

// Create creates an availability rule
func (r *AvailabilityRepository) Create(rule *models.Availability) error {
	return r.db.Create(rule).Error
}

// BookingRepository handles booking data access
type BookingRepository struct {
	db *gorm.DB
}

// NewBookingRepository creates a new booking repository
func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// GetByID gets a booking by ID
func (r *BookingRepository) GetByID(id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.Where("id = ?", id).First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// GetByIDAndWorkspace gets a booking by ID scoped to a workspace
func (r *BookingRepository) GetByIDAndWorkspace(id, workspaceID uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.Where("id = ? AND workspace_id = ?", id, workspaceID).First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// Create creates a new booking
func (r *BookingRepository) Create(booking *models.Booking) error {
	return r.db.Create(booking).Error
}

// Update updates a booking
func (r *BookingRepository) Update(booking *models.Booking) error {
	return r.db.Save(booking).Error
}

// CountOverlapping counts confirmed or pending bookings of a service whose
// interval overlaps [start, end) with half-open semantics: a booking ending
// exactly at start, or starting exactly at end, does not count.
func (r *BookingRepository) CountOverlapping(serviceID uuid.UUID, start, end time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Booking{}).
		Where("service_id = ? AND status IN ? AND booking_date < ? AND end_time > ?",
			serviceID, []string{models.BookingConfirmed, models.BookingPending}, end, start).
		Count(&count).Error
	return count, err
}

// ListDueReminders returns confirmed bookings starting inside [windowStart,
// windowEnd] that have not been reminded yet.
func (r *BookingRepository) ListDueReminders(windowStart, windowEnd time.Time) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.Where("status = ? AND booking_date >= ? AND booking_date <= ? AND reminder_sent = ?",
		models.BookingConfirmed, windowStart, windowEnd, false).Find(&bookings).Error
	return bookings, err
}
