package app

import (
	"careops/internal/auth"
	"careops/internal/repo"
	"careops/internal/services"

	"gorm.io/gorm"
)

// Services holds all application services
type Services struct {
	DB *gorm.DB

	AuthService *auth.Service

	WorkspaceRepo      *repo.WorkspaceRepository
	UserRepo           *repo.UserRepository
	ContactRepo        *repo.ContactRepository
	ConversationRepo   *repo.ConversationRepository
	MessageRepo        *repo.MessageRepository
	ServiceRepo        *repo.ServiceRepository
	AvailabilityRepo   *repo.AvailabilityRepository
	BookingRepo        *repo.BookingRepository
	FormSubmissionRepo *repo.FormSubmissionRepository
	InventoryRepo      *repo.InventoryRepository
	AlertRepo          *repo.AlertRepository
	AutomationLogRepo  *repo.AutomationLogRepository

	Gateway          *services.Gateway
	CalendarService  *services.CalendarService
	AutomationEngine *services.AutomationEngine
	SchedulerService *services.SchedulerService
}

// NewServices creates a new services container
func NewServices(db *gorm.DB) *Services {
	userRepo := repo.NewUserRepository(db)

	gateway := services.NewGateway()

	return &Services{
		DB:                 db,
		AuthService:        auth.NewService(userRepo),
		WorkspaceRepo:      repo.NewWorkspaceRepository(db),
		UserRepo:           userRepo,
		ContactRepo:        repo.NewContactRepository(db),
		ConversationRepo:   repo.NewConversationRepository(db),
		MessageRepo:        repo.NewMessageRepository(db),
		ServiceRepo:        repo.NewServiceRepository(db),
		AvailabilityRepo:   repo.NewAvailabilityRepository(db),
		BookingRepo:        repo.NewBookingRepository(db),
		FormSubmissionRepo: repo.NewFormSubmissionRepository(db),
		InventoryRepo:      repo.NewInventoryRepository(db),
		AlertRepo:          repo.NewAlertRepository(db),
		AutomationLogRepo:  repo.NewAutomationLogRepository(db),
		Gateway:            gateway,
		CalendarService:    services.NewCalendarService(db),
		AutomationEngine:   services.NewAutomationEngine(db, gateway),
		SchedulerService:   services.NewSchedulerService(db, gateway),
	}
}
