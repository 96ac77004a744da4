package models

// Workspace represents a business account, the root of data isolation
type Workspace struct {
	BaseModel
	Name         string `gorm:"not null" json:"name" validate:"required"`
	Slug         string `gorm:"uniqueIndex;not null" json:"slug" validate:"required"`
	Address      string `gorm:"type:text" json:"address"`
	Timezone     string `gorm:"default:'UTC'" json:"timezone"`
	ContactEmail string `gorm:"not null" json:"contact_email" validate:"required,email"`
	Phone        string `json:"phone"`
	IsActive     bool   `gorm:"default:false" json:"is_active"`

	OnboardingStep      string `gorm:"default:'workspace'" json:"onboarding_step"`
	OnboardingCompleted bool   `gorm:"default:false" json:"onboarding_completed"`

	// Messaging capabilities, configured during onboarding
	EmailProvider  string `json:"email_provider"` // ses, smtp
	EmailConnected bool   `gorm:"default:false" json:"email_connected"`
	SMSProvider    string `json:"sms_provider"` // twilio
	SMSConnected   bool   `gorm:"default:false" json:"sms_connected"`

	// Customizable automation message templates
	WelcomeMessage             string `gorm:"type:text" json:"welcome_message"`
	BookingConfirmationMessage string `gorm:"type:text" json:"booking_confirmation_message"`
	ReminderMessage            string `gorm:"type:text" json:"reminder_message"`
}
