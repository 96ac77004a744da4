package services

import (
	"context"
	"os"
	"sync"
	"time"

	"careops/internal/repo"
	"careops/pkg/models"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// SchedulerService runs the periodic sweeps for time-based automation:
// booking reminders, overdue form detection and missed-message alerts.
// Each sweep is a self-contained unit of work; a failed run logs the error
// and waits for the next tick.
type SchedulerService struct {
	workspaceRepo    *repo.WorkspaceRepository
	contactRepo      *repo.ContactRepository
	bookingRepo      *repo.BookingRepository
	formRepo         *repo.FormSubmissionRepository
	conversationRepo *repo.ConversationRepository
	alertRepo        *repo.AlertRepository

	messenger Messenger

	reminderInterval time.Duration
	overdueInterval  time.Duration
	missedInterval   time.Duration

	now func() time.Time

	mutex     sync.Mutex
	isRunning bool
	stopChan  chan struct{}
}

// NewSchedulerService creates a new scheduler service. Sweep intervals are
// configuration, not semantics; they can be tuned via environment.
func NewSchedulerService(db *gorm.DB, messenger Messenger) *SchedulerService {
	return &SchedulerService{
		workspaceRepo:    repo.NewWorkspaceRepository(db),
		contactRepo:      repo.NewContactRepository(db),
		bookingRepo:      repo.NewBookingRepository(db),
		formRepo:         repo.NewFormSubmissionRepository(db),
		conversationRepo: repo.NewConversationRepository(db),
		alertRepo:        repo.NewAlertRepository(db),
		messenger:        messenger,
		reminderInterval: intervalFromEnv("REMINDER_SWEEP_INTERVAL", 15*time.Minute),
		overdueInterval:  intervalFromEnv("OVERDUE_FORM_SWEEP_INTERVAL", 30*time.Minute),
		missedInterval:   intervalFromEnv("MISSED_MESSAGE_SWEEP_INTERVAL", 10*time.Minute),
		now:              func() time.Time { return time.Now().UTC() },
		stopChan:         make(chan struct{}),
	}
}

func intervalFromEnv(key string, fallback time.Duration) time.Duration {
	if raw := os.Getenv(key); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			return d
		}
		log.Warn().Str("key", key).Msg("Invalid sweep interval, using default")
	}
	return fallback
}

// Start launches the three sweep loops. Safe to call once per process.
func (s *SchedulerService) Start(ctx context.Context) {
	s.mutex.Lock()
	if s.isRunning {
		s.mutex.Unlock()
		return
	}
	s.isRunning = true
	s.mutex.Unlock()

	log.Info().
		Dur("reminders", s.reminderInterval).
		Dur("overdue_forms", s.overdueInterval).
		Dur("missed_messages", s.missedInterval).
		Msg("Starting automation scheduler")

	go s.runLoop(ctx, "booking_reminders", s.reminderInterval, s.RunBookingReminders)
	go s.runLoop(ctx, "overdue_forms", s.overdueInterval, s.RunOverdueFormCheck)
	go s.runLoop(ctx, "missed_messages", s.missedInterval, s.RunMissedMessageCheck)
}

// Stop stops the sweep loops
func (s *SchedulerService) Stop() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.isRunning {
		return
	}
	s.isRunning = false
	close(s.stopChan)
}

// runLoop invokes one sweep on a fixed interval. Errors are caught at the
// job boundary: the run logs and exits, the next tick retries from scratch.
func (s *SchedulerService) runLoop(ctx context.Context, name string, interval time.Duration, job func() error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	runOnce := func() {
		if err := job(); err != nil {
			log.Error().Err(err).Str("job", name).Msg("Sweep failed")
		}
	}

	runOnce()

	for {
		select {
		case <-ticker.C:
			runOnce()
		case <-s.stopChan:
			log.Info().Str("job", name).Msg("Stopping sweep")
			return
		case <-ctx.Done():
			log.Info().Str("job", name).Msg("Context cancelled, stopping sweep")
			return
		}
	}
}

// RunBookingReminders sends reminders for confirmed bookings starting
// roughly 24 hours from now. Each booking is saved immediately after its
// sends, so a mid-run crash never repeats earlier rows.
func (s *SchedulerService) RunBookingReminders() error {
	now := s.now()
	windowStart := now.Add(23 * time.Hour)
	windowEnd := now.Add(25 * time.Hour)

	bookings, err := s.bookingRepo.ListDueReminders(windowStart, windowEnd)
	if err != nil {
		return err
	}

	sent := 0
	for i := range bookings {
		booking := &bookings[i]

		contact, err := s.contactRepo.GetByID(booking.ContactID)
		if err != nil {
			continue
		}
		workspace, err := s.workspaceRepo.GetByID(booking.WorkspaceID)
		if err != nil {
			continue
		}

		reminder := workspace.ReminderMessage
		if reminder == "" {
			reminder = defaultReminderMessage
		}
		reminder += "\nDate: " + formatEventTime(booking.BookingDate)

		if contact.Email != "" && workspace.EmailConnected {
			s.messenger.SendEmail(workspace, contact.Email, "Reminder: Upcoming Appointment - "+workspace.Name, reminder)
		}
		if contact.Phone != "" && workspace.SMSConnected {
			s.messenger.SendSMS(workspace, contact.Phone, reminder)
		}

		booking.ReminderSent = true
		if err := s.bookingRepo.Update(booking); err != nil {
			log.Error().Err(err).Str("booking_id", booking.ID.String()).Msg("Failed to mark reminder sent")
			continue
		}
		sent++
		log.Info().Str("booking_id", booking.ID.String()).Msg("Reminder sent")
	}

	log.Info().Int("sent", sent).Msg("Booking reminders processed")
	return nil
}

// RunOverdueFormCheck flips pending submissions past their due date to
// overdue and creates one alert per submission. The one-way transition is
// the idempotency guarantee; no dedup check is needed.
func (s *SchedulerService) RunOverdueFormCheck() error {
	submissions, err := s.formRepo.ListOverdue(s.now())
	if err != nil {
		return err
	}

	for i := range submissions {
		submission := &submissions[i]
		submission.Status = models.SubmissionOverdue
		if err := s.formRepo.Update(submission); err != nil {
			log.Error().Err(err).Str("submission_id", submission.ID.String()).Msg("Failed to mark form overdue")
			continue
		}

		alert := &models.Alert{
			BaseWorkspaceModel: models.BaseWorkspaceModel{WorkspaceID: submission.WorkspaceID},
			AlertType:          models.AlertOverdueForm,
			Severity:           models.SeverityWarning,
			Title:              "Overdue form for contact",
			Message:            "A form submission is past its due date",
			Link:               "/dashboard/forms",
			RelatedID:          submission.ID.String(),
		}
		if err := s.alertRepo.Create(alert); err != nil {
			log.Error().Err(err).Msg("Failed to create overdue form alert")
		}
	}

	log.Info().Int("marked", len(submissions)).Msg("Overdue form check done")
	return nil
}

// RunMissedMessageCheck alerts on open conversations that have waited more
// than two hours. Unlike the overdue-form sweep this must deduplicate: at
// most one unread missed-message alert per conversation.
func (s *SchedulerService) RunMissedMessageCheck() error {
	threshold := s.now().Add(-2 * time.Hour)

	conversations, err := s.conversationRepo.ListStaleOpen(threshold)
	if err != nil {
		return err
	}

	created := 0
	for i := range conversations {
		conversation := &conversations[i]

		exists, err := s.alertRepo.HasUnread(conversation.WorkspaceID, models.AlertMissedMessage, conversation.ID.String())
		if err != nil {
			log.Error().Err(err).Msg("Failed to check existing missed message alert")
			continue
		}
		if exists {
			continue
		}

		contactName := "customer"
		if contact, err := s.contactRepo.GetByID(conversation.ContactID); err == nil {
			contactName = contact.Name
		}

		alert := &models.Alert{
			BaseWorkspaceModel: models.BaseWorkspaceModel{WorkspaceID: conversation.WorkspaceID},
			AlertType:          models.AlertMissedMessage,
			Severity:           models.SeverityWarning,
			Title:              "Unanswered message from " + contactName,
			Message:            "This conversation has been waiting for over 2 hours",
			Link:               "/dashboard/inbox",
			RelatedID:          conversation.ID.String(),
		}
		if err := s.alertRepo.Create(alert); err != nil {
			log.Error().Err(err).Msg("Failed to create missed message alert")
			continue
		}
		created++
	}

	log.Info().Int("stale", len(conversations)).Int("alerts", created).Msg("Missed message check done")
	return nil
}
