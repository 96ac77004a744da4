package services

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"careops/internal/repo"
	"careops/pkg/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Slot is one bookable time window offered to a contact
type Slot struct {
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Display string    `json:"display"`
}

// CalendarService computes free slots and booking conflicts for services
type CalendarService struct {
	bookingRepo      *repo.BookingRepository
	availabilityRepo *repo.AvailabilityRepository

	now func() time.Time
}

// NewCalendarService creates a new calendar service
func NewCalendarService(db *gorm.DB) *CalendarService {
	return &CalendarService{
		bookingRepo:      repo.NewBookingRepository(db),
		availabilityRepo: repo.NewAvailabilityRepository(db),
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// CountConflicts counts confirmed or pending bookings of the service whose
// interval overlaps [start, end). Intervals that merely touch do not
// conflict: a booking ending exactly at start leaves the slot free.
func (s *CalendarService) CountConflicts(serviceID uuid.UUID, start, end time.Time) (int64, error) {
	return s.bookingRepo.CountOverlapping(serviceID, start, end)
}

// AvailableSlots generates the free slots of a service for one calendar
// date. Each active availability rule for that weekday produces back-to-back
// slots of exactly DurationMinutes; a trailing partial slot is discarded.
// A slot is included only when it has no conflicts and starts strictly in
// the future. Rules are emitted in iteration order and overlapping rules may
// produce overlapping slots; no merging or global sort is performed.
func (s *CalendarService) AvailableSlots(service *models.Service, date time.Time) ([]Slot, error) {
	rules, err := s.availabilityRepo.ListActiveForDay(service.ID, mondayIndexedWeekday(date))
	if err != nil {
		return nil, fmt.Errorf("failed to load availability: %w", err)
	}

	duration := time.Duration(service.DurationMinutes) * time.Minute
	slots := []Slot{}

	for _, rule := range rules {
		start, err := clockOnDate(date, rule.StartTime)
		if err != nil {
			return nil, fmt.Errorf("invalid start time %q: %w", rule.StartTime, err)
		}
		end, err := clockOnDate(date, rule.EndTime)
		if err != nil {
			return nil, fmt.Errorf("invalid end time %q: %w", rule.EndTime, err)
		}

		for current := start; !current.Add(duration).After(end); current = current.Add(duration) {
			slotEnd := current.Add(duration)

			conflicts, err := s.CountConflicts(service.ID, current, slotEnd)
			if err != nil {
				return nil, fmt.Errorf("conflict check failed: %w", err)
			}

			if conflicts == 0 && current.After(s.now()) {
				slots = append(slots, Slot{
					Start:   current,
					End:     slotEnd,
					Display: current.Format("03:04 PM"),
				})
			}
		}
	}

	return slots, nil
}

// mondayIndexedWeekday maps a date to the availability day index, 0 = Monday
func mondayIndexedWeekday(date time.Time) int {
	return (int(date.Weekday()) + 6) % 7
}

// clockOnDate resolves an "HH:MM" availability bound on a calendar date
func clockOnDate(date time.Time, clock string) (time.Time, error) {
	parts := strings.SplitN(clock, ":", 2)
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("expected HH:MM")
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return time.Time{}, fmt.Errorf("invalid hour %q", parts[0])
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return time.Time{}, fmt.Errorf("invalid minute %q", parts[1])
	}
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, date.Location()), nil
}

// CalendarEvent describes a booking exported to a calendar
type CalendarEvent struct {
	ID          uuid.UUID
	Title       string
	Start       time.Time
	End         time.Time
	Description string
	Location    string
}

// GenerateICS renders an iCalendar file for a booking event
func (s *CalendarService) GenerateICS(event CalendarEvent) string {
	const stampFormat = "20060102T150405Z"
	now := s.now().Format(stampFormat)

	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//CareOps//Booking//EN",
		"BEGIN:VEVENT",
		"DTSTART:" + event.Start.UTC().Format(stampFormat),
		"DTEND:" + event.End.UTC().Format(stampFormat),
		"DTSTAMP:" + now,
		"UID:" + event.ID.String() + "@careops.io",
		"SUMMARY:" + event.Title,
		"DESCRIPTION:" + event.Description,
		"LOCATION:" + event.Location,
		"STATUS:CONFIRMED",
		"END:VEVENT",
		"END:VCALENDAR",
	}
	return strings.Join(lines, "\r\n")
}

// GoogleCalendarLink builds a prefilled Google Calendar event link
func (s *CalendarService) GoogleCalendarLink(event CalendarEvent) string {
	const stampFormat = "20060102T150405Z"

	params := url.Values{}
	params.Set("action", "TEMPLATE")
	params.Set("text", event.Title)
	params.Set("dates", event.Start.UTC().Format(stampFormat)+"/"+event.End.UTC().Format(stampFormat))
	params.Set("details", event.Description)
	params.Set("location", event.Location)

	return "https://calendar.google.com/calendar/render?" + params.Encode()
}
