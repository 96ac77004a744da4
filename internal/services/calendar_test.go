package services

import (
	"strings"
	"testing"
	"time"

	"careops/pkg/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func createTestService(t *testing.T, db *gorm.DB, workspaceID uuid.UUID, durationMinutes int) *models.Service {
	t.Helper()
	service := &models.Service{
		BaseWorkspaceModel: models.BaseWorkspaceModel{WorkspaceID: workspaceID},
		Name:               "Consultation",
		DurationMinutes:    durationMinutes,
		IsActive:           true,
	}
	if err := db.Create(service).Error; err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return service
}

func createAvailability(t *testing.T, db *gorm.DB, serviceID uuid.UUID, day int, start, end string) {
	t.Helper()
	rule := &models.Availability{
		ServiceID: serviceID,
		DayOfWeek: day,
		StartTime: start,
		EndTime:   end,
		IsActive:  true,
	}
	if err := db.Create(rule).Error; err != nil {
		t.Fatalf("failed to create availability: %v", err)
	}
}

func TestCountConflictsHalfOpenInterval(t *testing.T) {
	db := newTestDB(t)
	calendar := NewCalendarService(db)

	workspace := createTestWorkspace(t, db)
	contact := createTestContact(t, db, workspace.ID, "dana@example.test", "")
	service := createTestService(t, db, workspace.ID, 60)

	// Existing confirmed booking 10:00-11:00
	start := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)
	createTestBooking(t, db, workspace.ID, contact.ID, service.ID, start)

	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int64
	}{
		{"identical interval", start, start.Add(time.Hour), 1},
		{"overlapping second half", start.Add(30 * time.Minute), start.Add(90 * time.Minute), 1},
		{"overlapping first half", start.Add(-30 * time.Minute), start.Add(30 * time.Minute), 1},
		{"containing interval", start.Add(-time.Hour), start.Add(2 * time.Hour), 1},
		{"touching at end", start.Add(time.Hour), start.Add(2 * time.Hour), 0},
		{"touching at start", start.Add(-time.Hour), start, 0},
		{"disjoint before", start.Add(-3 * time.Hour), start.Add(-2 * time.Hour), 0},
	}

	for _, test := range tests {
		got, err := calendar.CountConflicts(service.ID, test.start, test.end)
		if err != nil {
			t.Fatalf("%s: %v", test.name, err)
		}
		if got != test.want {
			t.Errorf("%s: conflicts = %d, want %d", test.name, got, test.want)
		}
	}
}

func TestCountConflictsIgnoresCancelledBookings(t *testing.T) {
	db := newTestDB(t)
	calendar := NewCalendarService(db)

	workspace := createTestWorkspace(t, db)
	contact := createTestContact(t, db, workspace.ID, "dana@example.test", "")
	service := createTestService(t, db, workspace.ID, 60)

	start := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)
	booking := createTestBooking(t, db, workspace.ID, contact.ID, service.ID, start)
	booking.Status = models.BookingCancelled
	if err := db.Save(booking).Error; err != nil {
		t.Fatalf("failed to cancel booking: %v", err)
	}

	got, err := calendar.CountConflicts(service.ID, start, start.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if got != 0 {
		t.Errorf("cancelled booking counted as conflict: %d", got)
	}
}

func TestAvailableSlotsSkipsBookedAndPastSlots(t *testing.T) {
	db := newTestDB(t)
	calendar := NewCalendarService(db)
	calendar.now = func() time.Time {
		return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	}

	workspace := createTestWorkspace(t, db)
	contact := createTestContact(t, db, workspace.ID, "dana@example.test", "")
	service := createTestService(t, db, workspace.ID, 30)

	// 2026-03-02 is a Monday, day index 0
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	createAvailability(t, db, service.ID, 0, "09:00", "10:00")

	// First slot of the window is already taken
	createTestBooking(t, db, workspace.ID, contact.ID, service.ID,
		time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))

	slots, err := calendar.AvailableSlots(service, date)
	if err != nil {
		t.Fatal(err)
	}

	if len(slots) != 1 {
		t.Fatalf("expected 1 free slot, got %d: %+v", len(slots), slots)
	}
	if !slots[0].Start.Equal(time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)) {
		t.Errorf("slot start = %v, want 09:30", slots[0].Start)
	}
	if slots[0].Display != "09:30 AM" {
		t.Errorf("slot display = %q, want 09:30 AM", slots[0].Display)
	}
}

func TestAvailableSlotsDiscardsTrailingPartialSlot(t *testing.T) {
	db := newTestDB(t)
	calendar := NewCalendarService(db)
	calendar.now = func() time.Time {
		return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	}

	workspace := createTestWorkspace(t, db)
	service := createTestService(t, db, workspace.ID, 45)

	// 90 minute window fits two 45 minute slots exactly; a 100 minute
	// window would still fit only two
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	createAvailability(t, db, service.ID, 0, "09:00", "10:40")

	slots, err := calendar.AvailableSlots(service, date)
	if err != nil {
		t.Fatal(err)
	}
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}
	if !slots[1].End.Equal(time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC)) {
		t.Errorf("last slot end = %v, want 10:30", slots[1].End)
	}
}

func TestAvailableSlotsExcludesPast(t *testing.T) {
	db := newTestDB(t)
	calendar := NewCalendarService(db)
	// Midday on the requested date itself
	calendar.now = func() time.Time {
		return time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	}

	workspace := createTestWorkspace(t, db)
	service := createTestService(t, db, workspace.ID, 30)

	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	createAvailability(t, db, service.ID, 0, "09:00", "11:00")

	slots, err := calendar.AvailableSlots(service, date)
	if err != nil {
		t.Fatal(err)
	}

	// 09:00 is past, 09:30 is not strictly in the future; 10:00 and
	// 10:30 remain
	if len(slots) != 2 {
		t.Fatalf("expected 2 future slots, got %d: %+v", len(slots), slots)
	}
	if !slots[0].Start.Equal(time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("first future slot = %v, want 10:00", slots[0].Start)
	}
}

func TestAvailableSlotsIgnoresOtherDaysAndInactiveRules(t *testing.T) {
	db := newTestDB(t)
	calendar := NewCalendarService(db)
	calendar.now = func() time.Time {
		return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	}

	workspace := createTestWorkspace(t, db)
	service := createTestService(t, db, workspace.ID, 30)

	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) // Monday
	createAvailability(t, db, service.ID, 1, "09:00", "10:00")
	rule := &models.Availability{
		ServiceID: service.ID,
		DayOfWeek: 0,
		StartTime: "14:00",
		EndTime:   "15:00",
		IsActive:  false,
	}
	if err := db.Create(rule).Error; err != nil {
		t.Fatalf("failed to create rule: %v", err)
	}

	slots, err := calendar.AvailableSlots(service, date)
	if err != nil {
		t.Fatal(err)
	}
	if len(slots) != 0 {
		t.Fatalf("expected no slots, got %d", len(slots))
	}
}

func TestMondayIndexedWeekday(t *testing.T) {
	tests := []struct {
		date time.Time
		want int
	}{
		{time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), 0}, // Monday
		{time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), 2}, // Wednesday
		{time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC), 5}, // Saturday
		{time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC), 6}, // Sunday
	}
	for _, test := range tests {
		if got := mondayIndexedWeekday(test.date); got != test.want {
			t.Errorf("mondayIndexedWeekday(%v) = %d, want %d", test.date, got, test.want)
		}
	}
}

func TestClockOnDate(t *testing.T) {
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		clock   string
		want    time.Time
		wantErr bool
	}{
		{"09:00", time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), false},
		{"23:59", time.Date(2026, 3, 2, 23, 59, 0, 0, time.UTC), false},
		{"00:00", date, false},
		{"24:00", time.Time{}, true},
		{"09:60", time.Time{}, true},
		{"0900", time.Time{}, true},
		{"ab:cd", time.Time{}, true},
		{"", time.Time{}, true},
	}

	for _, test := range tests {
		got, err := clockOnDate(date, test.clock)
		if test.wantErr {
			if err == nil {
				t.Errorf("clockOnDate(%q) expected error, got %v", test.clock, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("clockOnDate(%q) unexpected error: %v", test.clock, err)
			continue
		}
		if !got.Equal(test.want) {
			t.Errorf("clockOnDate(%q) = %v, want %v", test.clock, got, test.want)
		}
	}
}

func TestGenerateICSAndGoogleLink(t *testing.T) {
	db := newTestDB(t)
	calendar := NewCalendarService(db)
	calendar.now = func() time.Time {
		return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	}

	event := CalendarEvent{
		ID:       uuid.New(),
		Title:    "Consultation",
		Start:    time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		End:      time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC),
		Location: "Room 3",
	}

	ics := calendar.GenerateICS(event)
	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"DTSTART:20260302T090000Z",
		"DTEND:20260302T093000Z",
		"SUMMARY:Consultation",
		"UID:" + event.ID.String() + "@careops.io",
		"END:VCALENDAR",
	} {
		if !containsLine(ics, want) {
			t.Errorf("ICS missing line %q:\n%s", want, ics)
		}
	}

	link := calendar.GoogleCalendarLink(event)
	if !strings.Contains(link, "calendar.google.com") || !strings.Contains(link, "20260302T090000Z%2F20260302T093000Z") {
		t.Errorf("unexpected Google Calendar link %q", link)
	}
}

func containsLine(s, line string) bool {
	for _, candidate := range strings.Split(s, "\r\n") {
		if candidate == line {
			return true
		}
	}
	return false
}
