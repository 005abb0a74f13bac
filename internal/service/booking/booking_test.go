package booking

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bookline/bookline_backend/internal/model"
	"github.com/bookline/bookline_backend/internal/service/availability"
	"github.com/bookline/bookline_backend/internal/service/notification"
	"github.com/bookline/bookline_backend/internal/streams"
	"github.com/bookline/bookline_backend/pkg/constants"
)

type stubPublisher struct {
	events []streams.Event
}

func (p *stubPublisher) Publish(_ context.Context, ev streams.Event) (string, error) {
	p.events = append(p.events, ev)
	return fmt.Sprintf("0-%d", len(p.events)), nil
}

// setupService wires the real availability and notification services against
// one in-memory database, the same graph the app container builds.
func setupService(t *testing.T) (Service, *gorm.DB, *stubPublisher) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	pub := &stubPublisher{}
	notifSvc := notification.New(db, pub)
	availSvc := availability.New(db, notifSvc)
	return New(db, availSvc, notifSvc, pub), db, pub
}

func seedUser(t *testing.T, db *gorm.DB, email, first, last string) (userID, profileID uint) {
	t.Helper()
	user := model.User{Email: email, PasswordHash: "x", Role: "regular"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	profile := model.UserProfile{UserID: user.ID, FirstName: first, LastName: last}
	if err := db.Create(&profile).Error; err != nil {
		t.Fatalf("create profile: %v", err)
	}
	return user.ID, profile.ID
}

func seedProfessional(t *testing.T, db *gorm.DB, email, first, last, qualifications string) uint {
	t.Helper()
	_, profileID := seedUser(t, db, email, first, last)
	prof := model.ProfessionalProfile{ProfileID: profileID, Qualifications: qualifications}
	if err := db.Create(&prof).Error; err != nil {
		t.Fatalf("create professional: %v", err)
	}
	return prof.ID
}

func seedSlot(t *testing.T, db *gorm.DB, profID uint, ts time.Time, free bool) uint {
	t.Helper()
	slot := model.Availability{ProfessionalID: profID, Datetime: ts, IsAvailable: free}
	if err := db.Create(&slot).Error; err != nil {
		t.Fatalf("create slot: %v", err)
	}
	return slot.ID
}

func countNotifications(t *testing.T, db *gorm.DB, userID uint, message string) int64 {
	t.Helper()
	var n int64
	err := db.Model(&model.Notification{}).
		Where("user_id = ? AND message = ?", userID, message).
		Count(&n).Error
	if err != nil {
		t.Fatalf("count notifications: %v", err)
	}
	return n
}

func TestBook(t *testing.T) {
	svc, db, pub := setupService(t)
	userID, _ := seedUser(t, db, "client@example.com", "Ada", "Hale")
	profID := seedProfessional(t, db, "pro@example.com", "Dana", "Reed", "Physiotherapy")
	ts := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	slotID := seedSlot(t, db, profID, ts, true)

	res, err := svc.Book(context.Background(), userID, profID, ts)
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if !res.Success || res.Message != "Appointment booked successfully." {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.AppointmentID == nil {
		t.Fatal("expected an appointment id")
	}
	if !strings.HasPrefix(res.Reference, "BKL-") {
		t.Errorf("reference = %q, want BKL- prefix", res.Reference)
	}

	var appt model.Appointment
	if err := db.First(&appt, *res.AppointmentID).Error; err != nil {
		t.Fatalf("load appointment: %v", err)
	}
	if appt.Status != constants.StatusPending {
		t.Errorf("status = %q, want PENDING", appt.Status)
	}
	if appt.UserID != userID || appt.ProfessionalID != profID {
		t.Errorf("unexpected appointment: %+v", appt)
	}

	var slot model.Availability
	if err := db.First(&slot, slotID).Error; err != nil {
		t.Fatalf("load slot: %v", err)
	}
	if slot.IsAvailable {
		t.Error("booked slot must be held")
	}

	// The professional id doubles as the notification recipient.
	wantMsg := "New appointment booked for 2025-06-15 09:00:00"
	if n := countNotifications(t, db, profID, wantMsg); n != 1 {
		t.Errorf("professional notifications = %d, want 1", n)
	}

	if len(pub.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(pub.events))
	}
	ev := pub.events[0]
	if ev.Kind != streams.KindBookingCreated || ev.AppointmentID != *res.AppointmentID {
		t.Errorf("unexpected event: %+v", ev)
	}
}

func TestBookNoFreeSlot(t *testing.T) {
	svc, db, _ := setupService(t)
	userID, _ := seedUser(t, db, "client@example.com", "Ada", "Hale")
	profID := seedProfessional(t, db, "pro@example.com", "Dana", "Reed", "")
	ts := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)

	// No slot at all.
	res, err := svc.Book(context.Background(), userID, profID, ts)
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if res.Success || res.Message != "No available slots at the requested time." {
		t.Errorf("unexpected result: %+v", res)
	}

	// Slot exists but is already held.
	seedSlot(t, db, profID, ts, false)
	res, err = svc.Book(context.Background(), userID, profID, ts)
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if res.Success {
		t.Errorf("expected failure for a held slot: %+v", res)
	}

	var count int64
	if err := db.Model(&model.Appointment{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("no appointment should exist, got %d", count)
	}
}

func TestCancel(t *testing.T) {
	svc, db, pub := setupService(t)
	userID, _ := seedUser(t, db, "client@example.com", "Ada", "Hale")
	profID := seedProfessional(t, db, "pro@example.com", "Dana", "Reed", "")
	ts := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	slotID := seedSlot(t, db, profID, ts, true)

	booked, err := svc.Book(context.Background(), userID, profID, ts)
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	res, err := svc.Cancel(context.Background(), *booked.AppointmentID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if !res.Success || res.Message != "The appointment has been successfully cancelled." {
		t.Fatalf("unexpected result: %+v", res)
	}

	var appt model.Appointment
	if err := db.First(&appt, *booked.AppointmentID).Error; err != nil {
		t.Fatalf("load appointment: %v", err)
	}
	if appt.Status != constants.StatusCancelled {
		t.Errorf("status = %q, want CANCELLED", appt.Status)
	}

	var slot model.Availability
	if err := db.First(&slot, slotID).Error; err != nil {
		t.Fatalf("load slot: %v", err)
	}
	if !slot.IsAvailable {
		t.Error("cancelled slot must be released")
	}

	if n := countNotifications(t, db, userID, "Your appointment has been cancelled."); n != 1 {
		t.Errorf("client notifications = %d, want 1", n)
	}
	if n := countNotifications(t, db, profID, "An appointment has been cancelled."); n != 1 {
		t.Errorf("professional notifications = %d, want 1", n)
	}

	if len(pub.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(pub.events))
	}
	if pub.events[1].Kind != streams.KindBookingCancelled {
		t.Errorf("second event kind = %q", pub.events[1].Kind)
	}

	// Cancelling again is a distinct failure, not a no-op.
	res, err = svc.Cancel(context.Background(), *booked.AppointmentID)
	if err != nil {
		t.Fatalf("second cancel: %v", err)
	}
	if res.Success || res.Message != "Appointment is already cancelled." {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestCancelAbsent(t *testing.T) {
	svc, _, _ := setupService(t)

	res, err := svc.Cancel(context.Background(), 424242)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if res.Success || res.Message != "Appointment not found." {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestCancelReleasesDuplicateSlots(t *testing.T) {
	svc, db, _ := setupService(t)
	userID, _ := seedUser(t, db, "client@example.com", "Ada", "Hale")
	profID := seedProfessional(t, db, "pro@example.com", "Dana", "Reed", "")
	ts := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	seedSlot(t, db, profID, ts, true)

	booked, err := svc.Book(context.Background(), userID, profID, ts)
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	// A twin row for the same instant, also held.
	seedSlot(t, db, profID, ts, false)

	if _, err := svc.Cancel(context.Background(), *booked.AppointmentID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	var free int64
	err = db.Model(&model.Availability{}).
		Where("professional_id = ? AND is_available = ?", profID, true).
		Count(&free).Error
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if free != 2 {
		t.Errorf("expected both twin rows released, got %d free", free)
	}
}

func TestUpdate(t *testing.T) {
	svc, db, _ := setupService(t)
	userID, _ := seedUser(t, db, "client@example.com", "Ada", "Hale")
	profID := seedProfessional(t, db, "pro@example.com", "Dana", "Reed", "")
	ts := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	slotID := seedSlot(t, db, profID, ts, true)

	booked, err := svc.Book(context.Background(), userID, profID, ts)
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	newTime := ts.Add(2 * time.Hour)
	res, err := svc.Update(context.Background(), UpdateRequest{
		AppointmentID:    *booked.AppointmentID,
		NewScheduledTime: &newTime,
		Status:           constants.StatusConfirmed,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !res.Success || res.Message != "Appointment updated successfully." {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Appointment == nil || res.Appointment.Status != constants.StatusConfirmed {
		t.Errorf("unexpected appointment: %+v", res.Appointment)
	}
	if !res.Appointment.ScheduledTime.Equal(newTime) {
		t.Errorf("scheduled time = %v, want %v", res.Appointment.ScheduledTime, newTime)
	}
	if res.Notification == nil || res.Notification.Message != "Appointment status updated to CONFIRMED." {
		t.Errorf("unexpected notification: %+v", res.Notification)
	}

	// Updating never touches the ledger: the old slot stays held.
	var slot model.Availability
	if err := db.First(&slot, slotID).Error; err != nil {
		t.Fatalf("load slot: %v", err)
	}
	if slot.IsAvailable {
		t.Error("update must not release the original slot")
	}

	// Status-only update keeps the scheduled time.
	res, err = svc.Update(context.Background(), UpdateRequest{
		AppointmentID: *booked.AppointmentID,
		Status:        constants.StatusCompleted,
	})
	if err != nil {
		t.Fatalf("status-only update: %v", err)
	}
	if !res.Appointment.ScheduledTime.Equal(newTime) {
		t.Errorf("scheduled time changed on status-only update: %v", res.Appointment.ScheduledTime)
	}
}

func TestUpdateAbsent(t *testing.T) {
	svc, _, _ := setupService(t)

	res, err := svc.Update(context.Background(), UpdateRequest{
		AppointmentID: 424242,
		Status:        constants.StatusConfirmed,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if res.Success || res.Message != "Appointment not found." {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestListForUser(t *testing.T) {
	svc, db, _ := setupService(t)
	userID, _ := seedUser(t, db, "client@example.com", "Ada", "Hale")
	otherID, _ := seedUser(t, db, "other@example.com", "Ben", "Ash")
	profID := seedProfessional(t, db, "pro@example.com", "Dana", "Reed", "")

	ts1 := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	ts2 := time.Date(2025, 6, 16, 10, 0, 0, 0, time.UTC)
	appts := []model.Appointment{
		{UserID: userID, ProfessionalID: profID, ScheduledTime: ts1, Status: constants.StatusPending, Reference: "BKL-AAAA-AAAA"},
		{UserID: userID, ProfessionalID: profID, ScheduledTime: ts2, Status: constants.StatusConfirmed, Reference: "BKL-BBBB-BBBB"},
		{UserID: otherID, ProfessionalID: profID, ScheduledTime: ts2, Status: constants.StatusPending, Reference: "BKL-CCCC-CCCC"},
	}
	for i := range appts {
		if err := db.Create(&appts[i]).Error; err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}

	details, err := svc.ListForUser(context.Background(), userID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(details) != 2 {
		t.Fatalf("expected 2 appointments, got %d", len(details))
	}
	for _, d := range details {
		if d.ProfessionalName != "Dana Reed" {
			t.Errorf("professional name = %q", d.ProfessionalName)
		}
		if d.ProfessionalID != profID {
			t.Errorf("professional id = %d, want %d", d.ProfessionalID, profID)
		}
		if d.Reference == "" {
			t.Error("expected a booking reference")
		}
	}
}

func TestAdminOverview(t *testing.T) {
	svc, db, _ := setupService(t)
	userID, _ := seedUser(t, db, "client@example.com", "Ada", "Hale")
	profID := seedProfessional(t, db, "pro@example.com", "Dana", "Reed", "Physiotherapy")

	reviews := []model.Review{
		{UserID: userID, ProfessionalID: profID, Rating: 5, Content: "Very helpful"},
		{UserID: userID, ProfessionalID: profID, Rating: 4, Content: "Would book again"},
	}
	for i := range reviews {
		if err := db.Create(&reviews[i]).Error; err != nil {
			t.Fatalf("seed review %d: %v", i, err)
		}
	}

	ts := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	appt := model.Appointment{UserID: userID, ProfessionalID: profID, ScheduledTime: ts, Status: constants.StatusPending}
	if err := db.Create(&appt).Error; err != nil {
		t.Fatalf("seed appointment: %v", err)
	}

	bookings, err := svc.AdminOverview(context.Background())
	if err != nil {
		t.Fatalf("admin overview: %v", err)
	}
	if len(bookings) != 1 {
		t.Fatalf("expected 1 booking, got %d", len(bookings))
	}

	b := bookings[0]
	if b.AppointmentID != appt.ID || b.Status != constants.StatusPending {
		t.Errorf("unexpected booking: %+v", b)
	}
	if b.UserDetails.UserID != userID || b.UserDetails.Email != "client@example.com" || b.UserDetails.FullName != "Ada Hale" {
		t.Errorf("unexpected user details: %+v", b.UserDetails)
	}
	if b.ProfessionalDetails.ProfessionalID != profID || b.ProfessionalDetails.Qualifications != "Physiotherapy" {
		t.Errorf("unexpected professional details: %+v", b.ProfessionalDetails)
	}
	if len(b.ProfessionalDetails.Reviews) != 2 {
		t.Fatalf("expected 2 reviews, got %d", len(b.ProfessionalDetails.Reviews))
	}
	if b.ProfessionalDetails.Reviews[0] != "Very helpful" && b.ProfessionalDetails.Reviews[1] != "Very helpful" {
		t.Errorf("unexpected reviews: %v", b.ProfessionalDetails.Reviews)
	}
}
