package availability

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bookline/bookline_backend/internal/model"
)

type stubNotifier struct {
	calls []struct {
		UserID  uint
		Message string
	}
	err error
}

func (n *stubNotifier) Enqueue(_ context.Context, userID uint, message string) (*model.Notification, error) {
	if n.err != nil {
		return nil, n.err
	}
	n.calls = append(n.calls, struct {
		UserID  uint
		Message string
	}{userID, message})
	return &model.Notification{UserID: userID, Message: message}, nil
}

func setupService(t *testing.T) (Service, *gorm.DB, *stubNotifier) {
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
	// A single connection keeps every query on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	notifier := &stubNotifier{}
	return New(db, notifier), db, notifier
}

// seedProfessional creates the user -> profile -> professional chain and
// returns the professional profile id plus the owning user profile id.
func seedProfessional(t *testing.T, db *gorm.DB, firstName, lastName string) (professionalID, profileID uint) {
	t.Helper()

	user := model.User{
		Email:        fmt.Sprintf("%s.%s@example.com", firstName, lastName),
		PasswordHash: "x",
		Role:         "professional",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	profile := model.UserProfile{UserID: user.ID, FirstName: firstName, LastName: lastName}
	if err := db.Create(&profile).Error; err != nil {
		t.Fatalf("create profile: %v", err)
	}
	prof := model.ProfessionalProfile{ProfileID: profile.ID}
	if err := db.Create(&prof).Error; err != nil {
		t.Fatalf("create professional: %v", err)
	}
	return prof.ID, profile.ID
}

func TestSetAvailability(t *testing.T) {
	svc, db, notifier := setupService(t)
	profID, _ := seedProfessional(t, db, "Dana", "Reed")
	ts := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)

	res, err := svc.SetAvailability(context.Background(), SetRequest{
		ProfessionalID: profID, Datetime: ts, IsAvailable: true,
	})
	if err != nil {
		t.Fatalf("set availability: %v", err)
	}
	if res.ProfessionalID != profID || !res.UpdatedStatus {
		t.Errorf("unexpected result: %+v", res)
	}
	if res.Message != "Availability successfully updated and notification sent." {
		t.Errorf("unexpected message: %q", res.Message)
	}

	if len(notifier.calls) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifier.calls))
	}
	if notifier.calls[0].UserID != profID {
		t.Errorf("notification recipient = %d, want professional id %d", notifier.calls[0].UserID, profID)
	}
	wantMsg := "Your availability for 2025-06-15 09:00 has been set to available."
	if notifier.calls[0].Message != wantMsg {
		t.Errorf("notification message = %q, want %q", notifier.calls[0].Message, wantMsg)
	}

	// Second write for the same slot updates in place.
	res, err = svc.SetAvailability(context.Background(), SetRequest{
		ProfessionalID: profID, Datetime: ts, IsAvailable: false,
	})
	if err != nil {
		t.Fatalf("set availability again: %v", err)
	}
	if res.UpdatedStatus {
		t.Error("expected UpdatedStatus=false after disabling")
	}

	var count int64
	if err := db.Model(&model.Availability{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 row after upsert, got %d", count)
	}
	if len(notifier.calls) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(notifier.calls))
	}
	wantMsg = "Your availability for 2025-06-15 09:00 has been set to not available."
	if notifier.calls[1].Message != wantMsg {
		t.Errorf("second notification message = %q, want %q", notifier.calls[1].Message, wantMsg)
	}
}

func TestSetAvailabilityNotifierErrorPropagates(t *testing.T) {
	svc, db, notifier := setupService(t)
	profID, _ := seedProfessional(t, db, "Dana", "Reed")
	notifier.err = errors.New("insert failed")

	_, err := svc.SetAvailability(context.Background(), SetRequest{
		ProfessionalID: profID,
		Datetime:       time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC),
		IsAvailable:    true,
	})
	if err == nil {
		t.Fatal("expected error when notification enqueue fails")
	}
}

func TestFindSlot(t *testing.T) {
	svc, db, _ := setupService(t)
	profID, _ := seedProfessional(t, db, "Dana", "Reed")
	ts := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)

	if err := db.Create(&model.Availability{ProfessionalID: profID, Datetime: ts, IsAvailable: true}).Error; err != nil {
		t.Fatalf("seed slot: %v", err)
	}

	slot, err := svc.FindSlot(context.Background(), profID, ts)
	if err != nil {
		t.Fatalf("find slot: %v", err)
	}
	if slot.ProfessionalID != profID || !slot.IsAvailable {
		t.Errorf("unexpected slot: %+v", slot)
	}

	_, err = svc.FindSlot(context.Background(), profID, ts.Add(time.Hour))
	if !errors.Is(err, ErrSlotNotFound) {
		t.Errorf("expected ErrSlotNotFound, got %v", err)
	}
}

func TestListSlotsFilters(t *testing.T) {
	svc, db, _ := setupService(t)
	profA, _ := seedProfessional(t, db, "Dana", "Reed")
	profB, _ := seedProfessional(t, db, "Eli", "Stone")

	day := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	seed := []model.Availability{
		{ProfessionalID: profA, Datetime: day.Add(9 * time.Hour), IsAvailable: true},
		{ProfessionalID: profA, Datetime: day.Add(23 * time.Hour), IsAvailable: false},
		{ProfessionalID: profA, Datetime: day.Add(24 * time.Hour), IsAvailable: true}, // next day
		{ProfessionalID: profB, Datetime: day.Add(10 * time.Hour), IsAvailable: true},
	}
	for i := range seed {
		if err := db.Create(&seed[i]).Error; err != nil {
			t.Fatalf("seed slot %d: %v", i, err)
		}
	}

	all, err := svc.ListSlots(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("expected 4 slots, got %d", len(all))
	}

	byProf, err := svc.ListSlots(context.Background(), &profA, nil)
	if err != nil {
		t.Fatalf("list by professional: %v", err)
	}
	if len(byProf) != 3 {
		t.Errorf("expected 3 slots for professional A, got %d", len(byProf))
	}

	byDate, err := svc.ListSlots(context.Background(), nil, &day)
	if err != nil {
		t.Fatalf("list by date: %v", err)
	}
	if len(byDate) != 3 {
		t.Errorf("expected 3 slots on %s, got %d", day.Format("2006-01-02"), len(byDate))
	}

	both, err := svc.ListSlots(context.Background(), &profA, &day)
	if err != nil {
		t.Fatalf("list by both: %v", err)
	}
	if len(both) != 2 {
		t.Errorf("expected 2 slots for professional A on the day, got %d", len(both))
	}
}

func TestReserveAndRelease(t *testing.T) {
	svc, db, _ := setupService(t)
	profID, _ := seedProfessional(t, db, "Dana", "Reed")
	ts := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)

	if err := db.Create(&model.Availability{ProfessionalID: profID, Datetime: ts, IsAvailable: true}).Error; err != nil {
		t.Fatalf("seed slot: %v", err)
	}

	slot, err := svc.Reserve(context.Background(), profID, ts)
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	// Reserve only reads; the booking flow flips the flag afterwards.
	var fresh model.Availability
	if err := db.First(&fresh, slot.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !fresh.IsAvailable {
		t.Error("reserve must not flip is_available")
	}

	if err := db.Model(&model.Availability{}).Where("id = ?", slot.ID).Update("is_available", false).Error; err != nil {
		t.Fatalf("flip: %v", err)
	}
	if _, err := svc.Reserve(context.Background(), profID, ts); !errors.Is(err, ErrSlotUnavailable) {
		t.Errorf("expected ErrSlotUnavailable, got %v", err)
	}

	// A duplicate row for the same instant heals together on release.
	if err := db.Create(&model.Availability{ProfessionalID: profID, Datetime: ts, IsAvailable: false}).Error; err != nil {
		t.Fatalf("seed duplicate: %v", err)
	}
	if err := svc.Release(context.Background(), profID, ts); err != nil {
		t.Fatalf("release: %v", err)
	}

	var free int64
	err = db.Model(&model.Availability{}).
		Where("professional_id = ? AND datetime = ? AND is_available = ?", profID, ts, true).
		Count(&free).Error
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if free != 2 {
		t.Errorf("expected both duplicate rows released, got %d free", free)
	}
}

func TestCheckAvailability(t *testing.T) {
	svc, db, _ := setupService(t)
	profA, profileA := seedProfessional(t, db, "Dana", "Reed")
	profB, profileB := seedProfessional(t, db, "Eli", "Stone")

	free := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	taken := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	if err := db.Create(&model.Availability{ProfessionalID: profA, Datetime: free, IsAvailable: true}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := db.Create(&model.Availability{ProfessionalID: profB, Datetime: taken, IsAvailable: false}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	entries, err := svc.CheckAvailability(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("check availability: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	byName := make(map[string]ProfessionalAvailability, len(entries))
	for _, e := range entries {
		byName[e.Name] = e
	}

	dana, ok := byName["Dana Reed"]
	if !ok {
		t.Fatal("missing entry for Dana Reed")
	}
	// Entries carry the owning user profile id, not the professional id.
	if dana.ProfessionalID != profileA {
		t.Errorf("ProfessionalID = %d, want user profile id %d", dana.ProfessionalID, profileA)
	}
	if !dana.Availability {
		t.Error("expected Dana's slot to be available")
	}
	if dana.NextAvailableTime == nil || !dana.NextAvailableTime.Equal(free) {
		t.Errorf("NextAvailableTime = %v, want %v", dana.NextAvailableTime, free)
	}

	eli, ok := byName["Eli Stone"]
	if !ok {
		t.Fatal("missing entry for Eli Stone")
	}
	if eli.ProfessionalID != profileB {
		t.Errorf("ProfessionalID = %d, want user profile id %d", eli.ProfessionalID, profileB)
	}
	if eli.Availability {
		t.Error("expected Eli's slot to be unavailable")
	}
	if eli.NextAvailableTime != nil {
		t.Errorf("NextAvailableTime should be nil for an unavailable slot, got %v", eli.NextAvailableTime)
	}

	filtered, err := svc.CheckAvailability(context.Background(), &profA, nil)
	if err != nil {
		t.Fatalf("check availability filtered: %v", err)
	}
	if len(filtered) != 1 || filtered[0].Name != "Dana Reed" {
		t.Errorf("unexpected filtered entries: %+v", filtered)
	}
}

func TestAvailableTimeSlots(t *testing.T) {
	svc, db, _ := setupService(t)
	profID, _ := seedProfessional(t, db, "Dana", "Reed")

	base := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	seed := []model.Availability{
		{ProfessionalID: profID, Datetime: base.Add(9 * time.Hour), IsAvailable: true},
		{ProfessionalID: profID, Datetime: base.Add(12 * time.Hour), IsAvailable: false},
		{ProfessionalID: profID, Datetime: base.Add(30 * time.Hour), IsAvailable: true}, // outside range
	}
	for i := range seed {
		if err := db.Create(&seed[i]).Error; err != nil {
			t.Fatalf("seed slot %d: %v", i, err)
		}
	}

	entries, err := svc.AvailableTimeSlots(context.Background(), profID, base, base.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("available time slots: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries in range, got %d", len(entries))
	}
	for _, e := range entries {
		// This view echoes the requested professional profile id.
		if e.ProfessionalID != profID {
			t.Errorf("ProfessionalID = %d, want %d", e.ProfessionalID, profID)
		}
		if e.Name != "Dana Reed" {
			t.Errorf("Name = %q, want %q", e.Name, "Dana Reed")
		}
	}

	empty, err := svc.AvailableTimeSlots(context.Background(), 9999, base, base.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("available time slots for unknown professional: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected empty result for unknown professional, got %d entries", len(empty))
	}
}

func TestHistory(t *testing.T) {
	svc, db, _ := setupService(t)
	profID, _ := seedProfessional(t, db, "Dana", "Reed")

	later := time.Date(2025, 6, 16, 9, 0, 0, 0, time.UTC)
	earlier := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	if err := db.Create(&model.Availability{ProfessionalID: profID, Datetime: later, IsAvailable: false}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := db.Create(&model.Availability{ProfessionalID: profID, Datetime: earlier, IsAvailable: true}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	history, err := svc.History(context.Background(), profID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 records, got %d", len(history))
	}
	if !history[0].Datetime.Equal(earlier) || !history[1].Datetime.Equal(later) {
		t.Errorf("history not ordered by datetime asc: %+v", history)
	}
	if !history[0].IsAvailable || history[1].IsAvailable {
		t.Errorf("unexpected flags: %+v", history)
	}
}
