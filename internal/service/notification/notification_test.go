package notification

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
	"github.com/bookline/bookline_backend/internal/streams"
)

type stubPublisher struct {
	events []streams.Event
	err    error
}

func (p *stubPublisher) Publish(_ context.Context, ev streams.Event) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	p.events = append(p.events, ev)
	return fmt.Sprintf("0-%d", len(p.events)), nil
}

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
	return New(db, pub), db, pub
}

func seedUser(t *testing.T, db *gorm.DB, email string) uint {
	t.Helper()
	user := model.User{Email: email, PasswordHash: "x", Role: "regular"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user.ID
}

func TestEnqueue(t *testing.T) {
	svc, db, _ := setupService(t)
	userID := seedUser(t, db, "dana@example.com")

	n, err := svc.Enqueue(context.Background(), userID, "Your appointment is confirmed.")
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if n.ID == 0 {
		t.Error("expected a persisted id")
	}
	if n.UserID != userID || n.Message != "Your appointment is confirmed." {
		t.Errorf("unexpected notification: %+v", n)
	}
	if n.IsRead {
		t.Error("new notifications must be unread")
	}
}

func TestEnqueueWithData(t *testing.T) {
	svc, db, _ := setupService(t)
	userID := seedUser(t, db, "dana@example.com")

	n, err := svc.EnqueueWithData(context.Background(), userID, "Booked.", map[string]any{"appointment_id": 101})
	if err != nil {
		t.Fatalf("enqueue with data: %v", err)
	}

	var fresh model.Notification
	if err := db.First(&fresh, n.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(fresh.Data) == 0 {
		t.Fatal("expected data payload to be stored")
	}
	if got := string(fresh.Data); got != `{"appointment_id":101}` {
		t.Errorf("data = %s", got)
	}
}

func TestCreate(t *testing.T) {
	svc, db, pub := setupService(t)
	userID := seedUser(t, db, "dana@example.com")

	res, err := svc.Create(context.Background(), CreateRequest{
		RecipientID: userID,
		Type:        "ALERT",
		Content:     "Your appointment is now confirmed",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !res.Success || res.Message != "Notification queued successfully." {
		t.Errorf("unexpected result: %+v", res)
	}

	var n model.Notification
	if err := db.Where("user_id = ?", userID).First(&n).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if n.Message != "[ALERT] Your appointment is now confirmed" {
		t.Errorf("message = %q", n.Message)
	}

	if len(pub.events) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(pub.events))
	}
	ev := pub.events[0]
	if ev.Kind != streams.KindNotificationCreated {
		t.Errorf("event kind = %q", ev.Kind)
	}
	if ev.NotificationID != n.ID || ev.UserID != userID {
		t.Errorf("unexpected event: %+v", ev)
	}
}

func TestCreatePublishFailureIsNotFatal(t *testing.T) {
	svc, db, pub := setupService(t)
	userID := seedUser(t, db, "dana@example.com")
	pub.err = errors.New("stream down")

	res, err := svc.Create(context.Background(), CreateRequest{
		RecipientID: userID, Type: "REMINDER", Content: "See you soon",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !res.Success {
		t.Errorf("publish failure must not fail the create: %+v", res)
	}
}

func TestGet(t *testing.T) {
	svc, db, _ := setupService(t)
	userID := seedUser(t, db, "dana@example.com")

	created, err := svc.Enqueue(context.Background(), userID, "hello")
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	got, err := svc.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Message != "hello" {
		t.Errorf("message = %q", got.Message)
	}

	if _, err := svc.Get(context.Background(), 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	svc, db, _ := setupService(t)
	userID := seedUser(t, db, "dana@example.com")
	otherID := seedUser(t, db, "eli@example.com")

	base := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	rows := []model.Notification{
		{UserID: userID, Message: "oldest", CreatedAt: base},
		{UserID: userID, Message: "newest", CreatedAt: base.Add(2 * time.Hour)},
		{UserID: userID, Message: "middle", CreatedAt: base.Add(time.Hour)},
		{UserID: otherID, Message: "not mine", CreatedAt: base.Add(3 * time.Hour)},
	}
	for i := range rows {
		if err := db.Create(&rows[i]).Error; err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}

	notifs, err := svc.List(context.Background(), userID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(notifs) != 3 {
		t.Fatalf("expected 3 notifications, got %d", len(notifs))
	}
	want := []string{"newest", "middle", "oldest"}
	for i, n := range notifs {
		if n.Message != want[i] {
			t.Errorf("position %d = %q, want %q", i, n.Message, want[i])
		}
	}
}

func TestUpdate(t *testing.T) {
	svc, db, _ := setupService(t)
	userID := seedUser(t, db, "dana@example.com")

	n, err := svc.Enqueue(context.Background(), userID, "original text")
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	res, err := svc.Update(context.Background(), UpdateRequest{
		NotificationID: n.ID, Message: "corrected text", IsRead: true,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !res.Success || res.NotificationID != n.ID {
		t.Errorf("unexpected result: %+v", res)
	}
	if len(res.UpdatedFields) != 2 {
		t.Fatalf("expected 2 changed fields, got %v", res.UpdatedFields)
	}
	if res.UpdatedFields["message"] != "corrected text" || res.UpdatedFields["isRead"] != true {
		t.Errorf("unexpected changed fields: %v", res.UpdatedFields)
	}

	var fresh model.Notification
	if err := db.First(&fresh, n.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if fresh.Message != "corrected text" || !fresh.IsRead {
		t.Errorf("row not updated: %+v", fresh)
	}

	// Writing identical values reports no changed fields.
	res, err = svc.Update(context.Background(), UpdateRequest{
		NotificationID: n.ID, Message: "corrected text", IsRead: true,
	})
	if err != nil {
		t.Fatalf("idempotent update: %v", err)
	}
	if !res.Success || len(res.UpdatedFields) != 0 {
		t.Errorf("expected no changed fields, got %+v", res)
	}
}

func TestUpdateAbsent(t *testing.T) {
	svc, _, _ := setupService(t)

	res, err := svc.Update(context.Background(), UpdateRequest{
		NotificationID: 424242, Message: "x", IsRead: true,
	})
	if err != nil {
		t.Fatalf("update absent: %v", err)
	}
	if res.Success {
		t.Error("expected Success=false for an absent notification")
	}
	if res.NotificationID != 424242 || len(res.UpdatedFields) != 0 {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestDelete(t *testing.T) {
	svc, db, _ := setupService(t)
	userID := seedUser(t, db, "dana@example.com")

	n, err := svc.Enqueue(context.Background(), userID, "to be removed")
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	res, err := svc.Delete(context.Background(), n.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if res.Message != "Notification deleted successfully." || res.DeletedID != n.ID {
		t.Errorf("unexpected result: %+v", res)
	}

	var count int64
	if err := db.Model(&model.Notification{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("expected row removed, %d remain", count)
	}

	// Deleting a missing row still succeeds.
	res, err = svc.Delete(context.Background(), 9999)
	if err != nil {
		t.Fatalf("delete missing: %v", err)
	}
	if res.Message != "Notification deleted successfully." || res.DeletedID != 9999 {
		t.Errorf("unexpected result for missing row: %+v", res)
	}
}

func TestSettingsDerivation(t *testing.T) {
	tests := []struct {
		count int
		email bool
		sms   bool
		push  bool
	}{
		{count: 0, email: false, sms: false, push: false},
		{count: 1, email: false, sms: false, push: true},
		{count: 2, email: true, sms: false, push: true},
		{count: 4, email: true, sms: true, push: true},
		{count: 5, email: false, sms: true, push: false},
		{count: 6, email: true, sms: true, push: false},
	}

	svc, db, _ := setupService(t)

	for _, tt := range tests {
		t.Run(fmt.Sprintf("count_%d", tt.count), func(t *testing.T) {
			userID := seedUser(t, db, fmt.Sprintf("user%d@example.com", tt.count))
			for i := 0; i < tt.count; i++ {
				if err := db.Create(&model.Notification{UserID: userID, Message: "m"}).Error; err != nil {
					t.Fatalf("seed: %v", err)
				}
			}

			res, err := svc.Settings(context.Background(), userID)
			if err != nil {
				t.Fatalf("settings: %v", err)
			}
			if res.UserID != userID {
				t.Errorf("UserID = %d, want %d", res.UserID, userID)
			}
			if res.EmailAlertsEnabled != tt.email || res.SmsAlertsEnabled != tt.sms || res.PushNotificationsEnabled != tt.push {
				t.Errorf("settings for %d rows = %+v", tt.count, res)
			}
		})
	}
}

func TestUpdateSettings(t *testing.T) {
	svc, db, _ := setupService(t)
	userID := seedUser(t, db, "dana@example.com")

	yes := true
	no := false
	res, err := svc.UpdateSettings(context.Background(), UpdateSettingsRequest{
		UserID:                    userID,
		EmailNotificationsEnabled: &yes,
		WeeklySummaryEnabled:      &no,
	})
	if err != nil {
		t.Fatalf("update settings: %v", err)
	}
	if !res.Success || res.UserID != userID {
		t.Errorf("unexpected result: %+v", res)
	}
	want := []string{"emailNotificationsEnabled", "weeklySummaryEnabled"}
	if len(res.UpdatedFields) != len(want) {
		t.Fatalf("UpdatedFields = %v, want %v", res.UpdatedFields, want)
	}
	for i, f := range want {
		if res.UpdatedFields[i] != f {
			t.Errorf("UpdatedFields[%d] = %q, want %q", i, res.UpdatedFields[i], f)
		}
	}
}

func TestUpdateSettingsUnknownUser(t *testing.T) {
	svc, _, _ := setupService(t)

	yes := true
	res, err := svc.UpdateSettings(context.Background(), UpdateSettingsRequest{
		UserID:                   9999,
		PushNotificationsEnabled: &yes,
	})
	if err != nil {
		t.Fatalf("update settings: %v", err)
	}
	if res.Success {
		t.Error("expected Success=false for unknown user")
	}
	if len(res.UpdatedFields) != 0 || res.UserID != 9999 {
		t.Errorf("unexpected result: %+v", res)
	}
}
