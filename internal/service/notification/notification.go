package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/bookline/bookline_backend/internal/model"
	"github.com/bookline/bookline_backend/internal/streams"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreateRequest struct {
	RecipientID uint
	Type        string // ALERT, REMINDER, ...
	Content     string
}

type CreateResult struct {
	Success bool
	Message string
}

type UpdateRequest struct {
	NotificationID uint
	Message        string
	IsRead         bool
}

type UpdateResult struct {
	Success        bool
	NotificationID uint
	UpdatedFields  map[string]any
}

type DeleteResult struct {
	Message   string
	DeletedID uint
}

type SettingsResult struct {
	UserID                   uint
	EmailAlertsEnabled       bool
	SmsAlertsEnabled         bool
	PushNotificationsEnabled bool
}

type UpdateSettingsRequest struct {
	UserID                        uint
	EmailNotificationsEnabled     *bool
	PushNotificationsEnabled      *bool
	WeeklySummaryEnabled          *bool
	PromotionNotificationsEnabled *bool
}

type UpdateSettingsResult struct {
	Success       bool
	UpdatedFields []string
	UserID        uint
}

// EventPublisher pushes domain events onto the stream. *streams.Publisher
// satisfies it; a nil publisher disables publishing.
type EventPublisher interface {
	Publish(ctx context.Context, ev streams.Event) (string, error)
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	// Enqueue is the pure-insert primitive behind every flow that records a
	// notification. No delivery, no retry, no dedup.
	Enqueue(ctx context.Context, userID uint, message string) (*model.Notification, error)
	EnqueueWithData(ctx context.Context, userID uint, message string, data map[string]any) (*model.Notification, error)

	Create(ctx context.Context, req CreateRequest) (*CreateResult, error)
	Get(ctx context.Context, id uint) (*model.Notification, error)
	List(ctx context.Context, userID uint) ([]*model.Notification, error)
	Update(ctx context.Context, req UpdateRequest) (*UpdateResult, error)
	Delete(ctx context.Context, id uint) (*DeleteResult, error)

	Settings(ctx context.Context, userID uint) (*SettingsResult, error)
	UpdateSettings(ctx context.Context, req UpdateSettingsRequest) (*UpdateSettingsResult, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type notificationService struct {
	db     *gorm.DB
	events EventPublisher
}

func New(db *gorm.DB, events EventPublisher) Service {
	return &notificationService{db: db, events: events}
}

func (s *notificationService) Enqueue(ctx context.Context, userID uint, message string) (*model.Notification, error) {
	return s.EnqueueWithData(ctx, userID, message, nil)
}

func (s *notificationService) EnqueueWithData(ctx context.Context, userID uint, message string, data map[string]any) (*model.Notification, error) {
	n := model.Notification{UserID: userID, Message: message}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("marshal notification data: %w", err)
		}
		n.Data = datatypes.JSON(raw)
	}

	if err := s.db.WithContext(ctx).Create(&n).Error; err != nil {
		return nil, fmt.Errorf("enqueue notification: %w", err)
	}
	return &n, nil
}

func (s *notificationService) Create(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	n := model.Notification{
		UserID:  req.RecipientID,
		Message: fmt.Sprintf("[%s] %s", req.Type, req.Content),
	}
	if err := s.db.WithContext(ctx).Create(&n).Error; err != nil {
		// Reported in-band rather than as an error, matching the endpoint's
		// catch-all contract.
		return &CreateResult{Success: false, Message: err.Error()}, nil
	}

	if s.events != nil {
		if _, err := s.events.Publish(ctx, streams.NotificationCreated(n.ID, n.UserID)); err != nil {
			slog.WarnContext(ctx, "failed to publish notification event",
				"notification_id", n.ID, "user_id", n.UserID, "error", err)
		}
	}

	return &CreateResult{Success: true, Message: "Notification queued successfully."}, nil
}

func (s *notificationService) Get(ctx context.Context, id uint) (*model.Notification, error) {
	var n model.Notification
	if err := s.db.WithContext(ctx).First(&n, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get notification: %w", err)
	}
	return &n, nil
}

func (s *notificationService) List(ctx context.Context, userID uint) ([]*model.Notification, error) {
	var notifs []*model.Notification
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&notifs).Error
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifs, nil
}

func (s *notificationService) Update(ctx context.Context, req UpdateRequest) (*UpdateResult, error) {
	var n model.Notification
	err := s.db.WithContext(ctx).First(&n, req.NotificationID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &UpdateResult{
				Success:        false,
				NotificationID: req.NotificationID,
				UpdatedFields:  map[string]any{},
			}, nil
		}
		return nil, fmt.Errorf("get notification: %w", err)
	}

	// Both fields are always written; the response lists only the ones whose
	// value actually changed.
	err = s.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("id = ?", req.NotificationID).
		Updates(map[string]any{"message": req.Message, "is_read": req.IsRead}).Error
	if err != nil {
		return nil, fmt.Errorf("update notification: %w", err)
	}

	updated := map[string]any{}
	if req.Message != n.Message {
		updated["message"] = req.Message
	}
	if req.IsRead != n.IsRead {
		updated["isRead"] = req.IsRead
	}

	return &UpdateResult{
		Success:        true,
		NotificationID: req.NotificationID,
		UpdatedFields:  updated,
	}, nil
}

func (s *notificationService) Delete(ctx context.Context, id uint) (*DeleteResult, error) {
	// No absent check: deleting a missing row is still reported as success.
	if err := s.db.WithContext(ctx).Delete(&model.Notification{}, id).Error; err != nil {
		return nil, fmt.Errorf("delete notification: %w", err)
	}
	return &DeleteResult{Message: "Notification deleted successfully.", DeletedID: id}, nil
}

// Settings derives per-channel flags from the size of the user's notification
// history. Nothing is stored; zero rows means everything off.
func (s *notificationService) Settings(ctx context.Context, userID uint) (*SettingsResult, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("user_id = ?", userID).
		Count(&n).Error
	if err != nil {
		return nil, fmt.Errorf("count notifications: %w", err)
	}

	out := &SettingsResult{UserID: userID}
	if n == 0 {
		return out, nil
	}
	out.EmailAlertsEnabled = n%2 == 0
	out.SmsAlertsEnabled = n > 3
	out.PushNotificationsEnabled = n < 5
	return out, nil
}

func (s *notificationService) UpdateSettings(ctx context.Context, req UpdateSettingsRequest) (*UpdateSettingsResult, error) {
	var user model.User
	err := s.db.WithContext(ctx).First(&user, req.UserID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &UpdateSettingsResult{
				Success:       false,
				UpdatedFields: []string{},
				UserID:        req.UserID,
			}, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	// Preferences have no backing columns, so nothing is persisted; the reply
	// acknowledges exactly the fields the caller provided.
	updated := []string{}
	if req.EmailNotificationsEnabled != nil {
		updated = append(updated, "emailNotificationsEnabled")
	}
	if req.PushNotificationsEnabled != nil {
		updated = append(updated, "pushNotificationsEnabled")
	}
	if req.WeeklySummaryEnabled != nil {
		updated = append(updated, "weeklySummaryEnabled")
	}
	if req.PromotionNotificationsEnabled != nil {
		updated = append(updated, "promotionNotificationsEnabled")
	}

	return &UpdateSettingsResult{Success: true, UpdatedFields: updated, UserID: req.UserID}, nil
}
