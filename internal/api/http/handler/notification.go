package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/bookline/bookline_backend/internal/service/notification"
	"github.com/bookline/bookline_backend/pkg/constants"
	pasetotoken "github.com/bookline/bookline_backend/pkg/paseto"
)

type NotificationHandler struct {
	svc notification.Service
}

func NewNotificationHandler(svc notification.Service) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

// POST /api/v1/notifications
func (h *NotificationHandler) Create(c fiber.Ctx) error {
	var body struct {
		RecipientID uint   `json:"recipient_id"`
		Type        string `json:"notification_type"`
		Content     string `json:"content"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.RecipientID == 0 || body.Content == "" {
		return badRequest(c, "recipient_id and content are required")
	}

	result, err := h.svc.Create(c.Context(), notification.CreateRequest{
		RecipientID: body.RecipientID,
		Type:        body.Type,
		Content:     body.Content,
	})
	if err != nil {
		return mapNotificationError(c, err)
	}

	return ok(c, fiber.Map{
		"success": result.Success,
		"message": result.Message,
	})
}

// GET /api/v1/notifications  (requires AuthRequired middleware)
func (h *NotificationHandler) List(c fiber.Ctx) error {
	claims, claimsOK := pasetotoken.ClaimsFromFiber(c)
	if !claimsOK {
		return unauthorized(c)
	}

	var q struct {
		UserID string `query:"user_id"`
		Role   string `query:"role"`
	}
	_ = c.Bind().Query(&q)

	if q.Role != "" && !constants.ValidRole(q.Role) {
		return badRequest(c, "invalid role")
	}

	// Only admins may read another user's notifications.
	userID := claims.UserID
	if q.Role == constants.RoleAdmin && q.UserID != "" {
		parsed, err := strconv.ParseUint(q.UserID, 10, 32)
		if err != nil {
			return badRequest(c, "invalid user_id")
		}
		userID = uint(parsed)
	}

	notifs, err := h.svc.List(c.Context(), userID)
	if err != nil {
		return mapNotificationError(c, err)
	}

	return ok(c, fiber.Map{"notifications": notifs})
}

// PUT /api/v1/notifications/:notificationId
func (h *NotificationHandler) Update(c fiber.Ctx) error {
	notifID, err := parseUintParam(c, "notificationId")
	if err != nil {
		return badRequest(c, "invalid notification id")
	}

	var body struct {
		Message *string `json:"message"`
		IsRead  *bool   `json:"isRead"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.Message == nil || body.IsRead == nil {
		return badRequest(c, "message and isRead are required")
	}

	result, err := h.svc.Update(c.Context(), notification.UpdateRequest{
		NotificationID: notifID,
		Message:        *body.Message,
		IsRead:         *body.IsRead,
	})
	if err != nil {
		return mapNotificationError(c, err)
	}

	return ok(c, fiber.Map{
		"success":        result.Success,
		"notificationId": result.NotificationID,
		"updatedFields":  result.UpdatedFields,
	})
}

// DELETE /api/v1/notifications/:notificationId
func (h *NotificationHandler) Delete(c fiber.Ctx) error {
	notifID, err := parseUintParam(c, "notificationId")
	if err != nil {
		return badRequest(c, "invalid notification id")
	}

	result, err := h.svc.Delete(c.Context(), notifID)
	if err != nil {
		return mapNotificationError(c, err)
	}

	return ok(c, fiber.Map{
		"message":   result.Message,
		"deletedId": result.DeletedID,
	})
}

// GET /api/v1/notifications/settings/:userId
func (h *NotificationHandler) Settings(c fiber.Ctx) error {
	userID, err := parseUintParam(c, "userId")
	if err != nil {
		return badRequest(c, "invalid user id")
	}

	settings, err := h.svc.Settings(c.Context(), userID)
	if err != nil {
		return mapNotificationError(c, err)
	}

	return ok(c, fiber.Map{
		"userId":                   settings.UserID,
		"emailAlertsEnabled":       settings.EmailAlertsEnabled,
		"smsAlertsEnabled":         settings.SmsAlertsEnabled,
		"pushNotificationsEnabled": settings.PushNotificationsEnabled,
	})
}

// PATCH /api/v1/notifications/settings/:userId
func (h *NotificationHandler) UpdateSettings(c fiber.Ctx) error {
	userID, err := parseUintParam(c, "userId")
	if err != nil {
		return badRequest(c, "invalid user id")
	}

	var body struct {
		EmailNotificationsEnabled     *bool `json:"emailNotificationsEnabled"`
		PushNotificationsEnabled      *bool `json:"pushNotificationsEnabled"`
		WeeklySummaryEnabled          *bool `json:"weeklySummaryEnabled"`
		PromotionNotificationsEnabled *bool `json:"promotionNotificationsEnabled"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	result, err := h.svc.UpdateSettings(c.Context(), notification.UpdateSettingsRequest{
		UserID:                        userID,
		EmailNotificationsEnabled:     body.EmailNotificationsEnabled,
		PushNotificationsEnabled:      body.PushNotificationsEnabled,
		WeeklySummaryEnabled:          body.WeeklySummaryEnabled,
		PromotionNotificationsEnabled: body.PromotionNotificationsEnabled,
	})
	if err != nil {
		return mapNotificationError(c, err)
	}

	// userId goes out as a string here; the settings GET keeps it numeric.
	return ok(c, fiber.Map{
		"success":       result.Success,
		"updatedFields": result.UpdatedFields,
		"userId":        strconv.FormatUint(uint64(result.UserID), 10),
	})
}

// ---------------------------------------------------------------------------
// Error mapping
// ---------------------------------------------------------------------------

func mapNotificationError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, notification.ErrNotFound):
		return notFound(c, err.Error())
	default:
		return internalError(c)
	}
}
