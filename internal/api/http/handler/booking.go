package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/bookline/bookline_backend/internal/service/booking"
	"github.com/bookline/bookline_backend/pkg/constants"
	pasetotoken "github.com/bookline/bookline_backend/pkg/paseto"
)

type BookingHandler struct {
	svc booking.Service
}

func NewBookingHandler(svc booking.Service) *BookingHandler {
	return &BookingHandler{svc: svc}
}

// POST /api/v1/bookings
func (h *BookingHandler) Book(c fiber.Ctx) error {
	var body struct {
		UserID         uint      `json:"userId"`
		ProfessionalID uint      `json:"professionalId"`
		ScheduledTime  time.Time `json:"scheduledTime"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.UserID == 0 || body.ProfessionalID == 0 || body.ScheduledTime.IsZero() {
		return badRequest(c, "userId, professionalId and scheduledTime are required")
	}

	result, err := h.svc.Book(c.Context(), body.UserID, body.ProfessionalID, body.ScheduledTime)
	if err != nil {
		return mapBookingError(c, err)
	}

	payload := fiber.Map{
		"success":       result.Success,
		"message":       result.Message,
		"appointmentId": result.AppointmentID,
	}
	if result.Reference != "" {
		payload["reference"] = result.Reference
	}
	return ok(c, payload)
}

// DELETE /api/v1/bookings/cancel
func (h *BookingHandler) Cancel(c fiber.Ctx) error {
	var q struct {
		AppointmentID uint `query:"appointment_id"`
	}
	_ = c.Bind().Query(&q)

	if q.AppointmentID == 0 {
		return badRequest(c, "appointment_id is required")
	}

	result, err := h.svc.Cancel(c.Context(), q.AppointmentID)
	if err != nil {
		return mapBookingError(c, err)
	}

	return ok(c, fiber.Map{
		"success": result.Success,
		"message": result.Message,
	})
}

// PUT /api/v1/bookings/update
func (h *BookingHandler) Update(c fiber.Ctx) error {
	var body struct {
		AppointmentID    uint       `json:"appointmentId"`
		NewScheduledTime *time.Time `json:"newScheduledTime"`
		Status           string     `json:"status"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.AppointmentID == 0 {
		return badRequest(c, "appointmentId is required")
	}
	if !constants.ValidStatus(body.Status) {
		return badRequest(c, "invalid status")
	}

	result, err := h.svc.Update(c.Context(), booking.UpdateRequest{
		AppointmentID:    body.AppointmentID,
		NewScheduledTime: body.NewScheduledTime,
		Status:           body.Status,
	})
	if err != nil {
		return mapBookingError(c, err)
	}

	payload := fiber.Map{
		"success": result.Success,
		"message": result.Message,
	}
	if result.Appointment != nil {
		payload["updatedAppointment"] = fiber.Map{
			"scheduledTime": result.Appointment.ScheduledTime,
			"status":        result.Appointment.Status,
		}
	}
	if result.Notification != nil {
		payload["notification"] = result.Notification
	}
	return ok(c, payload)
}

// GET /api/v1/bookings/user  (requires AuthRequired middleware)
func (h *BookingHandler) ListForUser(c fiber.Ctx) error {
	claims, valid := pasetotoken.ClaimsFromFiber(c)
	if !valid {
		return unauthorized(c)
	}

	appointments, err := h.svc.ListForUser(c.Context(), claims.UserID)
	if err != nil {
		return mapBookingError(c, err)
	}

	items := make([]fiber.Map, 0, len(appointments))
	for _, a := range appointments {
		items = append(items, fiber.Map{
			"id":               a.ID,
			"scheduledTime":    a.ScheduledTime,
			"status":           a.Status,
			"reference":        a.Reference,
			"professionalName": a.ProfessionalName,
			"professionalId":   a.ProfessionalID,
		})
	}
	return ok(c, fiber.Map{"appointments": items})
}

// GET /api/v1/admin/bookings  (admin only)
func (h *BookingHandler) AdminOverview(c fiber.Ctx) error {
	bookings, err := h.svc.AdminOverview(c.Context())
	if err != nil {
		return mapBookingError(c, err)
	}

	items := make([]fiber.Map, 0, len(bookings))
	for _, b := range bookings {
		items = append(items, fiber.Map{
			"appointmentId": b.AppointmentID,
			"scheduledTime": b.ScheduledTime,
			"status":        b.Status,
			"userDetails": fiber.Map{
				"userId":   b.UserDetails.UserID,
				"email":    b.UserDetails.Email,
				"fullName": b.UserDetails.FullName,
			},
			"professionalDetails": fiber.Map{
				"professionalId": b.ProfessionalDetails.ProfessionalID,
				"qualifications": b.ProfessionalDetails.Qualifications,
				"reviews":        b.ProfessionalDetails.Reviews,
			},
		})
	}
	return ok(c, fiber.Map{"bookings": items})
}

// ---------------------------------------------------------------------------
// Error mapping
// ---------------------------------------------------------------------------

func mapBookingError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, booking.ErrNotFound):
		return notFound(c, err.Error())
	default:
		return internalError(c)
	}
}
