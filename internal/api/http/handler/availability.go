package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/bookline/bookline_backend/internal/service/availability"
)

type AvailabilityHandler struct {
	svc availability.Service
}

func NewAvailabilityHandler(svc availability.Service) *AvailabilityHandler {
	return &AvailabilityHandler{svc: svc}
}

// POST /api/v1/availability/update
func (h *AvailabilityHandler) Set(c fiber.Ctx) error {
	var body struct {
		ProfessionalID uint      `json:"professionalId"`
		Datetime       time.Time `json:"datetime"`
		IsAvailable    bool      `json:"isAvailable"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.ProfessionalID == 0 || body.Datetime.IsZero() {
		return badRequest(c, "professionalId and datetime are required")
	}

	result, err := h.svc.SetAvailability(c.Context(), availability.SetRequest{
		ProfessionalID: body.ProfessionalID,
		Datetime:       body.Datetime,
		IsAvailable:    body.IsAvailable,
	})
	if err != nil {
		return mapAvailabilityError(c, err)
	}

	return ok(c, fiber.Map{
		"professionalId": result.ProfessionalID,
		"updatedStatus":  result.UpdatedStatus,
		"message":        result.Message,
	})
}

// GET /api/v1/availability
func (h *AvailabilityHandler) Slots(c fiber.Ctx) error {
	var q struct {
		ProfessionalID uint   `query:"professionalId"`
		StartDate      string `query:"start_date"`
		EndDate        string `query:"end_date"`
	}
	_ = c.Bind().Query(&q)

	if q.ProfessionalID == 0 {
		return badRequest(c, "professionalId is required")
	}
	start, err := time.Parse(time.RFC3339, q.StartDate)
	if err != nil {
		return badRequest(c, "invalid start_date")
	}
	end, err := time.Parse(time.RFC3339, q.EndDate)
	if err != nil {
		return badRequest(c, "invalid end_date")
	}

	slots, err := h.svc.AvailableTimeSlots(c.Context(), q.ProfessionalID, start, end)
	if err != nil {
		return mapAvailabilityError(c, err)
	}

	return ok(c, fiber.Map{"availabilities": availabilityPayload(slots)})
}

// GET /api/v1/availability/check
func (h *AvailabilityHandler) Check(c fiber.Ctx) error {
	var q struct {
		ProfessionalID uint   `query:"professionalId"`
		Date           string `query:"date"`
	}
	_ = c.Bind().Query(&q)

	var profID *uint
	if q.ProfessionalID != 0 {
		profID = &q.ProfessionalID
	}
	var date *time.Time
	if q.Date != "" {
		d, err := time.Parse("2006-01-02", q.Date)
		if err != nil {
			return badRequest(c, "invalid date")
		}
		date = &d
	}

	slots, err := h.svc.CheckAvailability(c.Context(), profID, date)
	if err != nil {
		return mapAvailabilityError(c, err)
	}

	return ok(c, fiber.Map{"availabilities": availabilityPayload(slots)})
}

// GET /api/v1/availability/history
func (h *AvailabilityHandler) History(c fiber.Ctx) error {
	var q struct {
		ProfessionalID uint `query:"professionalId"`
	}
	_ = c.Bind().Query(&q)

	if q.ProfessionalID == 0 {
		return badRequest(c, "professionalId is required")
	}

	records, err := h.svc.History(c.Context(), q.ProfessionalID)
	if err != nil {
		return mapAvailabilityError(c, err)
	}

	history := make([]fiber.Map, 0, len(records))
	for _, r := range records {
		history = append(history, fiber.Map{
			"datetime":    r.Datetime,
			"isAvailable": r.IsAvailable,
		})
	}
	return ok(c, fiber.Map{"history": history})
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func availabilityPayload(slots []availability.ProfessionalAvailability) []fiber.Map {
	items := make([]fiber.Map, 0, len(slots))
	for _, s := range slots {
		items = append(items, fiber.Map{
			"professionalId":    s.ProfessionalID,
			"name":              s.Name,
			"availability":      s.Availability,
			"nextAvailableTime": s.NextAvailableTime,
		})
	}
	return items
}

// ---------------------------------------------------------------------------
// Error mapping
// ---------------------------------------------------------------------------

func mapAvailabilityError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, availability.ErrSlotNotFound):
		return notFound(c, err.Error())
	default:
		return internalError(c)
	}
}
