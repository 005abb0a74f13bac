package handler

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v3"

	"github.com/bookline/bookline_backend/internal/service/professional"
)

type ProfessionalHandler struct {
	svc professional.Service
}

func NewProfessionalHandler(svc professional.Service) *ProfessionalHandler {
	return &ProfessionalHandler{svc: svc}
}

// GET /api/v1/professional
func (h *ProfessionalHandler) List(c fiber.Ctx) error {
	professionals, err := h.svc.List(c.Context())
	if err != nil {
		return internalError(c)
	}

	items := make([]fiber.Map, 0, len(professionals))
	for _, p := range professionals {
		items = append(items, fiber.Map{
			"id":             p.ID,
			"firstName":      p.FirstName,
			"lastName":       p.LastName,
			"qualifications": p.Qualifications,
		})
	}
	return ok(c, fiber.Map{"professionals": items})
}

// POST /api/v1/professional
func (h *ProfessionalHandler) Create(c fiber.Ctx) error {
	var body struct {
		ProfileID      uint     `json:"profileId"`
		Qualifications string   `json:"qualifications"`
		Biography      *string  `json:"biography"`
		AvailableDays  []string `json:"availableDays"`
		HourlyRate     *float64 `json:"hourlyRate"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	// availableDays and hourlyRate are accepted but not stored; the
	// availability ledger drives scheduling.

	detail, err := h.svc.Create(c.Context(), professional.CreateRequest{
		ProfileID:      body.ProfileID,
		Qualifications: body.Qualifications,
		Biography:      body.Biography,
	})
	if err != nil {
		if errors.Is(err, professional.ErrUserProfileNotFound) {
			return badRequest(c, "UserProfile with given profileId does not exist")
		}
		return mapProfessionalError(c, err)
	}

	return created(c, fiber.Map{"profile": professionalDetailPayload(detail)})
}

// GET /api/v1/professional/:id
func (h *ProfessionalHandler) Get(c fiber.Ctx) error {
	profID, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid professional id")
	}

	detail, err := h.svc.Get(c.Context(), profID)
	if err != nil {
		if errors.Is(err, professional.ErrNotFound) {
			return notFound(c, fmt.Sprintf("No professional found with ID %d", profID))
		}
		return mapProfessionalError(c, err)
	}

	return ok(c, fiber.Map{"profile": professionalDetailPayload(detail)})
}

// PUT /api/v1/professional/:id
func (h *ProfessionalHandler) Update(c fiber.Ctx) error {
	profID, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid professional id")
	}

	var body struct {
		Qualifications *string `json:"qualifications"`
		Bio            *string `json:"bio"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	result, err := h.svc.Update(c.Context(), professional.UpdateRequest{
		ProfessionalID: profID,
		Qualifications: body.Qualifications,
		Bio:            body.Bio,
	})
	if err != nil {
		return mapProfessionalError(c, err)
	}

	payload := fiber.Map{
		"success":         result.Success,
		"message":         result.Message,
		"updated_profile": nil,
	}
	if result.UpdatedProfile != nil {
		payload["updated_profile"] = professionalDetailPayload(result.UpdatedProfile)
	}
	return ok(c, payload)
}

// DELETE /api/v1/professional/:id
func (h *ProfessionalHandler) Delete(c fiber.Ctx) error {
	profID, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid professional id")
	}

	result, err := h.svc.Delete(c.Context(), profID)
	if err != nil {
		return mapProfessionalError(c, err)
	}

	payload := fiber.Map{
		"confirmation": result.Confirmation,
		"error":        nil,
	}
	if result.Error != "" {
		payload["error"] = result.Error
	}
	return ok(c, payload)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// professionalDetailPayload keeps the profile's bio keyed under "profileId",
// matching the shape clients already consume.
func professionalDetailPayload(d *professional.Detail) fiber.Map {
	availabilities := make([]fiber.Map, 0, len(d.Availabilities))
	for _, a := range d.Availabilities {
		availabilities = append(availabilities, fiber.Map{
			"datetime":    a.Datetime,
			"isAvailable": a.IsAvailable,
		})
	}
	appointments := make([]fiber.Map, 0, len(d.Appointments))
	for _, a := range d.Appointments {
		appointments = append(appointments, fiber.Map{
			"scheduledTime": a.ScheduledTime,
			"status":        a.Status,
		})
	}
	return fiber.Map{
		"profileId":      fiber.Map{"bio": d.Profile.Bio},
		"qualifications": d.Qualifications,
		"availabilities": availabilities,
		"appointments":   appointments,
	}
}

// ---------------------------------------------------------------------------
// Error mapping
// ---------------------------------------------------------------------------

func mapProfessionalError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, professional.ErrNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, professional.ErrUserProfileNotFound):
		return badRequest(c, err.Error())
	default:
		return internalError(c)
	}
}
