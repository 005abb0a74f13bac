package handler

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/bookline/bookline_backend/internal/service/user"
	"github.com/bookline/bookline_backend/pkg/constants"
)

type UserHandler struct {
	svc user.Service
}

func NewUserHandler(svc user.Service) *UserHandler {
	return &UserHandler{svc: svc}
}

// POST /api/v1/users
func (h *UserHandler) Create(c fiber.Ctx) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	result, err := h.svc.Create(c.Context(), user.CreateRequest{
		Email:    body.Email,
		Password: body.Password,
		Role:     body.Role,
	})
	if err != nil {
		return mapUserError(c, err)
	}

	return created(c, fiber.Map{"user_id": result.UserID})
}

// GET /api/v1/users/:userId
func (h *UserHandler) Get(c fiber.Ctx) error {
	userID, err := parseUintParam(c, "userId")
	if err != nil {
		return badRequest(c, "invalid user id")
	}

	detail, err := h.svc.Get(c.Context(), userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return notFound(c, fmt.Sprintf("User with ID %d not found.", userID))
		}
		return mapUserError(c, err)
	}

	payload := fiber.Map{
		"id":      detail.ID,
		"email":   detail.Email,
		"role":    detail.Role,
		"profile": nil,
	}
	if detail.Profile != nil {
		payload["profile"] = fiber.Map{"bio": detail.Profile.Bio}
	}
	return ok(c, payload)
}

// GET /api/v1/users
func (h *UserHandler) List(c fiber.Ctx) error {
	var q struct {
		Email string `query:"email"`
		Role  string `query:"role"`
	}
	_ = c.Bind().Query(&q)

	var emailFilter, roleFilter *string
	if q.Email != "" {
		emailFilter = &q.Email
	}
	if q.Role != "" {
		if !constants.ValidRole(q.Role) {
			return badRequest(c, "invalid role")
		}
		roleFilter = &q.Role
	}

	users, err := h.svc.List(c.Context(), emailFilter, roleFilter)
	if err != nil {
		return mapUserError(c, err)
	}

	items := make([]fiber.Map, 0, len(users))
	for _, u := range users {
		items = append(items, fiber.Map{
			"id":    u.ID,
			"email": u.Email,
			"role":  u.Role,
		})
	}
	return ok(c, fiber.Map{"users": items})
}

// PUT /api/v1/users/:userId
func (h *UserHandler) Update(c fiber.Ctx) error {
	userID, err := parseUintParam(c, "userId")
	if err != nil {
		return badRequest(c, "invalid user id")
	}

	var body struct {
		Email     *string `json:"email"`
		Password  *string `json:"password"`
		FirstName *string `json:"firstName"`
		LastName  *string `json:"lastName"`
		Bio       *string `json:"bio"`
		Phone     *string `json:"phone"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	result, err := h.svc.Update(c.Context(), user.UpdateRequest{
		UserID:    userID,
		Email:     body.Email,
		Password:  body.Password,
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Bio:       body.Bio,
		Phone:     body.Phone,
	})
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return notFound(c, "User not found")
		}
		return mapUserError(c, err)
	}

	return ok(c, fiber.Map{
		"userId":    result.UserID,
		"email":     result.Email,
		"firstName": result.FirstName,
		"lastName":  result.LastName,
		"bio":       result.Bio,
	})
}

// DELETE /api/v1/users/:userId
func (h *UserHandler) Delete(c fiber.Ctx) error {
	userID, err := parseUintParam(c, "userId")
	if err != nil {
		return badRequest(c, "invalid user id")
	}

	result, err := h.svc.Delete(c.Context(), userID)
	if err != nil {
		return mapUserError(c, err)
	}

	return ok(c, fiber.Map{"message": result.Message})
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func parseUintParam(c fiber.Ctx, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(v), nil
}

// ---------------------------------------------------------------------------
// Error mapping
// ---------------------------------------------------------------------------

func mapUserError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, user.ErrNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, user.ErrEmailExists):
		return conflict(c, err.Error())
	case errors.Is(err, user.ErrInvalidRole),
		errors.Is(err, user.ErrInvalidPhone):
		return badRequest(c, err.Error())
	default:
		return internalError(c)
	}
}
