package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/bookline/bookline_backend/internal/service/auth"
	pasetotoken "github.com/bookline/bookline_backend/pkg/paseto"
)

type AuthHandler struct {
	svc auth.Service
}

func NewAuthHandler(svc auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// POST /api/v1/users/authenticate
func (h *AuthHandler) Authenticate(c fiber.Ctx) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	result, err := h.svc.Login(c.Context(), auth.LoginRequest{
		Email:    body.Email,
		Password: body.Password,
	})
	if err != nil {
		return mapAuthError(c, err)
	}

	// Failed logins report in-band with an empty token.
	payload := fiber.Map{
		"token":   "",
		"message": result.Message,
	}
	if result.Success && result.Tokens != nil {
		payload["token"] = result.Tokens.AccessToken
		payload["refresh_token"] = result.Tokens.RefreshToken
		payload["expires_in"] = result.Tokens.ExpiresIn
	}
	return ok(c, payload)
}

// POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c fiber.Ctx) error {
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.RefreshToken == "" {
		return badRequest(c, "refresh_token is required")
	}

	tokens, err := h.svc.RefreshTokens(c.Context(), body.RefreshToken)
	if err != nil {
		return mapAuthError(c, err)
	}

	return ok(c, fiber.Map{
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"expires_in":    tokens.ExpiresIn,
	})
}

// POST /api/v1/auth/logout  (requires AuthRequired middleware)
func (h *AuthHandler) Logout(c fiber.Ctx) error {
	claims, ok := pasetotoken.ClaimsFromFiber(c)
	if !ok || claims.SessionID == nil {
		return unauthorized(c)
	}

	if err := h.svc.Logout(c.Context(), *claims.SessionID); err != nil {
		return internalError(c)
	}

	return noContent(c)
}

// POST /api/v1/auth/phone/request  (requires AuthRequired middleware)
func (h *AuthHandler) RequestPhoneOTP(c fiber.Ctx) error {
	claims, valid := pasetotoken.ClaimsFromFiber(c)
	if !valid {
		return unauthorized(c)
	}

	if err := h.svc.RequestPhoneOTP(c.Context(), claims.UserID); err != nil {
		return mapAuthError(c, err)
	}

	return ok(c, fiber.Map{"message": "verification code sent to your phone"})
}

// POST /api/v1/auth/phone/verify  (requires AuthRequired middleware)
func (h *AuthHandler) VerifyPhoneOTP(c fiber.Ctx) error {
	claims, valid := pasetotoken.ClaimsFromFiber(c)
	if !valid {
		return unauthorized(c)
	}

	var body struct {
		Code string `json:"code"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.Code == "" {
		return badRequest(c, "code is required")
	}

	if err := h.svc.VerifyPhoneOTP(c.Context(), claims.UserID, body.Code); err != nil {
		return mapAuthError(c, err)
	}

	return ok(c, fiber.Map{"message": "phone number verified"})
}

// ---------------------------------------------------------------------------
// Error mapping
// ---------------------------------------------------------------------------

func mapAuthError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, auth.ErrOTPExpired),
		errors.Is(err, auth.ErrOTPInvalid),
		errors.Is(err, auth.ErrNoPhone):
		return badRequest(c, err.Error())
	case errors.Is(err, auth.ErrOTPMaxAttempts),
		errors.Is(err, auth.ErrAccountLocked):
		return tooManyRequests(c, err.Error())
	case errors.Is(err, auth.ErrSessionNotFound),
		errors.Is(err, auth.ErrInvalidToken):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	default:
		return internalError(c)
	}
}
