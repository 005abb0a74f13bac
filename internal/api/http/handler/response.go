package handler

import "github.com/gofiber/fiber/v3"

// Success bodies are {"data": ...} and failure bodies are
// {"error": "..."} on every route.

func respond(c fiber.Ctx, status int, body fiber.Map) error {
	return c.Status(status).JSON(body)
}

func ok(c fiber.Ctx, data any) error {
	return respond(c, fiber.StatusOK, fiber.Map{"data": data})
}

func created(c fiber.Ctx, data any) error {
	return respond(c, fiber.StatusCreated, fiber.Map{"data": data})
}

func noContent(c fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

func badRequest(c fiber.Ctx, msg string) error {
	return respond(c, fiber.StatusBadRequest, fiber.Map{"error": msg})
}

func unauthorized(c fiber.Ctx) error {
	return respond(c, fiber.StatusUnauthorized, fiber.Map{"error": "unauthorized"})
}

func forbidden(c fiber.Ctx) error {
	return respond(c, fiber.StatusForbidden, fiber.Map{"error": "forbidden"})
}

func notFound(c fiber.Ctx, msg string) error {
	return respond(c, fiber.StatusNotFound, fiber.Map{"error": msg})
}

func conflict(c fiber.Ctx, msg string) error {
	return respond(c, fiber.StatusConflict, fiber.Map{"error": msg})
}

func tooManyRequests(c fiber.Ctx, msg string) error {
	return respond(c, fiber.StatusTooManyRequests, fiber.Map{"error": msg})
}

func internalError(c fiber.Ctx) error {
	return respond(c, fiber.StatusInternalServerError, fiber.Map{"error": "internal server error"})
}
