package middleware

import (
	"coursetrack/apperr"
	"coursetrack/config"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
)

func JsonResponse(c *fiber.Ctx, statusCode int, status bool, message string, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

func ValidationErrorResponse(c *fiber.Ctx, errors map[string]string) error {
	return JsonResponse(c, fiber.StatusBadRequest, false, "Validation failed!", errors)
}

// StatusFor maps an error kind to its HTTP status
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return fiber.StatusBadRequest
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindConflict:
		return fiber.StatusConflict
	case apperr.KindUnauthorized:
		return fiber.StatusUnauthorized
	case apperr.KindForbidden:
		return fiber.StatusForbidden
	}
	return fiber.StatusInternalServerError
}

// ErrorResponse writes err in the standard envelope. data is attached as-is
// (a conflict can carry the existing record). Unexpected error details are
// hidden in production.
func ErrorResponse(c *fiber.Ctx, err error, data interface{}) error {
	kind := apperr.KindOf(err)
	status := StatusFor(kind)
	message := apperr.Message(err)
	detail := err.Error()

	var ae *apperr.Error
	if errors.As(err, &ae) && ae.Fields != nil && data == nil {
		data = ae.Fields
	}
	if kind == apperr.KindUnexpected {
		log.Printf("[%s %s] %v", c.Method(), c.Path(), err)
		if config.AppConfig.IsProduction() {
			detail = "internal error"
			if ae == nil {
				message = "Something went wrong!"
			}
		}
	}

	return c.Status(status).JSON(fiber.Map{
		"status":  false,
		"message": message,
		"error":   detail,
		"data":    data,
	})
}
