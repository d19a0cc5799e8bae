package middleware

import (
	"coursetrack/models"
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AdminOnly returns a middleware that lets only administrators through.
// The flag is read from the database so revoked admins lose access immediately.
func AdminOnly(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("userId").(uint)
		if !ok {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized: User ID not found", nil)
		}

		var user models.User
		err := db.WithContext(c.UserContext()).Select("id", "is_admin").First(&user, userID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
			}
			return JsonResponse(c, fiber.StatusInternalServerError, false, "Server error while checking permissions!", nil)
		}
		if !user.IsAdmin {
			return JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Admin only.", nil)
		}

		c.Locals("isAdmin", true)
		return c.Next()
	}
}

// LoadRole marks admins in the request context without rejecting anyone.
func LoadRole(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("userId").(uint)
		if !ok {
			return c.Next()
		}
		var user models.User
		if err := db.WithContext(c.UserContext()).Select("id", "is_admin").First(&user, userID).Error; err == nil {
			c.Locals("isAdmin", user.IsAdmin)
		}
		return c.Next()
	}
}

// CurrentUser returns the authenticated user id and admin flag.
func CurrentUser(c *fiber.Ctx) (uint, bool) {
	userID, _ := c.Locals("userId").(uint)
	isAdmin, _ := c.Locals("isAdmin").(bool)
	return userID, isAdmin
}
