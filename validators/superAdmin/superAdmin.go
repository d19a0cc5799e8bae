package superAdminValidator

import (
	"coursetrack/validators/common"

	"github.com/gofiber/fiber/v2"
)

type UserListQuery struct {
	Page   int    `query:"page" validate:"required,min=1"`
	Limit  int    `query:"limit" validate:"required,min=1,max=100"`
	Search string `query:"search" validate:"max=100"`
}

type SetAdminRequest struct {
	IsAdmin *bool `json:"is_admin" validate:"required"`
}

func List() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(UserListQuery)
		if ok, err := common.Query(c, reqData); !ok {
			return err
		}
		c.Locals("validateUserList", reqData)
		return c.Next()
	}
}

func SetAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(SetAdminRequest)
		if ok, err := common.Body(c, reqData); !ok {
			return err
		}
		c.Locals("validatedSetAdmin", reqData)
		return c.Next()
	}
}

// UserID validates the :id route parameter
func UserID() fiber.Handler {
	return common.ID("id", "User")
}
