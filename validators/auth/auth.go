package authValidator

import (
	"coursetrack/validators/common"

	"github.com/gofiber/fiber/v2"
)

type SignupRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Signup validator middleware
func Signup() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(SignupRequest)
		if ok, err := common.Body(c, reqData); !ok {
			return err
		}
		c.Locals("validatedSignup", reqData)
		return c.Next()
	}
}

// Login validator middleware
func Login() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(LoginRequest)
		if ok, err := common.Body(c, reqData); !ok {
			return err
		}
		c.Locals("validatedLogin", reqData)
		return c.Next()
	}
}

type LoginHistoryQuery struct {
	Page  int `query:"page" validate:"omitempty,min=1"`
	Limit int `query:"limit" validate:"omitempty,min=1,max=100"`
}

// LoginHistoryList validator middleware
func LoginHistoryList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(LoginHistoryQuery)
		if ok, err := common.Query(c, reqData); !ok {
			return err
		}
		if reqData.Page == 0 {
			reqData.Page = 1
		}
		if reqData.Limit == 0 {
			reqData.Limit = 10
		}
		c.Locals("validatedLoginHistory", reqData)
		return c.Next()
	}
}
