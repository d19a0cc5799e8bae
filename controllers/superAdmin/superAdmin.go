package superAdminController

import (
	"coursetrack/middleware"
	"coursetrack/services/auth"
	superAdminValidator "coursetrack/validators/superAdmin"

	"github.com/gofiber/fiber/v2"
)

type Controller struct {
	auth *auth.Service
}

func New(svc *auth.Service) *Controller {
	return &Controller{auth: svc}
}

func (ctl *Controller) UserList(c *fiber.Ctx) error {
	// Retrieve validated request data
	reqData := c.Locals("validateUserList").(*superAdminValidator.UserListQuery)

	// Fetch the page of users
	users, total, err := ctl.auth.ListUsers(c.UserContext(), reqData.Search, reqData.Page, reqData.Limit)
	if err != nil {
		return middleware.ErrorResponse(c, err, nil)
	}

	// Response structure
	response := map[string]interface{}{
		"users": users,
		"pagination": map[string]interface{}{
			"total": total,
			"page":  reqData.Page,
			"limit": reqData.Limit,
		},
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "User List.", response)
}

func (ctl *Controller) SetAdmin(c *fiber.Ctx) error {
	reqData := c.Locals("validatedSetAdmin").(*superAdminValidator.SetAdminRequest)
	// Retrieve userId from JWT middleware
	actorID, _ := middleware.CurrentUser(c)

	user, err := ctl.auth.SetAdmin(c.UserContext(), actorID, c.Locals("id").(uint), *reqData.IsAdmin)
	if err != nil {
		return middleware.ErrorResponse(c, err, nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "User updated successfully!", user)
}
