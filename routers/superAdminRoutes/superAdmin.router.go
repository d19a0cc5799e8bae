package superAdminRoutes

import (
	superAdminController "coursetrack/controllers/superAdmin"
	superAdminValidator "coursetrack/validators/superAdmin"

	"github.com/gofiber/fiber/v2"
)

// SetupSuperAdminRoutes mounts user management on the admin-only group
func SetupSuperAdminRoutes(adminGroup fiber.Router, ctl *superAdminController.Controller) {
	adminGroup.Get("/users", superAdminValidator.List(), ctl.UserList)
	adminGroup.Put("/users/:id/admin", superAdminValidator.UserID(), superAdminValidator.SetAdmin(), ctl.SetAdmin)
}
