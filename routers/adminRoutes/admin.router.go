package adminRoutes

import (
	dashboardController "coursetrack/controllers/dashboard"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminRoutes mounts dashboard routes on the admin-only group
func SetupAdminRoutes(adminGroup fiber.Router, ctl *dashboardController.Controller) {
	adminGroup.Get("/dashboard/stats", ctl.Stats)
}
