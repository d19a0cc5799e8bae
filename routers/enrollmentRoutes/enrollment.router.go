package enrollmentRoutes

import (
	enrollmentController "coursetrack/controllers/enrollment"
	"coursetrack/middleware"
	enrollmentValidator "coursetrack/validators/enrollment"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupEnrollmentRoutes(app *fiber.App, ctl *enrollmentController.Controller, db *gorm.DB) {
	enrollGroup := app.Group("/enrollments", middleware.JWTMiddleware, middleware.LoadRole(db))

	enrollGroup.Post("/", enrollmentValidator.Enroll(), ctl.Enroll)
	enrollGroup.Get("/", enrollmentValidator.List(), ctl.List)
	enrollGroup.Get("/check", enrollmentValidator.Lookup(), ctl.Check)
	enrollGroup.Get("/progress", enrollmentValidator.Lookup(), ctl.Progress)
	enrollGroup.Post("/:batchId/withdraw", enrollmentValidator.BatchID(), ctl.Withdraw)
}
