package submissionRoutes

import (
	submissionController "coursetrack/controllers/submission"
	"coursetrack/middleware"
	submissionValidator "coursetrack/validators/submission"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupSubmissionRoutes(app *fiber.App, ctl *submissionController.Controller, db *gorm.DB) {
	subGroup := app.Group("/submissions", middleware.JWTMiddleware, middleware.LoadRole(db))

	subGroup.Post("/", submissionValidator.CreateSubmission(), ctl.Create)
	subGroup.Get("/", submissionValidator.List(), ctl.List)
	subGroup.Get("/:id", submissionValidator.SubmissionID(), ctl.Get)
	subGroup.Put("/:id", submissionValidator.SubmissionID(), submissionValidator.UpdateSubmission(), ctl.Update)
}
