package uploadRoutes

import (
	uploadController "coursetrack/controllers/upload"
	"coursetrack/middleware"

	"github.com/gofiber/fiber/v2"
)

func SetupUploadRoutes(app *fiber.App, ctl *uploadController.Controller) {
	app.Post("/upload", middleware.JWTMiddleware, ctl.Upload)
}
