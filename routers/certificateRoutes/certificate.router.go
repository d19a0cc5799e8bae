package certificateRoutes

import (
	certificateController "coursetrack/controllers/certificate"
	"coursetrack/middleware"
	certificateValidator "coursetrack/validators/certificate"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupCertificateRoutes(app *fiber.App, ctl *certificateController.Controller, db *gorm.DB) {
	// Public verification
	app.Get("/verify-certificate", certificateValidator.Verify(), ctl.Verify)

	certGroup := app.Group("/certificates", middleware.JWTMiddleware, middleware.AdminOnly(db))
	certGroup.Post("/", certificateValidator.CreateCertificate(), ctl.Create)
	certGroup.Get("/", certificateValidator.List(), ctl.List)
	certGroup.Post("/issue", certificateValidator.Issue(), ctl.Issue)
	certGroup.Get("/:id", certificateValidator.CertificateID(), ctl.Get)
	certGroup.Delete("/:id", certificateValidator.CertificateID(), ctl.Delete)
}
