// Package routers assembles the fiber application.
package routers

import (
	authController "coursetrack/controllers/auth"
	batchController "coursetrack/controllers/batch"
	certificateController "coursetrack/controllers/certificate"
	dashboardController "coursetrack/controllers/dashboard"
	enrollmentController "coursetrack/controllers/enrollment"
	submissionController "coursetrack/controllers/submission"
	superAdminController "coursetrack/controllers/superAdmin"
	taskController "coursetrack/controllers/task"
	uploadController "coursetrack/controllers/upload"
	"coursetrack/middleware"
	"coursetrack/routers/adminRoutes"
	"coursetrack/routers/authRoutes"
	"coursetrack/routers/batchRoutes"
	"coursetrack/routers/certificateRoutes"
	"coursetrack/routers/enrollmentRoutes"
	"coursetrack/routers/submissionRoutes"
	"coursetrack/routers/superAdminRoutes"
	"coursetrack/routers/taskRoutes"
	"coursetrack/routers/uploadRoutes"
	"coursetrack/services/auth"
	"coursetrack/services/catalog"
	"coursetrack/services/certificates"
	"coursetrack/services/progress"
	"coursetrack/services/submissions"
	"coursetrack/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

// Deps are the shared handles every route group is built from
type Deps struct {
	DB           *gorm.DB
	Blobs        storage.BlobStore
	Auth         *auth.Service
	Catalog      *catalog.Service
	Progress     *progress.Service
	Submissions  *submissions.Service
	Certificates *certificates.Service

	StaticDir  string // served under StaticPath when set
	StaticPath string
	Quiet      bool // no request logging
}

func NewApp(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit: 25 << 20,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",        // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))

	if !d.Quiet {
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
		}))
	}

	if d.StaticDir != "" {
		app.Static(d.StaticPath, d.StaticDir)
	}

	authRoutes.SetupAuthRoutes(app, authController.New(d.Auth))
	batchRoutes.SetupBatchRoutes(app, batchController.New(d.Catalog), d.DB)
	taskRoutes.SetupTaskRoutes(app, taskController.New(d.Catalog, d.Progress), d.DB)
	enrollmentRoutes.SetupEnrollmentRoutes(app, enrollmentController.New(d.Progress), d.DB)
	submissionRoutes.SetupSubmissionRoutes(app, submissionController.New(d.Submissions), d.DB)
	certificateRoutes.SetupCertificateRoutes(app, certificateController.New(d.Certificates), d.DB)
	uploadRoutes.SetupUploadRoutes(app, uploadController.New(d.Blobs))

	adminGroup := app.Group("/admin", middleware.JWTMiddleware, middleware.AdminOnly(d.DB))
	adminRoutes.SetupAdminRoutes(adminGroup, dashboardController.New(d.DB))
	superAdminRoutes.SetupSuperAdminRoutes(adminGroup, superAdminController.New(d.Auth))

	return app
}
