package batchRoutes

import (
	batchController "coursetrack/controllers/batch"
	"coursetrack/middleware"
	batchValidator "coursetrack/validators/batch"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupBatchRoutes(app *fiber.App, ctl *batchController.Controller, db *gorm.DB) {
	batchGroup := app.Group("/batches")

	// Public catalog
	batchGroup.Get("/", batchValidator.ListBatches(), ctl.List)
	batchGroup.Get("/:id", batchValidator.BatchID(), ctl.Get)

	// Admin management
	admin := []fiber.Handler{middleware.JWTMiddleware, middleware.AdminOnly(db)}
	batchGroup.Post("/", append(admin, batchValidator.CreateBatch(), ctl.Create)...)
	batchGroup.Put("/:id", append(admin, batchValidator.BatchID(), batchValidator.UpdateBatch(), ctl.Update)...)
	batchGroup.Delete("/:id", append(admin, batchValidator.BatchID(), ctl.Delete)...)
	batchGroup.Get("/:id/available-days", append(admin, batchValidator.BatchID(), ctl.AvailableDays)...)
}
