package taskRoutes

import (
	taskController "coursetrack/controllers/task"
	"coursetrack/middleware"
	taskValidator "coursetrack/validators/task"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupTaskRoutes(app *fiber.App, ctl *taskController.Controller, db *gorm.DB) {
	taskGroup := app.Group("/tasks", middleware.JWTMiddleware)

	// Learners
	taskGroup.Get("/", middleware.LoadRole(db), taskValidator.ListTasks(), ctl.List)
	taskGroup.Get("/:id", middleware.LoadRole(db), taskValidator.TaskID(), ctl.Get)
	taskGroup.Post("/:id/complete", taskValidator.TaskID(), taskValidator.CompleteTask(), ctl.Complete)
	taskGroup.Post("/:id/uncomplete", taskValidator.TaskID(), taskValidator.UncompleteTask(), ctl.Uncomplete)

	// Admin management
	taskGroup.Post("/", middleware.AdminOnly(db), taskValidator.CreateTask(), ctl.Create)
	taskGroup.Put("/:id", middleware.AdminOnly(db), taskValidator.TaskID(), taskValidator.UpdateTask(), ctl.Update)
	taskGroup.Delete("/:id", middleware.AdminOnly(db), taskValidator.TaskID(), ctl.Delete)
}
