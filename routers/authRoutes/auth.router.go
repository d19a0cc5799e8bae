package authRoutes

import (
	authController "coursetrack/controllers/auth"
	"coursetrack/middleware"
	authValidator "coursetrack/validators/auth"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App, ctl *authController.Controller) {
	authGroup := app.Group("/auth")

	authGroup.Post("/signup", authValidator.Signup(), ctl.Signup)
	authGroup.Post("/login", authValidator.Login(), ctl.Login)
	authGroup.Get("/me", middleware.JWTMiddleware, ctl.Me)
	authGroup.Get("/login/history", middleware.JWTMiddleware, authValidator.LoginHistoryList(), ctl.LoginHistoryList)
}
