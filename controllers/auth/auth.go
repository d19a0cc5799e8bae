package authController

import (
	"coursetrack/middleware"
	"coursetrack/services/auth"
	authValidator "coursetrack/validators/auth"

	"github.com/gofiber/fiber/v2"
)

type Controller struct {
	svc *auth.Service
}

func New(svc *auth.Service) *Controller {
	return &Controller{svc: svc}
}

func (ctl *Controller) Signup(c *fiber.Ctx) error {
	// Retrieve validated request data
	reqData := c.Locals("validatedSignup").(*authValidator.SignupRequest)

	// Hash the password and create the user
	user, err := ctl.svc.Signup(c.UserContext(), reqData.Name, reqData.Email, reqData.Password)
	if err != nil {
		return middleware.ErrorResponse(c, err, nil)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "User registered successfully!", user)
}

func (ctl *Controller) Login(c *fiber.Ctx) error {
	reqData := c.Locals("validatedLogin").(*authValidator.LoginRequest)

	// Check credentials and record the login
	user, token, err := ctl.svc.Login(c.UserContext(), reqData.Email, reqData.Password, auth.Client{
		IP:     c.IP(),
		Device: c.Get(fiber.HeaderUserAgent),
	})
	if err != nil {
		return middleware.ErrorResponse(c, err, nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login successful!", fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Me returns the authenticated user's profile
func (ctl *Controller) Me(c *fiber.Ctx) error {
	// Retrieve userId from JWT middleware
	userID, _ := middleware.CurrentUser(c)

	user, err := ctl.svc.Profile(c.UserContext(), userID)
	if err != nil {
		return middleware.ErrorResponse(c, err, nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile fetched successfully!", user)
}

func (ctl *Controller) LoginHistoryList(c *fiber.Ctx) error {
	reqData := c.Locals("validatedLoginHistory").(*authValidator.LoginHistoryQuery)
	userID, _ := middleware.CurrentUser(c)

	history, total, err := ctl.svc.LoginHistory(c.UserContext(), userID, reqData.Page, reqData.Limit)
	if err != nil {
		return middleware.ErrorResponse(c, err, nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login history fetched successfully!", fiber.Map{
		"history": history,
		"pagination": fiber.Map{
			"total": total,
			"page":  reqData.Page,
			"limit": reqData.Limit,
		},
	})
}
