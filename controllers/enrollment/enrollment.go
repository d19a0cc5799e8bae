package enrollmentController

import (
	"coursetrack/middleware"
	"coursetrack/services/progress"
	enrollmentValidator "coursetrack/validators/enrollment"
	"errors"

	"github.com/gofiber/fiber/v2"
)

type Controller struct {
	progress *progress.Service
}

func New(svc *progress.Service) *Controller {
	return &Controller{progress: svc}
}

// Enroll answers 409 with the existing enrollment when the user is already in the batch
func (ctl *Controller) Enroll(c *fiber.Ctx) error {
	// Retrieve validated request data
	reqData := c.Locals("validatedEnroll").(*enrollmentValidator.EnrollRequest)
	// Retrieve userId from JWT middleware
	userID, _ := middleware.CurrentUser(c)

	enrollment, err := ctl.progress.Enroll(c.UserContext(), userID, reqData.BatchID)
	// Already enrolled, send back the existing enrollment
	if errors.Is(err, progress.ErrAlreadyEnrolled) {
		return middleware.ErrorResponse(c, err, enrollment)
	}
	if err != nil {
		return middleware.ErrorResponse(c, err, nil)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Enrolled successfully!", enrollment)
}

// List shows the caller's enrollments. Admins may filter by any user or batch.
func (ctl *Controller) List(c *fiber.Ctx) error {
	reqData := c.Locals("validatedEnrollmentList").(*enrollmentValidator.ListQuery)
	userID, isAdmin := middleware.CurrentUser(c)

	filter := progress.ListFilter{UserID: userID, BatchID: reqData.BatchID, Status: reqData.Status}
	// Admins may look at anyone
	if isAdmin {
		filter.UserID = reqData.UserID
	}
	enrollments, err := ctl.progress.ListEnrollments(c.UserContext(), filter)
	if err != nil {
		return middleware.ErrorResponse(c, err, nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", enrollments)
}

func (ctl *Controller) Check(c *fiber.Ctx) error {
	// Users can only look at themselves
	userID, ok := lookupUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You can only view your own enrollments!", nil)
	}
	reqData := c.Locals("validatedLookup").(*enrollmentValidator.LookupQuery)

	enrollment, enrolled, err := ctl.progress.CheckEnrollment(c.UserContext(), userID, reqData.BatchID)
	if err != nil {
		return middleware.ErrorResponse(c, err, nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment status fetched!", fiber.Map{
		"enrolled":   enrolled,
		"enrollment": enrollment,
	})
}

func (ctl *Controller) Progress(c *fiber.Ctx) error {
	userID, ok := lookupUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You can only view your own progress!", nil)
	}
	reqData := c.Locals("validatedLookup").(*enrollmentValidator.LookupQuery)

	snapshot, err := ctl.progress.GetProgress(c.UserContext(), userID, reqData.BatchID)
	if errors.Is(err, progress.ErrNotEnrolled) {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Enrollment not found!", nil)
	}
	if err != nil {
		return middleware.ErrorResponse(c, err, nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully!", snapshot)
}

func (ctl *Controller) Withdraw(c *fiber.Ctx) error {
	userID, _ := middleware.CurrentUser(c)

	// Keep progress, only the status changes
	enrollment, err := ctl.progress.Withdraw(c.UserContext(), userID, c.Locals("batchId").(uint))
	if err != nil {
		return middleware.ErrorResponse(c, err, nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Withdrawn from batch!", enrollment)
}

// lookupUser resolves the userId query against the caller: users see only
// themselves, admins anyone.
func lookupUser(c *fiber.Ctx) (uint, bool) {
	reqData := c.Locals("validatedLookup").(*enrollmentValidator.LookupQuery)
	userID, isAdmin := middleware.CurrentUser(c)
	if reqData.UserID == 0 || reqData.UserID == userID {
		return userID, true
	}
	return reqData.UserID, isAdmin
}
