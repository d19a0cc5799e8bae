package submissionController

import (
	"coursetrack/middleware"
	"coursetrack/services/submissions"
	submissionValidator "coursetrack/validators/submission"

	"github.com/gofiber/fiber/v2"
)

type Controller struct {
	submissions *submissions.Service
}

func New(svc *submissions.Service) *Controller {
	return &Controller{submissions: svc}
}

func (ctl *Controller) Create(c *fiber.Ctx) error {
	// Retrieve validated request data
	reqData := c.Locals("validatedSubmission").(*submissionValidator.CreateSubmissionRequest)
	userID, _ := middleware.CurrentUser(c)

	// Create the submission or archive the previous version
	sub, err := ctl.submissions.Submit(c.UserContext(), userID, reqData.TaskID, submissions.Work{
		Content: reqData.Content,
		Files:   reqData.Files,
		Links:   reqData.Links,
	})
	if err != nil {
		return middleware.ErrorResponse(c, err, nil)
	}
	if sub.Version > 1 {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Submission updated successfully!", sub)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Submission created successfully!", sub)
}

// List returns the caller's submissions; admins may list anyone's
func (ctl *Controller) List(c *fiber.Ctx) error {
	reqData := c.Locals("validatedSubmissionList").(*submissionValidator.ListQuery)
	userID, isAdmin := middleware.CurrentUser(c)

	filter := submissions.ListFilter{TaskID: reqData.TaskID, UserID: userID, Status: reqData.Status}
	if isAdmin {
		filter.UserID = reqData.UserID
	}
	subs, err := ctl.submissions.List(c.UserContext(), filter)
	if err != nil {
		return middleware.ErrorResponse(c, err, nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Submissions fetched successfully!", subs)
}

func (ctl *Controller) Get(c *fiber.Ctx) error {
	userID, isAdmin := middleware.CurrentUser(c)

	sub, err := ctl.submissions.Get(c.UserContext(), c.Locals("id").(uint))
	if err != nil {
		return middleware.ErrorResponse(c, err, nil)
	}
	// Only the owner or an admin can see it
	if sub.UserID != userID && !isAdmin {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Submission fetched successfully!", sub)
}

// Update resubmits for the owner or records a review for an admin,
// depending on which fields the request carries.
func (ctl *Controller) Update(c *fiber.Ctx) error {
	reqData := c.Locals("validatedSubmissionUpdate").(*submissionValidator.UpdateSubmissionRequest)
	userID, isAdmin := middleware.CurrentUser(c)
	id := c.Locals("id").(uint)

	// Reviews are for admins only
	if reqData.IsReview() {
		if !isAdmin {
			return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Admin only.", nil)
		}
		sub, err := ctl.submissions.Review(c.UserContext(), userID, id, submissions.Review{
			Status:   *reqData.Status,
			Feedback: reqData.Feedback,
			Grade:    reqData.Grade,
		})
		if err != nil {
			return middleware.ErrorResponse(c, err, nil)
		}
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Submission reviewed successfully!", sub)
	}

	// Anything else is a resubmission; fields left out keep their stored value
	sub, err := ctl.submissions.Resubmit(c.UserContext(), userID, id, submissions.WorkPatch{
		Content: reqData.Content,
		Files:   reqData.Files,
		Links:   reqData.Links,
	})
	if err != nil {
		return middleware.ErrorResponse(c, err, nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Submission updated successfully!", sub)
}
