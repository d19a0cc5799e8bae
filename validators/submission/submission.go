package submissionValidator

import (
	"coursetrack/middleware"
	"coursetrack/validators/common"

	"github.com/gofiber/fiber/v2"
)

type CreateSubmissionRequest struct {
	TaskID  uint     `json:"task_id" validate:"required"`
	Content string   `json:"content"`
	Files   []string `json:"files"`
	Links   []string `json:"links" validate:"dive,url"`
}

// UpdateSubmissionRequest is either a resubmission (content, files, links)
// or a review (status, feedback, grade), never both. A resubmission only
// replaces the parts it sends.
type UpdateSubmissionRequest struct {
	Content *string   `json:"content"`
	Files   *[]string `json:"files"`
	Links   *[]string `json:"links"`

	Status   *string `json:"status" validate:"omitempty,oneof=reviewed approved rejected"`
	Feedback *string `json:"feedback"`
	Grade    *int    `json:"grade" validate:"omitempty,min=0,max=100"`
}

func (r *UpdateSubmissionRequest) IsResubmission() bool {
	return r.Content != nil || r.Files != nil || r.Links != nil
}

func (r *UpdateSubmissionRequest) IsReview() bool {
	return r.Status != nil || r.Feedback != nil || r.Grade != nil
}

type ListQuery struct {
	TaskID uint   `query:"taskId"`
	UserID uint   `query:"userId"`
	Status string `query:"status" validate:"omitempty,oneof=pending reviewed approved rejected"`
}

func CreateSubmission() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateSubmissionRequest)
		if ok, err := common.Body(c, reqData); !ok {
			return err
		}
		c.Locals("validatedSubmission", reqData)
		return c.Next()
	}
}

func UpdateSubmission() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(UpdateSubmissionRequest)
		if ok, err := common.Body(c, reqData); !ok {
			return err
		}
		switch resubmit, review := reqData.IsResubmission(), reqData.IsReview(); {
		case resubmit && review:
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Send either a resubmission or a review, not both!", nil)
		case !resubmit && !review:
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Nothing to update!", nil)
		case review && reqData.Status == nil:
			return middleware.ValidationErrorResponse(c, map[string]string{"status": "status is required!"})
		}
		c.Locals("validatedSubmissionUpdate", reqData)
		return c.Next()
	}
}

func List() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ListQuery)
		if ok, err := common.Query(c, reqData); !ok {
			return err
		}
		c.Locals("validatedSubmissionList", reqData)
		return c.Next()
	}
}

// SubmissionID validates the :id route parameter
func SubmissionID() fiber.Handler {
	return common.ID("id", "Submission")
}
