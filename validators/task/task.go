package taskValidator

import (
	"coursetrack/models"
	"coursetrack/validators/common"

	"github.com/gofiber/fiber/v2"
)

type CreateTaskRequest struct {
	BatchID        uint                  `json:"batch_id" validate:"required"`
	DayNumber      int                   `json:"day_number"`
	Title          string                `json:"title" validate:"required"`
	Description    string                `json:"description"`
	OrderIndex     int                   `json:"order_index" validate:"min=0"`
	ContentType    string                `json:"content_type" validate:"required,oneof=video quiz assignment reading project"`
	VideoURL       string                `json:"video_url" validate:"omitempty,url"`
	Quiz           []models.QuizQuestion `json:"quiz" validate:"dive"`
	Assignment     string                `json:"assignment"`
	ReadingContent string                `json:"reading_content"`
	ProjectDetails string                `json:"project_details"`
	Pdfs           []string              `json:"pdfs"`
	Images         []string              `json:"images"`
	CodeSnippets   []models.CodeSnippet  `json:"code_snippets"`
	IsPublished    bool                  `json:"is_published"`
}

// UpdateTaskRequest has no batch_id; a task never moves between batches.
type UpdateTaskRequest struct {
	Title          *string                `json:"title" validate:"omitempty,min=1"`
	Description    *string                `json:"description"`
	DayNumber      *int                   `json:"day_number"`
	OrderIndex     *int                   `json:"order_index" validate:"omitempty,min=0"`
	ContentType    *string                `json:"content_type" validate:"omitempty,oneof=video quiz assignment reading project"`
	VideoURL       *string                `json:"video_url"`
	Quiz           *[]models.QuizQuestion `json:"quiz"`
	Assignment     *string                `json:"assignment"`
	ReadingContent *string                `json:"reading_content"`
	ProjectDetails *string                `json:"project_details"`
	Pdfs           *[]string              `json:"pdfs"`
	Images         *[]string              `json:"images"`
	CodeSnippets   *[]models.CodeSnippet  `json:"code_snippets"`
	IsPublished    *bool                  `json:"is_published"`
}

type ListTasksQuery struct {
	BatchID uint `query:"batchId" validate:"required"`
}

type CompleteTaskRequest struct {
	EnrollmentID uint `json:"enrollmentId" validate:"required"`
}

type UncompleteTaskRequest struct {
	BatchID uint `json:"batchId" validate:"required"`
}

func CreateTask() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateTaskRequest)
		if ok, err := common.Body(c, reqData); !ok {
			return err
		}
		c.Locals("validatedTask", reqData)
		return c.Next()
	}
}

func UpdateTask() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(UpdateTaskRequest)
		if ok, err := common.Body(c, reqData); !ok {
			return err
		}
		c.Locals("validatedTaskUpdate", reqData)
		return c.Next()
	}
}

func ListTasks() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ListTasksQuery)
		if ok, err := common.Query(c, reqData); !ok {
			return err
		}
		c.Locals("validatedTaskList", reqData)
		return c.Next()
	}
}

func CompleteTask() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CompleteTaskRequest)
		if ok, err := common.Body(c, reqData); !ok {
			return err
		}
		c.Locals("validatedComplete", reqData)
		return c.Next()
	}
}

func UncompleteTask() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(UncompleteTaskRequest)
		if ok, err := common.Body(c, reqData); !ok {
			return err
		}
		c.Locals("validatedUncomplete", reqData)
		return c.Next()
	}
}

// TaskID validates the :id route parameter
func TaskID() fiber.Handler {
	return common.ID("id", "Task")
}
