package taskController

import (
	"coursetrack/middleware"
	"coursetrack/services/catalog"
	"coursetrack/services/progress"
	taskValidator "coursetrack/validators/task"

	"github.com/gofiber/fiber/v2"
)

type Controller struct {
	catalog  *catalog.Service
	progress *progress.Service
}

func New(catalogSvc *catalog.Service, progressSvc *progress.Service) *Controller {
	return &Controller{catalog: catalogSvc, progress: progressSvc}
}

func (ctl *Controller) Create(c *fiber.Ctx) error {
	// Retrieve validated request data
	reqData := c.Locals("validatedTask").(*taskValidator.CreateTaskRequest)

	// Check the day slot and save the task
	task, err := ctl.catalog.CreateTask(c.UserContext(), catalog.TaskInput{
		BatchID:        reqData.BatchID,
		DayNumber:      reqData.DayNumber,
		Title:          reqData.Title,
		Description:    reqData.Description,
		OrderIndex:     reqData.OrderIndex,
		ContentType:    reqData.ContentType,
		VideoURL:       reqData.VideoURL,
		Quiz:           reqData.Quiz,
		Assignment:     reqData.Assignment,
		ReadingContent: reqData.ReadingContent,
		ProjectDetails: reqData.ProjectDetails,
		Pdfs:           reqData.Pdfs,
		Images:         reqData.Images,
		CodeSnippets:   reqData.CodeSnippets,
		IsPublished:    reqData.IsPublished,
	})
	if err != nil {
		return middleware.ErrorResponse(c, err, nil)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Task created successfully!", task)
}

// List returns a batch's tasks; only admins see drafts
func (ctl *Controller) List(c *fiber.Ctx) error {
	reqData := c.Locals("validatedTaskList").(*taskValidator.ListTasksQuery)
	_, isAdmin := middleware.CurrentUser(c)

	tasks, err := ctl.catalog.ListTasks(c.UserContext(), reqData.BatchID, !isAdmin)
	if err != nil {
		return middleware.ErrorResponse(c, err, nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Tasks fetched successfully!", tasks)
}

func (ctl *Controller) Get(c *fiber.Ctx) error {
	_, isAdmin := middleware.CurrentUser(c)

	task, err := ctl.catalog.GetTask(c.UserContext(), c.Locals("id").(uint))
	if err != nil {
		return middleware.ErrorResponse(c, err, nil)
	}
	// Drafts are invisible to learners
	if !task.IsPublished && !isAdmin {
		return middleware.ErrorResponse(c, catalog.ErrTaskNotFound, nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Task fetched successfully!", task)
}

func (ctl *Controller) Update(c *fiber.Ctx) error {
	reqData := c.Locals("validatedTaskUpdate").(*taskValidator.UpdateTaskRequest)

	task, err := ctl.catalog.UpdateTask(c.UserContext(), c.Locals("id").(uint), catalog.TaskPatch{
		Title:          reqData.Title,
		Description:    reqData.Description,
		DayNumber:      reqData.DayNumber,
		OrderIndex:     reqData.OrderIndex,
		ContentType:    reqData.ContentType,
		VideoURL:       reqData.VideoURL,
		Quiz:           reqData.Quiz,
		Assignment:     reqData.Assignment,
		ReadingContent: reqData.ReadingContent,
		ProjectDetails: reqData.ProjectDetails,
		Pdfs:           reqData.Pdfs,
		Images:         reqData.Images,
		CodeSnippets:   reqData.CodeSnippets,
		IsPublished:    reqData.IsPublished,
	})
	if err != nil {
		return middleware.ErrorResponse(c, err, nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Task updated successfully!", task)
}

func (ctl *Controller) Delete(c *fiber.Ctx) error {
	// Delete the task and drop it from enrollments
	report, err := ctl.catalog.DeleteTask(c.UserContext(), c.Locals("id").(uint))
	if err != nil {
		return middleware.ErrorResponse(c, err, nil)
	}
	message := "Task deleted successfully!"
	if len(report.FailedBlobs) > 0 {
		message = "Task deleted! Some files could not be removed and were queued for cleanup."
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, report)
}

func (ctl *Controller) Complete(c *fiber.Ctx) error {
	// Retrieve validated request data
	reqData := c.Locals("validatedComplete").(*taskValidator.CompleteTaskRequest)
	// Retrieve userId from JWT middleware
	userID, _ := middleware.CurrentUser(c)

	// Mark the task completed and update progress
	result, err := ctl.progress.CompleteTask(c.UserContext(), userID, reqData.EnrollmentID, c.Locals("id").(uint))
	if err != nil {
		return middleware.ErrorResponse(c, err, nil)
	}
	message := "Task marked as completed!"
	if result.AlreadyCompleted {
		message = "Task already completed!"
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, result)
}

func (ctl *Controller) Uncomplete(c *fiber.Ctx) error {
	reqData := c.Locals("validatedUncomplete").(*taskValidator.UncompleteTaskRequest)
	userID, _ := middleware.CurrentUser(c)

	result, err := ctl.progress.UncompleteTask(c.UserContext(), userID, reqData.BatchID, c.Locals("id").(uint))
	if err != nil {
		return middleware.ErrorResponse(c, err, nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Task marked as not completed!", result)
}
