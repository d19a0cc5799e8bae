package batchController

import (
	"coursetrack/middleware"
	"coursetrack/services/catalog"
	batchValidator "coursetrack/validators/batch"

	"github.com/gofiber/fiber/v2"
)

type Controller struct {
	catalog *catalog.Service
}

func New(svc *catalog.Service) *Controller {
	return &Controller{catalog: svc}
}

func (ctl *Controller) Create(c *fiber.Ctx) error {
	// Retrieve validated request data
	reqData := c.Locals("validatedBatch").(*batchValidator.CreateBatchRequest)

	// Save the batch
	batch, err := ctl.catalog.CreateBatch(c.UserContext(), catalog.BatchInput{
		Title:         reqData.Title,
		Description:   reqData.Description,
		CourseName:    reqData.CourseName,
		StartDate:     reqData.StartDate,
		BannerURL:     reqData.BannerURL,
		DurationDays:  reqData.DurationDays,
		Instructor:    reqData.Instructor,
		Price:         reqData.Price,
		Capacity:      reqData.Capacity,
		IsActive:      reqData.IsActive,
		WhatYouLearn:  reqData.WhatYouLearn,
		Prerequisites: reqData.Prerequisites,
		Benefits:      reqData.Benefits,
	})
	if err != nil {
		return middleware.ErrorResponse(c, err, nil)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Batch created successfully!", batch)
}

func (ctl *Controller) List(c *fiber.Ctx) error {
	reqData := c.Locals("validatedBatchList").(*batchValidator.ListBatchesQuery)

	batches, err := ctl.catalog.ListBatches(c.UserContext(), reqData.Active)
	if err != nil {
		return middleware.ErrorResponse(c, err, nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Batches fetched successfully!", batches)
}

func (ctl *Controller) Get(c *fiber.Ctx) error {
	batch, err := ctl.catalog.GetBatch(c.UserContext(), c.Locals("id").(uint))
	if err != nil {
		return middleware.ErrorResponse(c, err, nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Batch fetched successfully!", batch)
}

func (ctl *Controller) Update(c *fiber.Ctx) error {
	// Retrieve validated request data
	reqData := c.Locals("validatedBatchUpdate").(*batchValidator.UpdateBatchRequest)

	// Apply only the fields that were sent
	batch, err := ctl.catalog.UpdateBatch(c.UserContext(), c.Locals("id").(uint), catalog.BatchPatch{
		Title:         reqData.Title,
		Description:   reqData.Description,
		CourseName:    reqData.CourseName,
		StartDate:     reqData.StartDate,
		BannerURL:     reqData.BannerURL,
		DurationDays:  reqData.DurationDays,
		Instructor:    reqData.Instructor,
		Price:         reqData.Price,
		Capacity:      reqData.Capacity,
		IsActive:      reqData.IsActive,
		WhatYouLearn:  reqData.WhatYouLearn,
		Prerequisites: reqData.Prerequisites,
		Benefits:      reqData.Benefits,
	})
	if err != nil {
		return middleware.ErrorResponse(c, err, nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Batch updated successfully!", batch)
}

func (ctl *Controller) Delete(c *fiber.Ctx) error {
	// Delete the batch, its tasks and their files
	report, err := ctl.catalog.DeleteBatch(c.UserContext(), c.Locals("id").(uint))
	if err != nil {
		return middleware.ErrorResponse(c, err, nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, deletedMessage("Batch", report), report)
}

func (ctl *Controller) AvailableDays(c *fiber.Ctx) error {
	days, err := ctl.catalog.AvailableDays(c.UserContext(), c.Locals("id").(uint))
	if err != nil {
		return middleware.ErrorResponse(c, err, nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Available days fetched successfully!", days)
}

func deletedMessage(what string, report *catalog.DeleteReport) string {
	if len(report.FailedBlobs) > 0 {
		return what + " deleted! Some files could not be removed and were queued for cleanup."
	}
	return what + " deleted successfully!"
}
