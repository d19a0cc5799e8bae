package uploadController

import (
	"coursetrack/middleware"
	"coursetrack/storage"
	"coursetrack/utils"

	"github.com/gofiber/fiber/v2"
)

type Controller struct {
	blobs storage.BlobStore
}

func New(blobs storage.BlobStore) *Controller {
	return &Controller{blobs: blobs}
}

func (ctl *Controller) Upload(c *fiber.Ctx) error {
	// Get the uploaded file
	file, err := c.FormFile("file")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "No file uploaded!", nil)
	}

	// Validate and store the file
	blob, err := utils.SaveUploadedFile(c.UserContext(), ctl.blobs, file)
	if err != nil {
		return middleware.ErrorResponse(c, err, nil)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "File uploaded successfully!", blob)
}
