package batchValidator

import (
	"coursetrack/validators/common"
	"time"

	"github.com/gofiber/fiber/v2"
)

type CreateBatchRequest struct {
	Title         string     `json:"title" validate:"required,min=3"`
	Description   string     `json:"description"`
	CourseName    string     `json:"course_name" validate:"required"`
	StartDate     *time.Time `json:"start_date"`
	BannerURL     string     `json:"banner_url"`
	DurationDays  int        `json:"duration_days" validate:"required,min=1"`
	Instructor    string     `json:"instructor"`
	Price         float64    `json:"price" validate:"min=0"`
	Capacity      int        `json:"capacity" validate:"min=0"`
	IsActive      *bool      `json:"is_active"`
	WhatYouLearn  []string   `json:"what_you_learn"`
	Prerequisites []string   `json:"prerequisites"`
	Benefits      []string   `json:"benefits"`
}

// UpdateBatchRequest only carries the fields an administrator may change
type UpdateBatchRequest struct {
	Title         *string    `json:"title" validate:"omitempty,min=3"`
	Description   *string    `json:"description"`
	CourseName    *string    `json:"course_name" validate:"omitempty,min=1"`
	StartDate     *time.Time `json:"start_date"`
	BannerURL     *string    `json:"banner_url"`
	DurationDays  *int       `json:"duration_days" validate:"omitempty,min=1"`
	Instructor    *string    `json:"instructor"`
	Price         *float64   `json:"price" validate:"omitempty,min=0"`
	Capacity      *int       `json:"capacity" validate:"omitempty,min=0"`
	IsActive      *bool      `json:"is_active"`
	WhatYouLearn  *[]string  `json:"what_you_learn"`
	Prerequisites *[]string  `json:"prerequisites"`
	Benefits      *[]string  `json:"benefits"`
}

type ListBatchesQuery struct {
	Active bool `query:"active"`
}

func CreateBatch() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateBatchRequest)
		if ok, err := common.Body(c, reqData); !ok {
			return err
		}
		c.Locals("validatedBatch", reqData)
		return c.Next()
	}
}

func UpdateBatch() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(UpdateBatchRequest)
		if ok, err := common.Body(c, reqData); !ok {
			return err
		}
		c.Locals("validatedBatchUpdate", reqData)
		return c.Next()
	}
}

func ListBatches() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ListBatchesQuery)
		if ok, err := common.Query(c, reqData); !ok {
			return err
		}
		c.Locals("validatedBatchList", reqData)
		return c.Next()
	}
}

// BatchID validates the :id route parameter
func BatchID() fiber.Handler {
	return common.ID("id", "Batch")
}
