package enrollmentValidator

import (
	"coursetrack/validators/common"

	"github.com/gofiber/fiber/v2"
)

type EnrollRequest struct {
	BatchID uint `json:"batchId" validate:"required"`
}

// LookupQuery addresses one enrollment. UserID defaults to the caller.
type LookupQuery struct {
	UserID  uint `query:"userId"`
	BatchID uint `query:"batchId" validate:"required"`
}

type ListQuery struct {
	UserID  uint   `query:"userId"`
	BatchID uint   `query:"batchId"`
	Status  string `query:"status" validate:"omitempty,oneof=active completed withdrawn"`
}

func Enroll() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(EnrollRequest)
		if ok, err := common.Body(c, reqData); !ok {
			return err
		}
		c.Locals("validatedEnroll", reqData)
		return c.Next()
	}
}

func Lookup() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(LookupQuery)
		if ok, err := common.Query(c, reqData); !ok {
			return err
		}
		c.Locals("validatedLookup", reqData)
		return c.Next()
	}
}

func List() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ListQuery)
		if ok, err := common.Query(c, reqData); !ok {
			return err
		}
		c.Locals("validatedEnrollmentList", reqData)
		return c.Next()
	}
}

// BatchID validates the :batchId route parameter
func BatchID() fiber.Handler {
	return common.ID("batchId", "Batch")
}
