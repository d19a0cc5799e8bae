package certificateValidator

import (
	"coursetrack/services/certificates"
	"coursetrack/validators/common"

	"github.com/gofiber/fiber/v2"
)

type CreateCertificateRequest struct {
	Title        string `json:"title" validate:"required"`
	Description  string `json:"description"`
	BatchID      uint   `json:"batch_id" validate:"required"`
	TemplateURL  string `json:"template_url"`
	ValidityDays int    `json:"validity_days" validate:"min=0"`
}

// IssueRequest recipients are checked one by one during issue so a bad
// entry does not reject the whole request.
type IssueRequest struct {
	CertificateID uint                     `json:"certificate_id" validate:"required"`
	Recipients    []certificates.Recipient `json:"recipients" validate:"required,min=1"`
}

type ListQuery struct {
	BatchID uint `query:"batchId"`
}

type VerifyQuery struct {
	ID string `query:"id" validate:"required"`
}

func CreateCertificate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateCertificateRequest)
		if ok, err := common.Body(c, reqData); !ok {
			return err
		}
		c.Locals("validatedCertificate", reqData)
		return c.Next()
	}
}

func Issue() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(IssueRequest)
		if ok, err := common.Body(c, reqData); !ok {
			return err
		}
		c.Locals("validatedIssue", reqData)
		return c.Next()
	}
}

func List() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ListQuery)
		if ok, err := common.Query(c, reqData); !ok {
			return err
		}
		c.Locals("validatedCertificateList", reqData)
		return c.Next()
	}
}

func Verify() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(VerifyQuery)
		if ok, err := common.Query(c, reqData); !ok {
			return err
		}
		c.Locals("validatedVerify", reqData)
		return c.Next()
	}
}

// CertificateID validates the :id route parameter
func CertificateID() fiber.Handler {
	return common.ID("id", "Certificate")
}
