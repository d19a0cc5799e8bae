package certificateController

import (
	"coursetrack/middleware"
	"coursetrack/services/certificates"
	certificateValidator "coursetrack/validators/certificate"

	"github.com/gofiber/fiber/v2"
)

type Controller struct {
	certificates *certificates.Service
}

func New(svc *certificates.Service) *Controller {
	return &Controller{certificates: svc}
}

func (ctl *Controller) Create(c *fiber.Ctx) error {
	// Retrieve validated request data
	reqData := c.Locals("validatedCertificate").(*certificateValidator.CreateCertificateRequest)

	// Check the batch and save the certificate
	cert, err := ctl.certificates.CreateCertificate(c.UserContext(), certificates.CertificateInput{
		Title:        reqData.Title,
		Description:  reqData.Description,
		BatchID:      reqData.BatchID,
		TemplateURL:  reqData.TemplateURL,
		ValidityDays: reqData.ValidityDays,
	})
	if err != nil {
		return middleware.ErrorResponse(c, err, nil)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Certificate created successfully!", cert)
}

func (ctl *Controller) List(c *fiber.Ctx) error {
	reqData := c.Locals("validatedCertificateList").(*certificateValidator.ListQuery)

	certs, err := ctl.certificates.ListCertificates(c.UserContext(), reqData.BatchID)
	if err != nil {
		return middleware.ErrorResponse(c, err, nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates fetched successfully!", certs)
}

func (ctl *Controller) Get(c *fiber.Ctx) error {
	cert, err := ctl.certificates.GetCertificate(c.UserContext(), c.Locals("id").(uint))
	if err != nil {
		return middleware.ErrorResponse(c, err, nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate fetched successfully!", cert)
}

func (ctl *Controller) Delete(c *fiber.Ctx) error {
	id := c.Locals("id").(uint)

	// Delete the certificate and every issued file
	failed, err := ctl.certificates.DeleteCertificate(c.UserContext(), id)
	if err != nil {
		return middleware.ErrorResponse(c, err, nil)
	}
	message := "Certificate deleted successfully!"
	if len(failed) > 0 {
		message = "Certificate deleted! Some files could not be removed and were queued for cleanup."
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, fiber.Map{
		"id":           id,
		"failed_blobs": failed,
	})
}

// Issue reports per-recipient outcomes; partial success is still a 200
func (ctl *Controller) Issue(c *fiber.Ctx) error {
	reqData := c.Locals("validatedIssue").(*certificateValidator.IssueRequest)

	// Issue to each recipient, collecting failures
	result, err := ctl.certificates.IssueCertificates(c.UserContext(), reqData.CertificateID, reqData.Recipients)
	if err != nil {
		return middleware.ErrorResponse(c, err, nil)
	}
	// Pick the message from the outcome
	message := "Certificates issued successfully!"
	switch {
	case len(result.Issued) == 0:
		message = "No certificates were issued!"
	case len(result.Errors) > 0:
		message = "Some certificates could not be issued!"
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, result)
}

// Verify is public; an expired certificate is still found, with valid=false
func (ctl *Controller) Verify(c *fiber.Ctx) error {
	reqData := c.Locals("validatedVerify").(*certificateValidator.VerifyQuery)

	v, err := ctl.certificates.VerifyCertificate(c.UserContext(), reqData.ID)
	if err != nil {
		return middleware.ErrorResponse(c, err, nil)
	}
	message := "Certificate is valid!"
	if v.Expired {
		message = "Certificate has expired!"
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, v)
}
