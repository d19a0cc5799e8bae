// Package certificates issues per-recipient certificates and answers verification queries.
package certificates

import (
	"context"
	"coursetrack/apperr"
	"coursetrack/models"
	"coursetrack/storage"
	"coursetrack/utils"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrCertificateNotFound = apperr.NotFound("Certificate not found!")
	ErrBatchNotFound       = apperr.NotFound("Batch not found!")
	ErrNoRecipients        = apperr.Validation("At least one recipient is required!")
	ErrInvalidValidity     = apperr.Validation("Validity must be at least 1 day!")
	ErrIssuanceNotFound    = apperr.NotFound("No certificate found with this ID!")
)

const maxCodeAttempts = 3

type Service struct {
	db      *gorm.DB
	blobs   storage.BlobStore
	mailer  utils.Mailer
	now     func() time.Time
	newCode func() string
}

func New(db *gorm.DB, blobs storage.BlobStore, mailer utils.Mailer) *Service {
	return &Service{db: db, blobs: blobs, mailer: mailer, now: time.Now, newCode: NewCode}
}

// NewCode returns a fresh certificate identifier such as CERT-9F86D081884C7D65.
func NewCode() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "CERT-" + strings.ToUpper(hex[:16])
}

type CertificateInput struct {
	Title        string
	Description  string
	BatchID      uint
	TemplateURL  string
	ValidityDays int // 0 means the default
}

func (s *Service) CreateCertificate(ctx context.Context, in CertificateInput) (*models.Certificate, error) {
	db := s.db.WithContext(ctx)
	if in.ValidityDays == 0 {
		in.ValidityDays = models.DefaultValidityDays
	}
	if in.ValidityDays < 1 {
		return nil, ErrInvalidValidity
	}
	var batch models.Batch
	if err := db.First(&batch, in.BatchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBatchNotFound
		}
		return nil, apperr.Wrap(err, "Failed to fetch batch!")
	}

	cert := models.Certificate{
		Title:        in.Title,
		Description:  in.Description,
		BatchID:      batch.ID,
		TemplateURL:  in.TemplateURL,
		ValidityDays: in.ValidityDays,
		Issuances:    []models.CertificateIssuance{},
	}
	if err := db.Create(&cert).Error; err != nil {
		return nil, apperr.Wrap(err, "Failed to create certificate!")
	}
	cert.Batch = &batch
	return &cert, nil
}

func (s *Service) GetCertificate(ctx context.Context, id uint) (*models.Certificate, error) {
	return findCertificate(s.db.WithContext(ctx).Preload("Batch"), id)
}

func findCertificate(db *gorm.DB, id uint) (*models.Certificate, error) {
	var cert models.Certificate
	if err := db.Preload("Issuances", func(q *gorm.DB) *gorm.DB {
		return q.Order("issue_date asc, id asc")
	}).First(&cert, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCertificateNotFound
		}
		return nil, apperr.Wrap(err, "Failed to fetch certificate!")
	}
	return &cert, nil
}

// ListCertificates lists certificates newest first; batchID 0 lists all.
func (s *Service) ListCertificates(ctx context.Context, batchID uint) ([]models.Certificate, error) {
	q := s.db.WithContext(ctx).Model(&models.Certificate{}).Preload("Batch").Preload("Issuances")
	if batchID != 0 {
		q = q.Where("batch_id = ?", batchID)
	}
	var certs []models.Certificate
	if err := q.Order("created_at desc").Find(&certs).Error; err != nil {
		return nil, apperr.Wrap(err, "Failed to fetch certificates!")
	}
	return certs, nil
}

// DeleteCertificate removes the certificate with its issuances, then the template and every issued blob.
func (s *Service) DeleteCertificate(ctx context.Context, id uint) ([]storage.DeleteFailure, error) {
	db := s.db.WithContext(ctx)
	cert, err := findCertificate(db, id)
	if err != nil {
		return nil, err
	}

	refs := []string{cert.TemplateURL}
	for _, is := range cert.Issuances {
		refs = append(refs, is.CertificateURL)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("certificate_id = ?", id).Delete(&models.CertificateIssuance{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&models.Certificate{}, id).Error
	})
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to delete certificate!")
	}

	failed := storage.DeleteAll(ctx, s.blobs, refs)
	utils.QueueBlobCleanups(db, failed, fmt.Sprintf("certificate %d deleted", id))
	return failed, nil
}

type Recipient struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	CertificateURL string `json:"certificate_url"`
}

type IssuedItem struct {
	Index         int       `json:"index"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	CertificateID string    `json:"certificate_id"`
	IssueDate     time.Time `json:"issue_date"`
}

type IssueError struct {
	Index int    `json:"index"`
	Email string `json:"email"`
	Error string `json:"error"`
}

// IssueResult carries both outcomes of a batch issue, each keyed by recipient position.
type IssueResult struct {
	Issued []IssuedItem `json:"results"`
	Errors []IssueError `json:"errors"`
}

// IssueCertificates issues to every valid recipient. A bad recipient is reported in
// Errors without affecting the others; successes are persisted together.
func (s *Service) IssueCertificates(ctx context.Context, certificateID uint, recipients []Recipient) (*IssueResult, error) {
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}
	db := s.db.WithContext(ctx)
	cert, err := findCertificate(db, certificateID)
	if err != nil {
		return nil, err
	}

	taken := make(map[string]bool, len(cert.Issuances)+len(recipients))
	for _, is := range cert.Issuances {
		taken[normalizeEmail(is.Email)] = true
	}

	res := &IssueResult{Issued: []IssuedItem{}, Errors: []IssueError{}}
	var pending []pendingIssue
	now := s.now()

	for i, r := range recipients {
		email := normalizeEmail(r.Email)
		name := strings.TrimSpace(r.Name)
		url := strings.TrimSpace(r.CertificateURL)

		var missing []string
		if name == "" {
			missing = append(missing, "name")
		}
		if email == "" {
			missing = append(missing, "email")
		}
		if url == "" {
			missing = append(missing, "certificate_url")
		}
		if len(missing) > 0 {
			res.Errors = append(res.Errors, IssueError{Index: i, Email: r.Email, Error: "Missing required fields: " + strings.Join(missing, ", ")})
			continue
		}
		if taken[email] {
			res.Errors = append(res.Errors, IssueError{Index: i, Email: r.Email, Error: msgAlreadyIssued})
			continue
		}
		taken[email] = true

		pending = append(pending, pendingIssue{
			index: i,
			email: r.Email,
			row: models.CertificateIssuance{
				CertificateID:  cert.ID,
				Name:           name,
				Email:          email,
				CertificateURL: url,
				Code:           s.newCode(),
				IssueDate:      now,
			},
		})
	}

	saved, lost, err := s.persistIssuances(db, cert.ID, pending)
	if err != nil {
		return nil, err
	}
	for _, p := range lost {
		res.Errors = append(res.Errors, IssueError{Index: p.index, Email: p.email, Error: msgAlreadyIssued})
	}
	slices.SortFunc(res.Errors, func(a, b IssueError) int { return a.Index - b.Index })

	for _, p := range saved {
		res.Issued = append(res.Issued, IssuedItem{
			Index:         p.index,
			Email:         p.row.Email,
			Name:          p.row.Name,
			CertificateID: p.row.Code,
			IssueDate:     p.row.IssueDate,
		})
		utils.SendCertificateEmail(s.mailer, p.row.Email, p.row.Name, cert.Title, p.row.Code, p.row.CertificateURL)
	}
	log.Printf("[CERTIFICATE] certificate %d: issued %d, rejected %d", cert.ID, len(res.Issued), len(res.Errors))
	return res, nil
}

const msgAlreadyIssued = "Certificate already issued to this email!"

type pendingIssue struct {
	index int
	email string // as sent
	row   models.CertificateIssuance
}

// persistIssuances writes all issuances in one transaction. When the insert hits a
// unique index, recipients whose email was issued meanwhile by another call are set
// aside and returned as lost; otherwise the collision was on a code, which is regenerated.
func (s *Service) persistIssuances(db *gorm.DB, certificateID uint, pending []pendingIssue) ([]pendingIssue, []pendingIssue, error) {
	var lost []pendingIssue
	for attempt := 1; len(pending) > 0; {
		rows := make([]models.CertificateIssuance, len(pending))
		for i, p := range pending {
			rows[i] = p.row
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			return tx.Create(&rows).Error
		})
		if err == nil {
			for i := range pending {
				pending[i].row = rows[i]
			}
			return pending, lost, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, nil, apperr.Wrap(err, "Failed to issue certificates!")
		}

		emails := make([]string, len(pending))
		for i, p := range pending {
			emails[i] = p.row.Email
		}
		var issued []string
		if err := db.Model(&models.CertificateIssuance{}).
			Where("certificate_id = ? AND email IN ?", certificateID, emails).
			Pluck("email", &issued).Error; err != nil {
			return nil, nil, apperr.Wrap(err, "Failed to issue certificates!")
		}
		if len(issued) > 0 {
			kept := make([]pendingIssue, 0, len(pending))
			for _, p := range pending {
				if slices.Contains(issued, p.row.Email) {
					lost = append(lost, p)
				} else {
					kept = append(kept, p)
				}
			}
			pending = kept
			continue
		}

		if attempt >= maxCodeAttempts {
			return nil, nil, apperr.Wrap(err, "Failed to issue certificates!")
		}
		attempt++
		for i := range pending {
			pending[i].row.Code = s.newCode()
		}
	}
	return pending, lost, nil
}

// Verification is the public view of one issuance. Expiry is computed at read time.
type Verification struct {
	Valid            bool      `json:"valid"`
	Expired          bool      `json:"expired"`
	CertificateID    string    `json:"certificate_id"`
	RecipientName    string    `json:"recipient_name"`
	RecipientEmail   string    `json:"recipient_email"`
	CertificateTitle string    `json:"certificate_title"`
	BatchTitle       string    `json:"batch_title"`
	CourseName       string    `json:"course_name"`
	IssueDate        time.Time `json:"issue_date"`
	ExpiryDate       time.Time `json:"expiry_date"`
	CertificateURL   string    `json:"certificate_url"`
}

func (s *Service) VerifyCertificate(ctx context.Context, code string) (*Verification, error) {
	db := s.db.WithContext(ctx)
	code = strings.TrimSpace(code)

	var is models.CertificateIssuance
	if err := db.Where("code = ?", code).First(&is).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIssuanceNotFound
		}
		return nil, apperr.Wrap(err, "Failed to verify certificate!")
	}
	var cert models.Certificate
	if err := db.Preload("Batch").First(&cert, is.CertificateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIssuanceNotFound
		}
		return nil, apperr.Wrap(err, "Failed to verify certificate!")
	}

	expiry := is.ExpiryDate(cert.ValidityDays)
	valid := !s.now().After(expiry)
	v := &Verification{
		Valid:            valid,
		Expired:          !valid,
		CertificateID:    is.Code,
		RecipientName:    is.Name,
		RecipientEmail:   is.Email,
		CertificateTitle: cert.Title,
		IssueDate:        is.IssueDate,
		ExpiryDate:       expiry,
		CertificateURL:   is.CertificateURL,
	}
	if cert.Batch != nil {
		v.BatchTitle = cert.Batch.Title
		v.CourseName = cert.Batch.CourseName
	}
	return v, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
