package models

import (
	"time"

	"gorm.io/gorm"
)

const DefaultValidityDays = 365

// Certificate is the template for a batch; recipients are stored as issuances.
type Certificate struct {
	gorm.Model
	Title        string `json:"title" gorm:"not null"`
	Description  string `json:"description" gorm:"type:text"`
	BatchID      uint   `json:"batch_id" gorm:"not null;index"`
	TemplateURL  string `json:"template_url"`
	ValidityDays int    `json:"validity_days" gorm:"not null"`

	Issuances []CertificateIssuance `json:"issued_to" gorm:"foreignKey:CertificateID"`
	Batch     *Batch                `json:"batch,omitempty" gorm:"foreignKey:BatchID"`
}

// CertificateIssuance is one recipient's instance of a certificate.
// Code is unique across the system, Email is unique per certificate.
type CertificateIssuance struct {
	ID             uint      `json:"id" gorm:"primarykey"`
	CertificateID  uint      `json:"-" gorm:"not null;uniqueIndex:idx_issuance_certificate_email"`
	Name           string    `json:"name" gorm:"not null"`
	Email          string    `json:"email" gorm:"size:255;not null;uniqueIndex:idx_issuance_certificate_email"`
	CertificateURL string    `json:"certificate_url"`
	Code           string    `json:"certificate_id" gorm:"size:32;not null;uniqueIndex"`
	IssueDate      time.Time `json:"issue_date"`
	CreatedAt      time.Time `json:"created_at"`
}

// ExpiryDate is computed, never stored.
func (i *CertificateIssuance) ExpiryDate(validityDays int) time.Time {
	return i.IssueDate.AddDate(0, 0, validityDays)
}
