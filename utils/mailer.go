package utils

import (
	"coursetrack/config"
	"fmt"
	"html"
	"log"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer delivers transactional HTML email
type Mailer interface {
	Send(toEmail, toName, subject, body string) error
}

// NewMailer returns a SendGrid mailer, or a log-only mailer when no API key is configured
func NewMailer(cfg *config.Config) Mailer {
	if cfg.SendgridAPIKey == "" || cfg.EmailSender == "" {
		return LogMailer{}
	}
	return &SendgridMailer{
		client: sendgrid.NewSendClient(cfg.SendgridAPIKey),
		from:   mail.NewEmail(cfg.EmailSenderName, cfg.EmailSender),
	}
}

type SendgridMailer struct {
	client *sendgrid.Client
	from   *mail.Email
}

func (m *SendgridMailer) Send(toEmail, toName, subject, body string) error {
	msg := mail.NewSingleEmail(m.from, subject, mail.NewEmail(toName, toEmail), "", body)
	resp, err := m.client.Send(msg)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// LogMailer only logs what would have been sent
type LogMailer struct{}

func (LogMailer) Send(toEmail, toName, subject, body string) error {
	log.Printf("[MAILER] (not sent) to=%s subject=%q", toEmail, subject)
	return nil
}

func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<body style="font-family: Arial, sans-serif; background-color: #f4f4f4; padding: 20px;">
		<div style="max-width: 600px; margin: auto; background-color: #ffffff; border-radius: 8px; padding: 30px;">
			<h2 style="color: #333333; text-align: center;">%s</h2>
			%s
		</div>
	</body>
	</html>
	`, title, bodyContent)
}

func sendAsync(m Mailer, toEmail, toName, subject, body string) {
	if m == nil {
		return
	}
	go func() {
		if err := m.Send(toEmail, toName, subject, body); err != nil {
			log.Printf("[MAILER] Error sending %q to %s: %v", subject, toEmail, err)
			return
		}
		log.Printf("[MAILER] Sent %q to %s", subject, toEmail)
	}()
}

// SendEnrollmentEmail notifies a user that the enrollment went through
func SendEnrollmentEmail(m Mailer, email, name, batchTitle string) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>You have successfully enrolled in <strong>%s</strong>.</p>
		<p>Complete each day's task to track your progress and earn your certificate.</p>
	`, html.EscapeString(name), html.EscapeString(batchTitle))
	sendAsync(m, email, name, "Enrollment Confirmation: "+batchTitle, getEmailTemplate("Enrollment Successful!", body))
}

// SendCertificateEmail notifies a recipient about an issued certificate
func SendCertificateEmail(m Mailer, email, name, certificateTitle, code, url string) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your certificate <strong>%s</strong> has been issued.</p>
		<p>Certificate ID: <strong>%s</strong></p>
		<p><a href="%s">Download your certificate</a></p>
	`, html.EscapeString(name), html.EscapeString(certificateTitle), html.EscapeString(code), html.EscapeString(url))
	sendAsync(m, email, name, "Certificate Issued: "+certificateTitle, getEmailTemplate("Certificate of Completion", body))
}
