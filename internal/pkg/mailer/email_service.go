package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendDeadLetterAlert(toEmail string, noteId string, step string, attempts int, cause string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
}

func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	return &emailService{
		dialer:      gomail.NewDialer(host, port, username, password),
		senderEmail: senderEmail,
	}
}

// SendDeadLetterAlert notifies an operator that a note exhausted its retry
// budget and was parked back in draft with a processing error attached.
func (s *emailService) SendDeadLetterAlert(toEmail string, noteId string, step string, attempts int, cause string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("[Sigment] Note processing dead-lettered: %s", noteId))

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Note processing failed permanently</h2>
			<p>Note <code>%s</code> was returned to draft after %d attempts.</p>
			<p><strong>Failed step:</strong> %s</p>
			<p><strong>Last error:</strong> %s</p>
			<p>The note keeps its inspectable error payload; resubmitting it re-enters the pipeline.</p>
		</div>
	`, noteId, attempts, step, cause)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send dead-letter alert to %s: %w", toEmail, err)
	}
	return nil
}
