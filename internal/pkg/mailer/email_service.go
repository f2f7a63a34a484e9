package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendLeadNotification(toEmail, name, email, company, projectIdea string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
}

func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
	}
}

// SendLeadNotification mails a captured lead to the sales inbox.
func (s *emailService) SendLeadNotification(toEmail, name, email, company, projectIdea string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("New lead: %s (%s)", name, company))

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>New lead captured by the assistant</h2>
			<p><b>Name:</b> %s</p>
			<p><b>Email:</b> %s</p>
			<p><b>Company:</b> %s</p>
			<p><b>Project idea:</b></p>
			<p>%s</p>
		</div>
	`, name, email, company, projectIdea)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send lead notification to %s: %w", toEmail, err)
	}

	return nil
}
