// Package mail sends the transactional emails: password-reset codes,
// contact-us relays and welcome messages.
package mail

import (
	"bytes"
	"fmt"
	"html/template"

	gomail "gopkg.in/gomail.v2"
)

// Sender is the surface the services depend on; tests substitute a fake.
type Sender interface {
	SendWelcome(to, firstName string) error
	SendPasswordReset(to, firstName string, otp int) error
	SendContactUs(form ContactForm) error
}

// ContactForm carries the contact-us request to the service inbox.
type ContactForm struct {
	FirstName string
	LastName  string
	Email     string
	Subject   string
	Message   string
}

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// Inbox receives contact-us form relays.
	Inbox string
}

type Mailer struct {
	cfg Config
}

func New(cfg Config) *Mailer {
	return &Mailer{cfg: cfg}
}

func (m *Mailer) SendWelcome(to, firstName string) error {
	body, err := render(welcomeTemplate, map[string]interface{}{"FirstName": firstName})
	if err != nil {
		return err
	}
	return m.send(m.cfg.From, to, "Welcome to FindeRent!", body)
}

func (m *Mailer) SendPasswordReset(to, firstName string, otp int) error {
	body, err := render(resetTemplate, map[string]interface{}{"FirstName": firstName, "OTP": otp})
	if err != nil {
		return err
	}
	return m.send(m.cfg.From, to, "Your password reset code", body)
}

// SendContactUs relays the form to the service inbox; the sender address
// is the user's own email so replies reach them directly.
func (m *Mailer) SendContactUs(form ContactForm) error {
	body, err := render(contactTemplate, map[string]interface{}{
		"FirstName": form.FirstName,
		"LastName":  form.LastName,
		"Message":   form.Message,
	})
	if err != nil {
		return err
	}
	return m.send(form.Email, m.cfg.Inbox, form.Subject, body)
}

func (m *Mailer) send(from, to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	dialer := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)
	if err := dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("unable to send mail to %s: %w", to, err)
	}
	return nil
}

func render(tpl *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("unable to render mail template: %w", err)
	}
	return buf.String(), nil
}
