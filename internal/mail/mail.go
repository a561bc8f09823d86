package mail

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

var ErrNotConfigured = errors.New("mail: SMTP is not configured")

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type Mailer struct {
	FromName string
	From     string
	Host     string
	Port     string
	auth     smtp.Auth
	send     sendFunc
}

func NewMail(from, fromName, user, password, host, port string) *Mailer {
	var auth smtp.Auth
	if user != "" {
		auth = smtp.PlainAuth("", user, password, host)
	}
	return &Mailer{
		FromName: fromName,
		From:     from,
		Host:     host,
		Port:     port,
		auth:     auth,
		send:     smtp.SendMail,
	}
}

// Render executes the named template from templates/ with HTML escaping.
func Render(templateName string, data interface{}) ([]byte, error) {
	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, templateName, data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	return body.Bytes(), nil
}

// SendHTML renders templateName and mails it to to. replyTo may be empty.
func (m *Mailer) SendHTML(to, replyTo, subject, templateName string, data interface{}) error {
	if m.Host == "" || m.From == "" || to == "" {
		return ErrNotConfigured
	}

	html, err := Render(templateName, data)
	if err != nil {
		return err
	}

	var body bytes.Buffer
	body.WriteString("MIME-Version: 1.0\r\n")
	body.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	body.WriteString(fmt.Sprintf("From: %s <%s>\r\n", headerValue(m.FromName), m.From))
	body.WriteString(fmt.Sprintf("To: %s\r\n", headerValue(to)))
	if replyTo != "" {
		body.WriteString(fmt.Sprintf("Reply-To: %s\r\n", headerValue(replyTo)))
	}
	body.WriteString(fmt.Sprintf("Subject: %s\r\n\r\n", headerValue(subject)))
	body.Write(html)

	addr := fmt.Sprintf("%s:%s", m.Host, m.Port)
	if err := m.send(addr, m.auth, m.From, []string{to}, body.Bytes()); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}

// headerValue keeps user input from starting a new header line.
func headerValue(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
