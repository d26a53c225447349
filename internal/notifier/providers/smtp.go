package providers

import (
	"fmt"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"strings"
)

// SMTPSender sends report emails over SMTP.
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
	from     string
}

// NewSMTPSender creates a new SMTP sender
func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	return &SMTPSender{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

// Send delivers a multipart/alternative email with plain-text and HTML
// renderings of the report.
func (s *SMTPSender) Send(to, subject, htmlBody, plainBody string) error {
	msg, err := s.buildMessage(to, subject, htmlBody, plainBody)
	if err != nil {
		return fmt.Errorf("failed to build email: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	if err := smtp.SendMail(addr, auth, s.from, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// buildMessage assembles the RFC 5322 message. The plain part comes
// first so clients that honor part order prefer the HTML rendering.
func (s *SMTPSender) buildMessage(to, subject, htmlBody, plainBody string) ([]byte, error) {
	var body strings.Builder
	mw := multipart.NewWriter(&body)

	var headers strings.Builder
	headers.WriteString(fmt.Sprintf("From: adscope <%s>\r\n", s.from))
	headers.WriteString(fmt.Sprintf("To: %s\r\n", to))
	headers.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	headers.WriteString("MIME-Version: 1.0\r\n")
	headers.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=%q\r\n", mw.Boundary()))
	headers.WriteString("\r\n")

	plain, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type": {`text/plain; charset="utf-8"`},
	})
	if err != nil {
		return nil, err
	}
	if _, err := plain.Write([]byte(plainBody)); err != nil {
		return nil, err
	}

	html, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type": {`text/html; charset="utf-8"`},
	})
	if err != nil {
		return nil, err
	}
	if _, err := html.Write([]byte(htmlBody)); err != nil {
		return nil, err
	}

	if err := mw.Close(); err != nil {
		return nil, err
	}

	return []byte(headers.String() + body.String()), nil
}
