package services

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/smtp"
	"strings"
)

// SMTPSender sends plain text email. Authentication is used when a user is set.
type SMTPSender struct {
	addr string
	from string
	auth smtp.Auth
}

func NewSMTPSender(host string, port int, user, pass, from string) *SMTPSender {
	host = strings.TrimSpace(host)
	s := &SMTPSender{
		addr: fmt.Sprintf("%s:%d", host, port),
		from: strings.TrimSpace(from),
	}
	if user != "" {
		s.auth = smtp.PlainAuth("", user, pass, host)
	}
	return s
}

func (s *SMTPSender) Channel(msg Message) string {
	if msg.Email == "" {
		return ""
	}
	return "email"
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if msg.Email == "" {
		return errors.New("message has no email recipient")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	raw := buildMessage(s.from, msg.Email, msg.Subject, msg.Body)
	if err := smtp.SendMail(s.addr, s.auth, s.from, []string{msg.Email}, []byte(raw)); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.Email, err)
	}
	return nil
}

func buildMessage(from, to, subject, body string) string {
	return fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		from,
		to,
		mime.QEncoding.Encode("utf-8", subject),
		body,
	)
}
