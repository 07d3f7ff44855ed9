package services

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/taskhive/taskhive/internal/config"
	"github.com/taskhive/taskhive/pkg/logger"
)

// EmailService sends invite emails over SMTP. When SMTP is disabled the
// invite link is logged instead, so invites stay usable without a mail
// server.
type EmailService struct {
	cfg *config.SMTPConfig
}

func NewEmailService(cfg *config.SMTPConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// SendInvite delivers the invite email for a pending invite.
func (s *EmailService) SendInvite(email, workspaceName, role, inviteURL string) error {
	if !s.cfg.Enabled || s.cfg.Host == "" {
		logger.Infof("[Email] SMTP disabled, invite link for %s: %s", email, inviteURL)
		return nil
	}

	subject := fmt.Sprintf("You've been invited to join %s on TaskHive", workspaceName)
	body := s.buildInviteBody(workspaceName, role, inviteURL)

	return s.send([]string{email}, subject, body)
}

func (s *EmailService) buildInviteBody(workspaceName, role, inviteURL string) string {
	var sb strings.Builder

	sb.WriteString("<html><body style=\"font-family: Arial, sans-serif;\">")
	sb.WriteString(fmt.Sprintf("<h2>Join %s on TaskHive</h2>", workspaceName))
	sb.WriteString(fmt.Sprintf("<p>You have been invited to join the workspace <b>%s</b> as a <b>%s</b>.</p>", workspaceName, role))
	sb.WriteString(fmt.Sprintf("<p><a href=\"%s\" style=\"display: inline-block; padding: 10px 20px; background: #4f46e5; color: #fff; border-radius: 4px; text-decoration: none;\">Accept invitation</a></p>", inviteURL))
	sb.WriteString(fmt.Sprintf("<p style=\"color: #888; font-size: 12px;\">Or open this link: %s</p>", inviteURL))
	sb.WriteString("<hr><p style=\"color: #888; font-size: 12px;\">If you were not expecting this invitation you can ignore this email.</p>")
	sb.WriteString("</body></html>")

	return sb.String()
}

func (s *EmailService) send(to []string, subject, body string) error {
	from := s.cfg.From
	if from == "" {
		from = s.cfg.Username
	}

	headers := map[string]string{
		"From":         from,
		"To":           strings.Join(to, ","),
		"Subject":      subject,
		"MIME-Version": "1.0",
		"Content-Type": "text/html; charset=UTF-8",
	}

	var message strings.Builder
	for k, v := range headers {
		message.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	message.WriteString("\r\n")
	message.WriteString(body)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var auth smtp.Auth
	if s.cfg.Username != "" && s.cfg.Password != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	var err error
	if s.cfg.UseTLS {
		err = s.sendTLS(addr, auth, from, to, message.String())
	} else {
		err = smtp.SendMail(addr, auth, from, to, []byte(message.String()))
	}

	if err != nil {
		logger.Infof("[Email] Failed to send email: %v", err)
		return err
	}

	logger.Infof("[Email] Sent invite to %v", to)
	return nil
}

func (s *EmailService) sendTLS(addr string, auth smtp.Auth, from string, to []string, message string) error {
	tlsConfig := &tls.Config{
		ServerName: s.cfg.Host,
	}

	conn, err := tls.Dial("tcp", addr, tlsConfig)
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return err
		}
	}

	if err := client.Mail(from); err != nil {
		return err
	}

	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}

	w, err := client.Data()
	if err != nil {
		return err
	}

	if _, err := w.Write([]byte(message)); err != nil {
		return err
	}

	return w.Close()
}
