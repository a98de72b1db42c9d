package notification

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"

	"go.uber.org/zap"
)

// InvitationEmail carries everything needed to render and deliver a
// project invitation.
type InvitationEmail struct {
	To             string
	ProjectID      string
	ProjectTitle   string
	InviterEmail   string
	Role           string
	CollaboratorID string
}

// Sender delivers invitation emails.
type Sender interface {
	SendInvitation(ctx context.Context, email InvitationEmail) error
}

// SMTPConfig holds SMTP delivery settings.
type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromAddress string
	// BaseURL is the web app origin used to build accept links.
	BaseURL string
}

const invitationSubject = "You've been invited to collaborate"

var invitationTemplate = template.Must(template.New("invitation").Parse(`<html>
<body>
  <h2>Project invitation</h2>
  <p>{{.InviterEmail}} has invited you to join <strong>{{.ProjectTitle}}</strong> as {{.Role}}.</p>
  <p><a href="{{.AcceptURL}}">Accept invitation</a></p>
  <p>If you don't recognize this project you can ignore this email.</p>
</body>
</html>`))

// SMTPEmailSender delivers invitation emails over SMTP.
type SMTPEmailSender struct {
	config SMTPConfig
	logger *zap.Logger
}

// NewSMTPEmailSender creates a new SMTP sender.
func NewSMTPEmailSender(config SMTPConfig, logger *zap.Logger) *SMTPEmailSender {
	return &SMTPEmailSender{config: config, logger: logger}
}

// SendInvitation renders the invitation template and delivers it.
func (s *SMTPEmailSender) SendInvitation(ctx context.Context, email InvitationEmail) error {
	acceptURL := fmt.Sprintf("%s/accept-invitation?id=%s&projectId=%s",
		s.config.BaseURL, email.CollaboratorID, email.ProjectID)

	var body bytes.Buffer
	data := struct {
		InvitationEmail
		AcceptURL string
	}{InvitationEmail: email, AcceptURL: acceptURL}

	if err := invitationTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("render invitation email: %w", err)
	}

	msg := bytes.Buffer{}
	fmt.Fprintf(&msg, "From: %s\r\n", s.config.FromAddress)
	fmt.Fprintf(&msg, "To: %s\r\n", email.To)
	fmt.Fprintf(&msg, "Subject: %s\r\n", invitationSubject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.Write(body.Bytes())

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	var auth smtp.Auth
	if s.config.Username != "" {
		auth = smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	}

	if err := smtp.SendMail(addr, auth, s.config.FromAddress, []string{email.To}, msg.Bytes()); err != nil {
		s.logger.Error("failed to send invitation email",
			zap.String("to", email.To),
			zap.String("project_id", email.ProjectID),
			zap.Error(err),
		)
		return fmt.Errorf("send invitation email: %w", err)
	}

	s.logger.Info("invitation email sent",
		zap.String("to", email.To),
		zap.String("project_id", email.ProjectID),
	)

	return nil
}

// NoOpEmailSender logs invitations instead of delivering them. Used in
// development when no SMTP host is configured.
type NoOpEmailSender struct {
	logger *zap.Logger
}

// NewNoOpEmailSender creates a sender that only logs.
func NewNoOpEmailSender(logger *zap.Logger) *NoOpEmailSender {
	return &NoOpEmailSender{logger: logger}
}

// SendInvitation logs the invitation and succeeds.
func (s *NoOpEmailSender) SendInvitation(ctx context.Context, email InvitationEmail) error {
	s.logger.Info("invitation email suppressed (no SMTP host configured)",
		zap.String("to", email.To),
		zap.String("project_id", email.ProjectID),
		zap.String("role", email.Role),
	)
	return nil
}
