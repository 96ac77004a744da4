package services

import (
	"careops/pkg/models"
)

// SendResult is the outcome of one outbound message attempt. Sends are
// best-effort: a failed result is recorded, never retried, and never
// aborts the automation flow that requested it.
type SendResult struct {
	Success  bool   `json:"success"`
	Provider string `json:"provider"`
	Detail   string `json:"detail,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Messenger sends a single email or SMS using the workspace's configured
// provider. Implementations must degrade to a logged no-op when the
// workspace has no usable provider config.
type Messenger interface {
	SendEmail(workspace *models.Workspace, to, subject, body string) SendResult
	SendSMS(workspace *models.Workspace, to, body string) SendResult
}

// Gateway is the production Messenger backed by the email and SMS services
type Gateway struct {
	email *EmailService
	sms   *SMSService
}

// NewGateway creates a messaging gateway reading provider credentials from
// the environment
func NewGateway() *Gateway {
	return &Gateway{
		email: NewEmailService(),
		sms:   NewSMSService(),
	}
}

// SendEmail sends one email through the workspace's email provider
func (g *Gateway) SendEmail(workspace *models.Workspace, to, subject, body string) SendResult {
	return g.email.Send(workspace.EmailProvider, to, subject, body)
}

// SendSMS sends one SMS through the workspace's SMS provider
func (g *Gateway) SendSMS(workspace *models.Workspace, to, body string) SendResult {
	return g.sms.Send(workspace.SMSProvider, to, body)
}
