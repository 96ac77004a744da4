package services

import (
	"testing"

	"careops/pkg/models"
)

func TestEmailSendFallsBackToLog(t *testing.T) {
	t.Setenv("AWS_REGION", "")
	t.Setenv("SMTP_HOST", "")

	service := NewEmailService()

	tests := []struct {
		provider string
	}{
		{""},
		{"ses"},  // recognized but unconfigured
		{"smtp"}, // recognized but unconfigured
		{"carrier-pigeon"},
	}

	for _, test := range tests {
		result := service.Send(test.provider, "dana@example.test", "Hello", "Body")
		if !result.Success {
			t.Errorf("provider %q: fallback send should succeed", test.provider)
		}
		if result.Provider != "log" {
			t.Errorf("provider %q: result provider = %q, want log", test.provider, result.Provider)
		}
	}
}

func TestSMSSendFallsBackToLog(t *testing.T) {
	t.Setenv("TWILIO_ACCOUNT_SID", "")

	service := NewSMSService()

	result := service.Send("", "+15550100", "Hello")
	if !result.Success || result.Provider != "log" {
		t.Errorf("unconfigured SMS should log, got %+v", result)
	}
}

func TestGatewayRoutesByWorkspaceProvider(t *testing.T) {
	t.Setenv("AWS_REGION", "")
	t.Setenv("SMTP_HOST", "")
	t.Setenv("TWILIO_ACCOUNT_SID", "")

	gateway := NewGateway()
	workspace := &models.Workspace{
		Name:          "Riverside Clinic",
		EmailProvider: "smtp",
		SMSProvider:   "twilio",
	}

	if result := gateway.SendEmail(workspace, "dana@example.test", "Hello", "Body"); !result.Success {
		t.Errorf("gateway email send failed: %+v", result)
	}
	if result := gateway.SendSMS(workspace, "+15550100", "Hello"); result.Provider != "log" {
		t.Errorf("unconfigured twilio should fall back to log, got %+v", result)
	}
}
