package services

import (
	"fmt"
	"net/smtp"
	"os"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ses"
	"github.com/rs/zerolog/log"
)

// EmailService sends email through a per-workspace selected provider.
// Supported providers: "ses" (AWS SES), "smtp". Anything else, or a
// recognized provider with missing credentials, falls back to logging so
// automation flows never fail solely because messaging is not configured.
type EmailService struct {
	// AWS SES
	sesClient *ses.SES
	sesFrom   string

	// SMTP
	smtpHost     string
	smtpPort     string
	smtpUser     string
	smtpPassword string
	smtpFrom     string
}

// NewEmailService creates a new email service from environment configuration
func NewEmailService() *EmailService {
	s := &EmailService{}

	awsRegion := os.Getenv("AWS_REGION")
	awsAccessKey := os.Getenv("AWS_ACCESS_KEY_ID")
	awsSecretKey := os.Getenv("AWS_SECRET_ACCESS_KEY")
	sesFrom := os.Getenv("SES_FROM_EMAIL")

	if awsRegion != "" && awsAccessKey != "" && awsSecretKey != "" && sesFrom != "" {
		sess, err := session.NewSession(&aws.Config{
			Region:      aws.String(awsRegion),
			Credentials: credentials.NewStaticCredentials(awsAccessKey, awsSecretKey, ""),
		})
		if err != nil {
			log.Warn().Err(err).Msg("Failed to create AWS session, SES unavailable")
		} else {
			s.sesClient = ses.New(sess)
			s.sesFrom = sesFrom
		}
	}

	s.smtpHost = os.Getenv("SMTP_HOST")
	s.smtpPort = os.Getenv("SMTP_PORT")
	s.smtpUser = os.Getenv("SMTP_USER")
	s.smtpPassword = os.Getenv("SMTP_PASSWORD")
	s.smtpFrom = os.Getenv("FROM_EMAIL")

	return s
}

// Send sends a single email through the given provider
func (s *EmailService) Send(provider, to, subject, body string) SendResult {
	switch provider {
	case "ses":
		if s.sesClient != nil {
			return s.sendSES(to, subject, body)
		}
	case "smtp":
		if s.smtpHost != "" && s.smtpPort != "" && s.smtpFrom != "" {
			return s.sendSMTP(to, subject, body)
		}
	}
	return s.sendLog(to, subject, body)
}

func (s *EmailService) sendSES(to, subject, body string) SendResult {
	input := &ses.SendEmailInput{
		Source: aws.String(s.sesFrom),
		Destination: &ses.Destination{
			ToAddresses: []*string{aws.String(to)},
		},
		Message: &ses.Message{
			Subject: &ses.Content{
				Charset: aws.String("UTF-8"),
				Data:    aws.String(subject),
			},
			Body: &ses.Body{
				Html: &ses.Content{
					Charset: aws.String("UTF-8"),
					Data:    aws.String(body),
				},
			},
		},
	}

	output, err := s.sesClient.SendEmail(input)
	if err != nil {
		log.Error().Err(err).Str("to", to).Msg("SES send failed")
		return SendResult{Success: false, Provider: "ses", Error: err.Error()}
	}

	log.Info().Str("to", to).Str("message_id", aws.StringValue(output.MessageId)).Msg("SES email sent")
	return SendResult{Success: true, Provider: "ses", Detail: aws.StringValue(output.MessageId)}
}

func (s *EmailService) sendSMTP(to, subject, body string) SendResult {
	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.smtpFrom, to, subject, body,
	))

	addr := s.smtpHost + ":" + s.smtpPort
	var auth smtp.Auth
	if s.smtpUser != "" {
		auth = smtp.PlainAuth("", s.smtpUser, s.smtpPassword, s.smtpHost)
	}

	if err := smtp.SendMail(addr, auth, s.smtpFrom, []string{to}, msg); err != nil {
		log.Error().Err(err).Str("to", to).Msg("SMTP send failed")
		return SendResult{Success: false, Provider: "smtp", Error: err.Error()}
	}

	log.Info().Str("to", to).Msg("SMTP email sent")
	return SendResult{Success: true, Provider: "smtp"}
}

// sendLog is the fallback for unconfigured workspaces
func (s *EmailService) sendLog(to, subject, body string) SendResult {
	preview := body
	if len(preview) > 100 {
		preview = preview[:100]
	}
	log.Info().Str("to", to).Str("subject", subject).Str("body", preview).Msg("Email logged (no provider configured)")
	return SendResult{Success: true, Provider: "log", Detail: "email logged"}
}
