package services

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// SMSService sends SMS through a per-workspace selected provider.
// Supported provider: "twilio". Anything else, or missing credentials,
// falls back to logging.
type SMSService struct {
	httpClient *http.Client

	twilioAccountSID string
	twilioAuthToken  string
	twilioFrom       string
}

// twilioMessageResponse is the subset of the Twilio API response we read
type twilioMessageResponse struct {
	SID          string `json:"sid"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
}

// NewSMSService creates a new SMS service from environment configuration
func NewSMSService() *SMSService {
	return &SMSService{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		twilioAccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		twilioAuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		twilioFrom:       os.Getenv("TWILIO_PHONE_NUMBER"),
	}
}

// Send sends a single SMS through the given provider
func (s *SMSService) Send(provider, to, body string) SendResult {
	if provider == "twilio" && s.twilioAccountSID != "" && s.twilioAuthToken != "" {
		return s.sendTwilio(to, body)
	}
	return s.sendLog(to, body)
}

func (s *SMSService) sendTwilio(to, body string) SendResult {
	endpoint := fmt.Sprintf("https://api.twilio.com/2010-04-01/Accounts/%s/Messages.json", s.twilioAccountSID)

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", s.twilioFrom)
	form.Set("Body", body)

	req, err := http.NewRequest("POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return SendResult{Success: false, Provider: "twilio", Error: err.Error()}
	}
	req.SetBasicAuth(s.twilioAccountSID, s.twilioAuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		log.Error().Err(err).Str("to", to).Msg("Twilio request failed")
		return SendResult{Success: false, Provider: "twilio", Error: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return SendResult{Success: false, Provider: "twilio", Error: err.Error()}
	}

	var message twilioMessageResponse
	if err := json.Unmarshal(respBody, &message); err != nil {
		return SendResult{Success: false, Provider: "twilio", Error: fmt.Sprintf("invalid response: %v", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errMsg := message.ErrorMessage
		if errMsg == "" {
			errMsg = fmt.Sprintf("twilio returned status %d", resp.StatusCode)
		}
		log.Error().Str("to", to).Str("error", errMsg).Msg("Twilio send rejected")
		return SendResult{Success: false, Provider: "twilio", Error: errMsg}
	}

	log.Info().Str("to", to).Str("sid", message.SID).Msg("Twilio SMS sent")
	return SendResult{Success: true, Provider: "twilio", Detail: message.SID}
}

// sendLog is the fallback for unconfigured workspaces
func (s *SMSService) sendLog(to, body string) SendResult {
	preview := body
	if len(preview) > 100 {
		preview = preview[:100]
	}
	log.Info().Str("to", to).Str("body", preview).Msg("SMS logged (no provider configured)")
	return SendResult{Success: true, Provider: "log", Detail: "sms logged"}
}
