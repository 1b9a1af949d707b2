package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"streaming-api/internal/config"
	"streaming-api/internal/models"
	"streaming-api/pkg/logging"
)

const brevoSendEndpoint = "https://api.brevo.com/v3/smtp/email"

// PaymentMailer sends payment-failure notices through Brevo's transactional
// email API. Delivery is best effort: the reconciler calls NotifyPaymentFailed
// in a goroutine and failures are only logged.
type PaymentMailer struct {
	apiKey     string
	fromEmail  string
	fromName   string
	endpoint   string
	httpClient *http.Client
}

// NewPaymentMailer creates a mailer from the application configuration.
// Returns nil when no API key is configured, which disables notifications.
func NewPaymentMailer() *PaymentMailer {
	if config.AppConfig.BrevoAPIKey == "" {
		return nil
	}
	return &PaymentMailer{
		apiKey:    config.AppConfig.BrevoAPIKey,
		fromEmail: config.AppConfig.BrevoFromEmail,
		fromName:  config.AppConfig.ServiceName,
		endpoint:  brevoSendEndpoint,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// emailRequest represents Brevo email request structure
type emailRequest struct {
	Sender      emailAddress   `json:"sender"`
	To          []emailAddress `json:"to"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
	TextContent string         `json:"textContent"`
}

type emailAddress struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

// NotifyPaymentFailed emails the user that a subscription payment failed.
func (m *PaymentMailer) NotifyPaymentFailed(user *models.User, record *models.PaymentRecord) {
	amount := float64(record.Amount) / 100
	subject := fmt.Sprintf("Payment failed - %s", m.fromName)

	textContent := fmt.Sprintf(
		"Hi %s,\n\nYour subscription payment of %.2f %s could not be processed. "+
			"Please update your payment method to keep your access uninterrupted.\n\n%s",
		user.FullName, amount, record.Currency, m.fromName)

	htmlContent := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
			<h2 style="color: #333;">Payment failed</h2>
			<p>Hi %s,</p>
			<p>Your subscription payment of <strong>%.2f %s</strong> could not be processed.</p>
			<p>Please update your payment method to keep your access uninterrupted.</p>
			<p style="color: #999; font-size: 12px; margin-top: 30px;">%s</p>
		</div>
	`, user.FullName, amount, record.Currency, m.fromName)

	req := emailRequest{
		Sender:      emailAddress{Name: m.fromName, Email: m.fromEmail},
		To:          []emailAddress{{Name: user.FullName, Email: user.Email}},
		Subject:     subject,
		HTMLContent: htmlContent,
		TextContent: textContent,
	}

	if err := m.send(req); err != nil {
		logging.Errorf("Failed to send payment failure email - user: %d, payment: %s, error: %v",
			user.ID, record.ExternalPaymentID, err)
		return
	}

	logging.Infof("Payment failure email sent - user: %d, payment: %s", user.ID, record.ExternalPaymentID)
}

func (m *PaymentMailer) send(email emailRequest) error {
	payload, err := json.Marshal(email)
	if err != nil {
		return fmt.Errorf("failed to marshal email request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, m.endpoint, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", m.apiKey)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return nil
}
