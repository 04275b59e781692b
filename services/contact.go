package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-backend/errs"
)

const resendEndpoint = "https://api.resend.com/emails"

// ResendEmailRequest represents the request payload for the Resend API
type ResendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

// ResendErrorResponse represents an error response from the Resend API
type ResendErrorResponse struct {
	Message string `json:"message"`
}

// ContactMessage is a visitor's message from the contact form.
type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// ContactResult tells the caller what happened to the message. When the
// mailer is unavailable or fails, Fallback carries a plain-text instruction
// so the visitor is never left with a silent failure.
type ContactResult struct {
	Sent      bool   `json:"sent"`
	MailtoURL string `json:"mailto_url"`
	Fallback  string `json:"fallback,omitempty"`
}

// ContactService turns contact-form submissions into email. It always
// produces a mailto URL for the platform composer; when Resend is configured
// it also delivers the message directly.
type ContactService struct {
	recipient string
	apiKey    string
	fromEmail string
	client    *http.Client
	logger    zerolog.Logger
}

func NewContactService(recipient, apiKey, fromEmail string) *ContactService {
	return &ContactService{
		recipient: recipient,
		apiKey:    apiKey,
		fromEmail: fromEmail,
		client:    &http.Client{Timeout: 15 * time.Second},
		logger:    log.With().Str("serviceName", "contactService").Logger(),
	}
}

// Submit validates and dispatches a contact message.
func (c *ContactService) Submit(ctx context.Context, msg ContactMessage) (ContactResult, error) {
	if strings.TrimSpace(msg.Message) == "" {
		return ContactResult{}, errs.NewMissingRequiredFieldError("message")
	}
	if c.recipient == "" {
		return ContactResult{}, errs.NewNotConfiguredError("contact")
	}

	sender := msg.Name
	if sender == "" {
		sender = msg.Email
	}
	if sender == "" {
		sender = "visitor"
	}

	subject := fmt.Sprintf("Portfolio contact from %s", sender)
	body := fmt.Sprintf("Name: %s\nEmail: %s\n\n%s",
		orPlaceholder(msg.Name, "(no name)"),
		orPlaceholder(msg.Email, "(no email)"),
		msg.Message,
	)

	result := ContactResult{
		MailtoURL: mailtoURL(c.recipient, subject, body),
	}

	if c.apiKey == "" || c.fromEmail == "" {
		result.Fallback = fmt.Sprintf("Unable to send automatically. Please email %s manually.", c.recipient)
		return result, nil
	}

	if err := c.send(ctx, subject, body); err != nil {
		c.logger.Error().Err(err).Msg("contact email delivery failed")
		result.Fallback = fmt.Sprintf("Unable to send automatically. Please email %s manually.", c.recipient)
		return result, nil
	}

	result.Sent = true
	return result, nil
}

func (c *ContactService) send(ctx context.Context, subject, body string) error {
	payload, err := json.Marshal(ResendEmailRequest{
		From:    c.fromEmail,
		To:      []string{c.recipient},
		Subject: subject,
		Text:    body,
	})
	if err != nil {
		return fmt.Errorf("marshal email request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, resendEndpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build email request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send email request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp ResendErrorResponse
		raw, _ := io.ReadAll(resp.Body)
		if unmarshalErr := json.Unmarshal(raw, &errResp); unmarshalErr == nil && errResp.Message != "" {
			return fmt.Errorf("resend returned %d: %s", resp.StatusCode, errResp.Message)
		}
		return fmt.Errorf("resend returned %d", resp.StatusCode)
	}
	return nil
}

// mailtoURL percent-encodes the subject and body for a mail composer link.
func mailtoURL(recipient, subject, body string) string {
	return fmt.Sprintf("mailto:%s?subject=%s&body=%s",
		recipient,
		escapeMailto(subject),
		escapeMailto(body),
	)
}

func escapeMailto(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func orPlaceholder(s, placeholder string) string {
	if s == "" {
		return placeholder
	}
	return s
}
