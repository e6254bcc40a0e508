package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"gosovereign-backend/internal/config"
	apperrors "gosovereign-backend/internal/errors"
	"gosovereign-backend/internal/logger"
)

const resendBaseURL = "https://api.resend.com"

// StoreLiveEmail is the post-deploy notification sent to the store owner
type StoreLiveEmail struct {
	To            string
	StoreName     string
	StoreURL      string
	AdminEmail    string
	AdminPassword string
	ResetURL      string
}

// EmailService sends transactional email through the Resend API
type EmailService struct {
	apiKey     string
	fromEmail  string
	baseURL    string
	httpClient *http.Client
}

// NewEmailService creates a new email service
func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{
		apiKey:     cfg.ResendAPIKey,
		fromEmail:  cfg.FromEmail,
		baseURL:    resendBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type resendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// SendStoreLiveEmail emails the owner that their store is live, with the
// storefront URL, admin credentials and a password reset link. Skipped with a
// warning when no email API key is configured, so deployments never depend on
// the mail provider.
func (s *EmailService) SendStoreLiveEmail(ctx context.Context, req StoreLiveEmail) error {
	log := logger.WithContext(ctx).WithField("to", req.To)

	if s.apiKey == "" {
		log.Warn("RESEND_API_KEY not set, skipping store live email")
		return nil
	}

	body := resendEmailRequest{
		From:    s.fromEmail,
		To:      []string{req.To},
		Subject: fmt.Sprintf("%s is live!", req.StoreName),
		HTML:    storeLiveHTML(req),
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal email request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/emails", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		log.Errorf("Email API request failed: status=%d body=%s", resp.StatusCode, string(raw))
		return &apperrors.ProviderError{
			Stage:   "email_send",
			Message: "email provider request failed (email_send)",
			Detail:  string(raw),
		}
	}

	log.Info("Store live email sent")
	return nil
}

func storeLiveHTML(req StoreLiveEmail) string {
	return fmt.Sprintf(`<h1>%s is live!</h1>
<p>Your store is now online at <a href="%s">%s</a>.</p>
<p>Sign in to your store admin with:</p>
<ul>
  <li>Email: %s</li>
  <li>Temporary password: <code>%s</code></li>
</ul>
<p><a href="%s">Set your own password</a> (link valid for 24 hours).</p>`,
		req.StoreName, req.StoreURL, req.StoreURL,
		req.AdminEmail, req.AdminPassword, req.ResetURL)
}
