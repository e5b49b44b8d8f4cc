// Package notify delivers the approval email to the winning bidder through
// the EmailJS HTTP API. Delivery is fire-and-forget: the caller's contract
// ends at persisting the status change, so failures are only logged.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"smarttender/internal/config"
)

// ApprovalEmail carries the template parameters for the winner email.
type ApprovalEmail struct {
	TenderID        string `json:"tender_id"`
	TenderTitle     string `json:"tender_title"`
	TenderType      string `json:"tender_type"`
	BidID           string `json:"bid_id"`
	BidderName      string `json:"bidder_name"`
	BidderEmail     string `json:"bidder_email"`
	BidAmount       string `json:"bid_amount"`
	EvaluationScore string `json:"evaluation_score"`
}

type EmailJSClient struct {
	cfg        config.EmailJSConfig
	httpClient *http.Client
}

func NewEmailJSClient(cfg config.EmailJSConfig) *EmailJSClient {
	return &EmailJSClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Enabled reports whether the client has enough configuration to send.
func (c *EmailJSClient) Enabled() bool {
	return c.cfg.ServiceID != "" && c.cfg.TemplateID != "" && c.cfg.UserID != ""
}

// SendApproval posts one templated email send request.
func (c *EmailJSClient) SendApproval(ctx context.Context, email ApprovalEmail) error {
	if !c.Enabled() {
		return fmt.Errorf("emailjs is not configured")
	}

	payload := map[string]interface{}{
		"service_id":      c.cfg.ServiceID,
		"template_id":     c.cfg.TemplateID,
		"user_id":         c.cfg.UserID,
		"template_params": email,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("emailjs returned %d: %s", resp.StatusCode, detail)
	}
	return nil
}
