package email

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const resendBaseURL = "https://api.resend.com"

// ResendProvider implements email sending via Resend
type ResendProvider struct {
	apiKey     string
	from       Sender
	baseURL    string
	httpClient *http.Client
}

func NewResendProvider(apiKey string, from Sender) *ResendProvider {
	return &ResendProvider{
		apiKey:     apiKey,
		from:       from,
		baseURL:    resendBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// WithBaseURL points the provider at another endpoint.
func (p *ResendProvider) WithBaseURL(url string) *ResendProvider {
	p.baseURL = url
	return p
}

type resendEmailRequest struct {
	From        string             `json:"from"`
	To          []string           `json:"to"`
	Subject     string             `json:"subject"`
	HTML        string             `json:"html,omitempty"`
	Attachments []resendAttachment `json:"attachments,omitempty"`
}

type resendAttachment struct {
	Filename    string `json:"filename"`
	Content     string `json:"content"`
	ContentType string `json:"content_type,omitempty"`
}

// Send sends an email via Resend API
func (p *ResendProvider) Send(ctx context.Context, msg Message) error {
	reqBody := resendEmailRequest{
		From:    p.from.String(),
		To:      msg.To,
		Subject: msg.Subject,
		HTML:    msg.HTML,
	}
	for _, a := range msg.Attachments {
		reqBody.Attachments = append(reqBody.Attachments, resendAttachment{
			Filename:    a.Filename,
			Content:     base64.StdEncoding.EncodeToString(a.Content),
			ContentType: a.ContentType,
		})
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/emails", bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("resend API error (status %d): %s", resp.StatusCode, string(body))
	}

	return nil
}

// GetProviderName returns the provider name
func (p *ResendProvider) GetProviderName() string {
	return "resend"
}
