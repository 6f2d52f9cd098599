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

const brevoBaseURL = "https://api.brevo.com"

// BrevoProvider implements email sending via Brevo (formerly Sendinblue)
type BrevoProvider struct {
	apiKey     string
	from       Sender
	baseURL    string
	httpClient *http.Client
}

func NewBrevoProvider(apiKey string, from Sender) *BrevoProvider {
	return &BrevoProvider{
		apiKey:     apiKey,
		from:       from,
		baseURL:    brevoBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// WithBaseURL points the provider at another endpoint.
func (p *BrevoProvider) WithBaseURL(url string) *BrevoProvider {
	p.baseURL = url
	return p
}

type brevoEmailRequest struct {
	Sender      brevoContact      `json:"sender"`
	To          []brevoContact    `json:"to"`
	Subject     string            `json:"subject"`
	HTMLContent string            `json:"htmlContent,omitempty"`
	Attachment  []brevoAttachment `json:"attachment,omitempty"`
}

type brevoContact struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type brevoAttachment struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Send sends an email via Brevo API
func (p *BrevoProvider) Send(ctx context.Context, msg Message) error {
	reqBody := brevoEmailRequest{
		Sender: brevoContact{
			Email: p.from.Email,
			Name:  p.from.Name,
		},
		Subject:     msg.Subject,
		HTMLContent: msg.HTML,
	}
	for _, addr := range msg.To {
		reqBody.To = append(reqBody.To, brevoContact{Email: addr})
	}
	for _, a := range msg.Attachments {
		reqBody.Attachment = append(reqBody.Attachment, brevoAttachment{
			Name:    a.Filename,
			Content: base64.StdEncoding.EncodeToString(a.Content),
		})
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v3/smtp/email", bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("brevo API error (status %d): %s", resp.StatusCode, string(body))
	}

	return nil
}

// GetProviderName returns the provider name
func (p *BrevoProvider) GetProviderName() string {
	return "brevo"
}
