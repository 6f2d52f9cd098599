package email

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotConfigured = errors.New("no email provider configured")
	ErrNoRecipients  = errors.New("email has no recipients")
)

// Attachment is a file sent with the message. Content holds the raw bytes;
// providers encode it for the wire.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Message is a single outgoing HTML email.
type Message struct {
	To          []string
	Subject     string
	HTML        string
	Attachments []Attachment
}

// Provider defines the interface for email providers
type Provider interface {
	Send(ctx context.Context, msg Message) error
	GetProviderName() string
}

// Sender identifies the From address used by every provider.
type Sender struct {
	Email string
	Name  string
}

// String renders "Name <email>" or just the address.
func (s Sender) String() string {
	if s.Name == "" {
		return s.Email
	}
	return fmt.Sprintf("%s <%s>", s.Name, s.Email)
}

// NewProvider picks a provider by name. It returns nil when the chosen
// provider has no API key, which leaves email delivery disabled.
func NewProvider(name, resendKey, brevoKey string, from Sender) Provider {
	switch strings.ToLower(name) {
	case "brevo":
		if brevoKey == "" {
			return nil
		}
		return NewBrevoProvider(brevoKey, from)
	default:
		if resendKey == "" {
			return nil
		}
		return NewResendProvider(resendKey, from)
	}
}

// Service wraps the email provider
type Service struct {
	provider Provider
}

// NewService accepts a nil provider.
func NewService(provider Provider) *Service {
	return &Service{
		provider: provider,
	}
}

func (s *Service) Enabled() bool {
	return s != nil && s.provider != nil
}

// Send drops blank recipients and rejects a message with none left.
func (s *Service) Send(ctx context.Context, msg Message) error {
	if !s.Enabled() {
		return ErrNotConfigured
	}
	to := msg.To[:0:0]
	for _, addr := range msg.To {
		if addr = strings.TrimSpace(addr); addr != "" {
			to = append(to, addr)
		}
	}
	if len(to) == 0 {
		return ErrNoRecipients
	}
	msg.To = to
	return s.provider.Send(ctx, msg)
}

// GetProviderName returns the name of the current provider
func (s *Service) GetProviderName() string {
	if !s.Enabled() {
		return "none"
	}
	return s.provider.GetProviderName()
}
