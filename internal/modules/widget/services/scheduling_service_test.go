package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/business"
	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/calendar"
	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/email"
)

type recordingProvider struct {
	sent []email.Message
	err  error
}

func (p *recordingProvider) Send(_ context.Context, msg email.Message) error {
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, msg)
	return nil
}

func (p *recordingProvider) GetProviderName() string { return "recording" }

func newScheduling(p email.Provider) *SchedulingService {
	b := testBusiness()
	b.Email = "front@acme.test"
	b.Branding.PrimaryColor = "#0ea5e9"

	cfg := calendar.DefaultConfig(time.Date(2024, 6, 5, 10, 0, 0, 0, time.UTC))
	cfg.Timezone = "UTC"
	var mailer *email.Service
	if p != nil {
		mailer = email.NewService(p)
	}
	s := NewSchedulingService(calendar.New(cfg), mailer, func() *business.Config { return b })
	s.now = func() time.Time { return time.Date(2024, 6, 5, 10, 0, 0, 0, time.UTC) }
	return s
}

var consultation = calendar.Event{
	Title:     "Consultation",
	Start:     time.Date(2024, 6, 6, 9, 0, 0, 0, time.UTC),
	End:       time.Date(2024, 6, 6, 9, 30, 0, 0, time.UTC),
	Location:  "Clinic",
	Attendees: []string{"visitor@example.com"},
}

func TestSchedulingService_BookSendsInvitation(t *testing.T) {
	p := &recordingProvider{}
	s := newScheduling(p)
	require.True(t, s.MailEnabled())

	booking, err := s.Book(context.Background(), consultation, "", true)
	require.NoError(t, err)
	assert.True(t, booking.Emailed)
	assert.Empty(t, booking.EmailError)
	assert.Contains(t, booking.ICS, "ORGANIZER;CN=Acme Dental:MAILTO:front@acme.test")
	assert.Contains(t, booking.Links["google"], "calendar.google.com")

	require.Len(t, p.sent, 1)
	msg := p.sent[0]
	assert.Equal(t, []string{"visitor@example.com"}, msg.To)
	assert.Equal(t, "Invitation: Consultation", msg.Subject)
	assert.Contains(t, msg.HTML, "Thu, 06 Jun 2024 09:00 - 09:30 UTC")
	assert.Contains(t, msg.HTML, "color: #0ea5e9")
	assert.Contains(t, msg.HTML, "Sent by Acme Dental")
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, booking.ICS, string(msg.Attachments[0].Content))
}

func TestSchedulingService_BookWithoutNotify(t *testing.T) {
	p := &recordingProvider{}
	booking, err := newScheduling(p).Book(context.Background(), consultation, calendar.MethodPublish, false)
	require.NoError(t, err)
	assert.False(t, booking.Emailed)
	assert.Contains(t, booking.ICS, "METHOD:PUBLISH")
	assert.Empty(t, p.sent)
}

func TestSchedulingService_DeliveryFailureKeepsBooking(t *testing.T) {
	booking, err := newScheduling(&recordingProvider{err: errors.New("quota exceeded")}).
		Book(context.Background(), consultation, "", true)
	require.NoError(t, err)
	assert.False(t, booking.Emailed)
	assert.Equal(t, "quota exceeded", booking.EmailError)

	booking, err = newScheduling(nil).Book(context.Background(), consultation, "", true)
	require.NoError(t, err)
	assert.Equal(t, email.ErrNotConfigured.Error(), booking.EmailError)
}

func TestSchedulingService_InvalidEvent(t *testing.T) {
	e := consultation
	e.End = e.Start.Add(-time.Hour)
	_, err := newScheduling(nil).Book(context.Background(), e, "", false)
	assert.ErrorIs(t, err, calendar.ErrInvalidEvent)
}
