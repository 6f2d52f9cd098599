package services

import (
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/business"
	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/calendar"
	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/email"
	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/shared/utils"
)

var inviteTemplate = template.Must(template.New("invite").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: {{.Color}};">{{.Event.Title}}</h2>
    <p><strong>When:</strong> {{.When}}</p>
    {{- if .Event.Location}}
    <p><strong>Where:</strong> {{.Event.Location}}</p>
    {{- end}}
    {{- if .Event.Description}}
    <p>{{.Event.Description}}</p>
    {{- end}}
    <p>The invitation is attached. You can also add it with one click:</p>
    <p>
      <a href="{{.Links.google}}">Google Calendar</a> |
      <a href="{{.Links.outlook}}">Outlook</a> |
      <a href="{{.Links.yahoo}}">Yahoo</a>
    </p>
    <p style="font-size: 12px; color: #666;">Sent by {{.Business}}</p>
  </div>
</body>
</html>`))

// Booking is the exported meeting plus the delivery outcome.
type Booking struct {
	ICS        string            `json:"ics"`
	Links      map[string]string `json:"links"`
	Emailed    bool              `json:"emailed"`
	EmailError string            `json:"email_error,omitempty"`
}

// SchedulingService exports meetings and mails invitations to attendees.
type SchedulingService struct {
	cal      *calendar.Calendar
	mailer   *email.Service
	business func() *business.Config
	now      func() time.Time
}

// NewSchedulingService accepts a nil mailer; bookings are then export-only.
func NewSchedulingService(cal *calendar.Calendar, mailer *email.Service, biz func() *business.Config) *SchedulingService {
	return &SchedulingService{cal: cal, mailer: mailer, business: biz, now: time.Now}
}

func (s *SchedulingService) Calendar() *calendar.Calendar {
	return s.cal
}

func (s *SchedulingService) MailEnabled() bool {
	return s.mailer.Enabled()
}

// Book generates the ICS and add-to-calendar links. With notify set, the
// invitation goes to every attendee; a delivery failure is reported on the
// booking rather than failing it.
func (s *SchedulingService) Book(ctx context.Context, e calendar.Event, method string, notify bool) (*Booking, error) {
	b := s.currentBusiness()
	if e.Organizer.Email == "" {
		e.Organizer = calendar.Organizer{Name: b.Name, Email: b.ContactEmail()}
	}

	ics, err := calendar.GenerateICS(e, method, s.now())
	if err != nil {
		return nil, err
	}
	booking := &Booking{ICS: ics, Links: calendar.ProviderURLs(e)}
	if !notify {
		return booking, nil
	}

	msg, err := s.invite(b, e, booking)
	if err == nil {
		err = s.mailer.Send(ctx, msg)
	}
	if err != nil {
		utils.LogWarn("meeting invitation not sent", map[string]interface{}{
			"title":     e.Title,
			"attendees": len(e.Attendees),
			"error":     err.Error(),
		})
		booking.EmailError = err.Error()
		return booking, nil
	}

	log.Info().Str("title", e.Title).Int("attendees", len(e.Attendees)).Str("provider", s.mailer.GetProviderName()).Msg("📧 Meeting invitation sent")
	booking.Emailed = true
	return booking, nil
}

func (s *SchedulingService) invite(b *business.Config, e calendar.Event, booking *Booking) (email.Message, error) {
	loc := time.UTC
	if s.cal != nil {
		loc = s.cal.Location()
	}

	color := b.Branding.PrimaryColor
	if color == "" {
		color = "#2563eb"
	}

	var html strings.Builder
	err := inviteTemplate.Execute(&html, map[string]interface{}{
		"Event":    e,
		"When":     fmt.Sprintf("%s - %s", e.Start.In(loc).Format("Mon, 02 Jan 2006 15:04"), e.End.In(loc).Format("15:04 MST")),
		"Links":    booking.Links,
		"Business": b.DisplayName("our team"),
		"Color":    template.CSS(color),
	})
	if err != nil {
		return email.Message{}, fmt.Errorf("render invitation: %w", err)
	}

	return email.Message{
		To:      e.Attendees,
		Subject: "Invitation: " + e.Title,
		HTML:    html.String(),
		Attachments: []email.Attachment{{
			Filename:    "invite.ics",
			ContentType: "text/calendar",
			Content:     []byte(booking.ICS),
		}},
	}, nil
}

func (s *SchedulingService) currentBusiness() *business.Config {
	if s.business != nil {
		if b := s.business(); b != nil {
			return b
		}
	}
	return &business.Config{}
}
