package calendar

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	MethodRequest = "REQUEST"
	MethodPublish = "PUBLISH"
	MethodCancel  = "CANCEL"

	icsStamp = "20060102T150405Z"
	prodID   = "-//Business Chat Widget//Meeting Scheduler//EN"
)

var ErrInvalidEvent = errors.New("invalid calendar event")

type Organizer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Event is a meeting to export as iCalendar or a provider link.
type Event struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Start       time.Time `json:"startDate"`
	End         time.Time `json:"endDate"`
	Location    string    `json:"location"`
	Attendees   []string  `json:"attendees"`
	Organizer   Organizer `json:"organizer"`
}

func (e Event) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidEvent)
	}
	if e.Start.IsZero() || e.End.IsZero() {
		return fmt.Errorf("%w: start and end are required", ErrInvalidEvent)
	}
	if !e.End.After(e.Start) {
		return fmt.Errorf("%w: end must be after start", ErrInvalidEvent)
	}
	return nil
}

// GenerateICS renders a single VEVENT calendar with CRLF line endings.
// An empty method defaults to REQUEST.
func GenerateICS(e Event, method string, now time.Time) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	switch method {
	case "":
		method = MethodRequest
	case MethodRequest, MethodPublish, MethodCancel:
	default:
		return "", fmt.Errorf("%w: unsupported method %q", ErrInvalidEvent, method)
	}

	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:" + prodID,
		"METHOD:" + method,
		"BEGIN:VEVENT",
		"UID:" + uuid.NewString() + "@business-chat-widget",
		"DTSTAMP:" + stamp(now),
		"DTSTART:" + stamp(e.Start),
		"DTEND:" + stamp(e.End),
		"SUMMARY:" + EscapeText(e.Title),
		"DESCRIPTION:" + EscapeText(e.Description),
		"LOCATION:" + EscapeText(e.Location),
	}
	if e.Organizer.Email != "" {
		lines = append(lines, fmt.Sprintf("ORGANIZER;CN=%s:MAILTO:%s", EscapeText(e.Organizer.Name), e.Organizer.Email))
	}
	for _, a := range e.Attendees {
		lines = append(lines, "ATTENDEE;ROLE=REQ-PARTICIPANT:MAILTO:"+a)
	}
	lines = append(lines,
		"STATUS:CONFIRMED",
		"TRANSP:OPAQUE",
		"END:VEVENT",
		"END:VCALENDAR",
	)
	return strings.Join(lines, "\r\n"), nil
}

var icsEscaper = strings.NewReplacer(
	`\`, `\\`,
	";", `\;`,
	",", `\,`,
	"\n", `\n`,
	"\r", "",
)

// EscapeText escapes a TEXT value per RFC 5545.
func EscapeText(s string) string {
	return icsEscaper.Replace(s)
}

// ProviderURLs returns "add to calendar" links for Google, Outlook and Yahoo.
func ProviderURLs(e Event) map[string]string {
	start, end := stamp(e.Start), stamp(e.End)

	google := url.Values{}
	google.Set("action", "TEMPLATE")
	google.Set("text", e.Title)
	google.Set("dates", start+"/"+end)
	google.Set("details", e.Description)
	google.Set("location", e.Location)

	outlook := url.Values{}
	outlook.Set("subject", e.Title)
	outlook.Set("startdt", e.Start.UTC().Format(time.RFC3339))
	outlook.Set("enddt", e.End.UTC().Format(time.RFC3339))
	outlook.Set("body", e.Description)
	outlook.Set("location", e.Location)

	yahoo := url.Values{}
	yahoo.Set("v", "60")
	yahoo.Set("title", e.Title)
	yahoo.Set("st", start)
	yahoo.Set("et", end)
	yahoo.Set("desc", e.Description)
	yahoo.Set("in_loc", e.Location)

	return map[string]string{
		"google":  "https://calendar.google.com/calendar/render?" + google.Encode(),
		"outlook": "https://outlook.live.com/calendar/0/deeplink/compose?" + outlook.Encode(),
		"yahoo":   "https://calendar.yahoo.com/?" + yahoo.Encode(),
	}
}

func stamp(t time.Time) string {
	return t.UTC().Format(icsStamp)
}
