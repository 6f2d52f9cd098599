package business

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// OperatingHours maps lower-case day names to their schedule.
type OperatingHours struct {
	Enabled  bool                `json:"enabled"`
	Timezone string              `json:"timezone"`
	Hours    map[string]DayHours `json:"hours"`
}

// DayHours is either an open/close pair or a closed day. In JSON a closed day is
// written as the string "closed" or as {"open": "closed", ...}.
type DayHours struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

func (d *DayHours) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if !strings.EqualFold(strings.TrimSpace(s), "closed") {
			return fmt.Errorf("invalid day hours %q", s)
		}
		d.Open, d.Close = "closed", "closed"
		return nil
	}

	type plain DayHours
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*d = DayHours(p)
	return nil
}

func (d DayHours) Closed() bool {
	return strings.EqualFold(d.Open, "closed") || d.Open == ""
}

// String renders "Closed" or "open - close".
func (d DayHours) String() string {
	if d.Closed() {
		return "Closed"
	}
	return d.Open + " - " + d.Close
}

var weekOrder = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// Days returns the configured day keys, Monday first, unknown keys last in alphabetical order.
func (h *OperatingHours) Days() []string {
	if h == nil {
		return nil
	}
	days := make([]string, 0, len(h.Hours))
	seen := make(map[string]bool, len(h.Hours))
	for _, d := range weekOrder {
		if _, ok := h.Hours[d]; ok {
			days = append(days, d)
			seen[d] = true
		}
	}
	var rest []string
	for d := range h.Hours {
		if !seen[d] {
			rest = append(rest, d)
		}
	}
	sort.Strings(rest)
	return append(days, rest...)
}

// Location resolves the configured timezone, UTC when unset or unknown.
func (h *OperatingHours) Location() *time.Location {
	if h == nil || h.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(h.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Lines formats one "• Day: hours" line per configured day. When now is non-zero the
// line for the current weekday (in the business timezone) is suffixed with "(today)".
func (h *OperatingHours) Lines(now time.Time) []string {
	today := ""
	if !now.IsZero() {
		today = strings.ToLower(now.In(h.Location()).Weekday().String())
	}

	lines := make([]string, 0, len(h.Hours))
	for _, day := range h.Days() {
		line := fmt.Sprintf("• %s: %s", Capitalize(day), h.Hours[day])
		if day == today {
			line += " (today)"
		}
		lines = append(lines, line)
	}
	return lines
}

// MentionedDay returns the first weekday named in text, or "".
func MentionedDay(text string) string {
	lower := strings.ToLower(text)
	for _, d := range weekOrder {
		if strings.Contains(lower, d) {
			return d
		}
	}
	return ""
}

func Capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
