package calendar

import (
	"fmt"
	"slices"
	"time"
)

const dateLayout = "2006-01-02"

// BusinessHours defines the bookable window of a working day.
type BusinessHours struct {
	Start    int `json:"start"`    // first hour, 9 for 9 AM
	End      int `json:"end"`      // exclusive, 17 for 5 PM
	Interval int `json:"interval"` // minutes between slots
}

// Config describes when meetings can be booked.
type Config struct {
	BusinessHours BusinessHours  `json:"businessHours"`
	WorkingDays   []time.Weekday `json:"workingDays"`
	Timezone      string         `json:"timezone"`
	MinDate       time.Time      `json:"minDate,omitempty"`
	MaxDate       time.Time      `json:"maxDate,omitempty"`
	WindowDays    int            `json:"windowDays,omitempty"` // bookable days ahead of today
	DisabledDates []string       `json:"disabledDates,omitempty"`
}

// DefaultConfig books Monday to Saturday, 9 to 17 in 30 minute slots, up to 60 days ahead.
func DefaultConfig(now time.Time) Config {
	return Config{
		BusinessHours: BusinessHours{Start: 9, End: 17, Interval: 30},
		WorkingDays:   []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday},
		Timezone:      "Asia/Dubai",
		MinDate:       now,
		MaxDate:       now.AddDate(0, 0, 60),
	}
}

func (c Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Day is one cell of a month grid.
type Day struct {
	Date           string `json:"date"`
	Day            int    `json:"day"`
	IsCurrentMonth bool   `json:"isCurrentMonth"`
	IsToday        bool   `json:"isToday"`
	IsSelected     bool   `json:"isSelected"`
	IsWeekend      bool   `json:"isWeekend"`
	IsPast         bool   `json:"isPast"`
	IsAvailable    bool   `json:"isAvailable"`
}

type Month struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	Days  []Day      `json:"days"`
}

// Calendar answers availability questions relative to an injected clock.
type Calendar struct {
	cfg Config
	loc *time.Location
	now func() time.Time
}

func New(cfg Config) *Calendar {
	if cfg.BusinessHours.Interval <= 0 {
		cfg.BusinessHours.Interval = 30
	}
	return &Calendar{cfg: cfg, loc: cfg.Location(), now: time.Now}
}

// WithClock replaces the clock used for "today".
func (c *Calendar) WithClock(now func() time.Time) *Calendar {
	c.now = now
	return c
}

func (c *Calendar) Config() Config { return c.cfg }

func (c *Calendar) Location() *time.Location { return c.loc }

func (c *Calendar) today() time.Time {
	return startOfDay(c.now().In(c.loc))
}

// IsDateAvailable reports whether meetings can be booked on date.
// Past days, Sundays, days outside [MinDate, MaxDate], non-working days and
// disabled dates are unavailable.
func (c *Calendar) IsDateAvailable(date time.Time) bool {
	day := startOfDay(date.In(c.loc))

	if day.Before(c.today()) {
		return false
	}
	if day.Weekday() == time.Sunday {
		return false
	}
	if !c.cfg.MinDate.IsZero() && day.Before(startOfDay(c.cfg.MinDate.In(c.loc))) {
		return false
	}
	if !c.cfg.MaxDate.IsZero() && day.After(c.cfg.MaxDate.In(c.loc)) {
		return false
	}
	if c.cfg.WindowDays > 0 && day.After(c.today().AddDate(0, 0, c.cfg.WindowDays)) {
		return false
	}
	if !slices.Contains(c.cfg.WorkingDays, day.Weekday()) {
		return false
	}
	return !slices.Contains(c.cfg.DisabledDates, day.Format(dateLayout))
}

// TimeSlots lists "HH:MM" start times for date, or nil when the date is unavailable.
func (c *Calendar) TimeSlots(date time.Time) []string {
	if !c.IsDateAvailable(date) {
		return nil
	}
	bh := c.cfg.BusinessHours
	var slots []string
	for hour := bh.Start; hour < bh.End; hour++ {
		for minute := 0; minute < 60; minute += bh.Interval {
			slots = append(slots, fmt.Sprintf("%02d:%02d", hour, minute))
		}
	}
	return slots
}

// AvailableDates returns up to n bookable dates starting today.
func (c *Calendar) AvailableDates(n int) []string {
	var out []string
	day := c.today()
	// bounded scan so a config with no working days terminates
	for i := 0; i < 366 && len(out) < n; i++ {
		if c.IsDateAvailable(day) {
			out = append(out, day.Format(dateLayout))
		}
		day = day.AddDate(0, 0, 1)
	}
	return out
}

// GenerateMonth builds the 6x7 grid shown by the date picker, starting on the Sunday
// on or before the first of the month.
func (c *Calendar) GenerateMonth(year int, month time.Month, selected time.Time) Month {
	first := time.Date(year, month, 1, 0, 0, 0, 0, c.loc)
	start := first.AddDate(0, 0, -int(first.Weekday()))
	today := c.today()

	days := make([]Day, 0, 42)
	for i := 0; i < 42; i++ {
		d := start.AddDate(0, 0, i)
		days = append(days, Day{
			Date:           d.Format(dateLayout),
			Day:            d.Day(),
			IsCurrentMonth: d.Month() == month,
			IsToday:        sameDay(d, today),
			IsSelected:     !selected.IsZero() && sameDay(d, selected.In(c.loc)),
			IsWeekend:      d.Weekday() == time.Sunday,
			IsPast:         d.Before(today),
			IsAvailable:    c.IsDateAvailable(d),
		})
	}
	return Month{Year: year, Month: month, Days: days}
}

// ParseDate reads a YYYY-MM-DD date in the calendar timezone.
func (c *Calendar) ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, s, c.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
