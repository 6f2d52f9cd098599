package refresh

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/business"
)

const (
	JobProfileRefresh = "profile-refresh"
	JobSessionCleanup = "session-cleanup"
	defaultJobTimeout = time.Minute
)

// ScheduleFor maps scrapingConfig.updateSchedule to a cron expression. Named
// schedules run at 03:00; anything else must already be a six-field expression.
// An empty schedule disables the job.
func ScheduleFor(updateSchedule string) (string, error) {
	switch s := strings.ToLower(strings.TrimSpace(updateSchedule)); s {
	case "":
		return "", nil
	case "daily":
		return "0 0 3 * * *", nil
	case "weekly":
		return "0 0 3 * * 1", nil
	case "monthly":
		return "0 0 3 1 * *", nil
	default:
		if len(strings.Fields(s)) != 6 {
			return "", fmt.Errorf("unsupported update schedule %q", updateSchedule)
		}
		return updateSchedule, nil
	}
}

// LoadFunc fetches the latest business profile.
type LoadFunc func(ctx context.Context) (*business.Config, error)

// Target receives a freshly loaded profile.
type Target interface {
	SetBusiness(b *business.Config)
}

// Refresher reloads the business profile and hands it to the chat pipeline.
type Refresher struct {
	load    LoadFunc
	target  Target
	timeout time.Duration

	mu      sync.Mutex
	lastRun time.Time
	lastErr error
}

func NewRefresher(load LoadFunc, target Target) *Refresher {
	return &Refresher{load: load, target: target, timeout: defaultJobTimeout}
}

// Run loads the profile once. On failure the current profile stays active.
func (r *Refresher) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	b, err := r.load(ctx)

	r.mu.Lock()
	r.lastRun = time.Now()
	r.lastErr = err
	r.mu.Unlock()

	if err != nil {
		log.Error().Err(err).Msg("business profile refresh failed")
		return fmt.Errorf("refresh business profile: %w", err)
	}
	r.target.SetBusiness(b)
	log.Info().Str("business_id", b.ID).Msg("business profile refreshed")
	return nil
}

// LastRun reports when Run last finished and with which error.
func (r *Refresher) LastRun() (time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastRun, r.lastErr
}

// Register schedules the refresh on s. An empty schedule registers nothing.
func (r *Refresher) Register(s *Scheduler, schedule string) error {
	expr, err := ScheduleFor(schedule)
	if err != nil || expr == "" {
		return err
	}
	return s.Add(JobProfileRefresh, expr, func() {
		_ = r.Run(context.Background())
	})
}
