package refresh

import (
	"fmt"
	"sort"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler runs named background jobs on cron expressions with a seconds field.
type Scheduler struct {
	cron    *cron.Cron
	jobs    map[string]cron.EntryID // job name -> entry id
	jobsMux sync.RWMutex
}

// NewScheduler creates a new scheduler
func NewScheduler() *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithSeconds()),
		jobs: make(map[string]cron.EntryID),
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
	log.Info().Int("jobs", len(s.Jobs())).Msg("scheduler started")
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// Add registers job under name, replacing any job already scheduled with that name.
// schedule is a six-field cron expression, e.g. "0 0 3 * * *" for daily at 03:00.
func (s *Scheduler) Add(name, schedule string, job func()) error {
	s.jobsMux.Lock()
	defer s.jobsMux.Unlock()

	if entryID, exists := s.jobs[name]; exists {
		s.cron.Remove(entryID)
		delete(s.jobs, name)
	}

	entryID, err := s.cron.AddFunc(schedule, job)
	if err != nil {
		return fmt.Errorf("failed to add cron job %s: %w", name, err)
	}

	s.jobs[name] = entryID
	log.Info().Str("job", name).Str("schedule", schedule).Msg("job scheduled")
	return nil
}

func (s *Scheduler) Remove(name string) {
	s.jobsMux.Lock()
	defer s.jobsMux.Unlock()

	if entryID, exists := s.jobs[name]; exists {
		s.cron.Remove(entryID)
		delete(s.jobs, name)
		log.Info().Str("job", name).Msg("job removed")
	}
}

// Jobs returns the scheduled job names, sorted.
func (s *Scheduler) Jobs() []string {
	s.jobsMux.RLock()
	defer s.jobsMux.RUnlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
