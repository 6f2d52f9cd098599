package refresh

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/business"
)

type recordingTarget struct {
	got []*business.Config
}

func (r *recordingTarget) SetBusiness(b *business.Config) { r.got = append(r.got, b) }

func TestScheduleFor(t *testing.T) {
	cases := map[string]string{
		"":              "",
		"daily":         "0 0 3 * * *",
		"Weekly":        "0 0 3 * * 1",
		"monthly":       "0 0 3 1 * *",
		"0 */5 * * * *": "0 */5 * * * *",
	}
	for in, want := range cases {
		got, err := ScheduleFor(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ScheduleFor("hourly")
	assert.Error(t, err)
}

func TestRefresher_Run(t *testing.T) {
	target := &recordingTarget{}
	r := NewRefresher(func(context.Context) (*business.Config, error) {
		return &business.Config{ID: "acme", Name: "Acme"}, nil
	}, target)

	require.NoError(t, r.Run(context.Background()))
	require.Len(t, target.got, 1)
	assert.Equal(t, "acme", target.got[0].ID)

	last, err := r.LastRun()
	assert.False(t, last.IsZero())
	assert.NoError(t, err)
}

func TestRefresher_RunKeepsProfileOnFailure(t *testing.T) {
	target := &recordingTarget{}
	boom := errors.New("endpoint down")
	r := NewRefresher(func(context.Context) (*business.Config, error) { return nil, boom }, target)

	err := r.Run(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, target.got)

	_, lastErr := r.LastRun()
	assert.ErrorIs(t, lastErr, boom)
}

func TestRefresher_Register(t *testing.T) {
	s := NewScheduler()
	r := NewRefresher(func(context.Context) (*business.Config, error) { return &business.Config{}, nil }, &recordingTarget{})

	require.NoError(t, r.Register(s, ""))
	assert.Empty(t, s.Jobs())

	require.NoError(t, r.Register(s, "weekly"))
	assert.Equal(t, []string{JobProfileRefresh}, s.Jobs())

	// re-registering replaces the existing entry
	require.NoError(t, r.Register(s, "daily"))
	assert.Len(t, s.Jobs(), 1)

	require.NoError(t, s.Add(JobSessionCleanup, "0 */5 * * * *", func() {}))
	assert.Equal(t, []string{JobProfileRefresh, JobSessionCleanup}, s.Jobs())

	s.Remove(JobProfileRefresh)
	assert.Equal(t, []string{JobSessionCleanup}, s.Jobs())

	assert.Error(t, s.Add("bad", "not a cron", func() {}))
}
