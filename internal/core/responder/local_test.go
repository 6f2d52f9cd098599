package responder

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/business"
	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/llm"
)

func salon() *business.Config {
	hours := map[string]business.DayHours{
		"monday":    {Open: "09:00", Close: "18:00"},
		"tuesday":   {Open: "09:00", Close: "18:00"},
		"wednesday": {Open: "09:00", Close: "18:00"},
		"thursday":  {Open: "09:00", Close: "20:00"},
		"friday":    {Open: "09:00", Close: "20:00"},
		"saturday":  {Open: "10:00", Close: "16:00"},
		"sunday":    {Open: "closed", Close: "closed"},
	}
	return &business.Config{
		ID:   "bella",
		Name: "Bella Salon",
		Settings: business.Settings{
			OperatingHours: &business.OperatingHours{Enabled: true, Hours: hours},
			ContactInfo:    &business.ContactInfo{Phone: "555-0199", Email: "book@bella.test"},
		},
	}
}

func seeded() *Local {
	l := New(rand.New(rand.NewSource(42)))
	l.now = func() time.Time { return time.Date(2024, 6, 5, 12, 0, 0, 0, time.UTC) }
	return l
}

func TestTryLocal_Greetings(t *testing.T) {
	l := seeded()
	for _, msg := range []string{"hello", "Hi!", "hey there", "Good morning", "hola amigo"} {
		resp := l.TryLocal(msg, salon())
		require.NotNil(t, resp, msg)
		assert.Equal(t, llm.IntentGreeting, resp.Intent, msg)
		assert.InDelta(t, 0.9, resp.Confidence, 0.0001)
		assert.Contains(t, resp.Message, "Bella Salon")
	}
}

func TestTryLocal_LongGreetingFallsThrough(t *testing.T) {
	resp := seeded().TryLocal("hi can you tell me about your balayage services", salon())
	assert.Nil(t, resp)
}

func TestTryLocal_SeededPickIsDeterministic(t *testing.T) {
	a := seeded().TryLocal("hello", salon())
	b := seeded().TryLocal("hello", salon())
	assert.Equal(t, a.Message, b.Message)
}

func TestTryLocal_Thanks(t *testing.T) {
	resp := seeded().TryLocal("Thanks a lot!", salon())
	require.NotNil(t, resp)
	assert.Equal(t, llm.IntentThanks, resp.Intent)
}

func TestTryLocal_HoursWithClosedDay(t *testing.T) {
	resp := seeded().TryLocal("are you open on sunday", salon())
	require.NotNil(t, resp)

	assert.Equal(t, llm.IntentHours, resp.Intent)
	assert.InDelta(t, 0.85, resp.Confidence, 0.0001)
	assert.Contains(t, resp.Message, "On Sunday we're Closed.")
	assert.Contains(t, resp.Message, "• Sunday: Closed")
	assert.Contains(t, resp.Message, "• Monday: 09:00 - 18:00")
	assert.Contains(t, resp.Message, "• Wednesday: 09:00 - 18:00 (today)")
}

func TestTryLocal_HoursFallback(t *testing.T) {
	resp := seeded().TryLocal("what are your opening hours", &business.Config{Name: "Pop-up"})
	require.NotNil(t, resp)
	assert.Equal(t, llm.IntentHours, resp.Intent)
	assert.InDelta(t, 0.7, resp.Confidence, 0.0001)
}

func TestTryLocal_Contact(t *testing.T) {
	resp := seeded().TryLocal("what's your phone number", salon())
	require.NotNil(t, resp)
	assert.Equal(t, llm.IntentContact, resp.Intent)
	assert.Contains(t, resp.Message, "📞 Phone: 555-0199")
	assert.Contains(t, resp.Message, "📧 Email: book@bella.test")
	assert.NotContains(t, resp.Message, "Address")

	resp = seeded().TryLocal("how do I contact you", nil)
	require.NotNil(t, resp)
	assert.InDelta(t, 0.7, resp.Confidence, 0.0001)
	assert.Equal(t, []string{"contact-form"}, resp.SuggestedContent)
}

func TestTryLocal_NoMatch(t *testing.T) {
	assert.Nil(t, seeded().TryLocal("do you do keratin treatments?", salon()))
	assert.Nil(t, seeded().TryLocal("   ", salon()))
}
