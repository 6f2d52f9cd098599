package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChat_RegistersOnRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewChat(reg)

	m.AICalls.Inc()
	m.Routes.WithLabelValues("local").Inc()
	m.Routes.WithLabelValues("local").Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.AICalls))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Routes.WithLabelValues("local")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["chat_ai_calls_total"])
	assert.True(t, names["chat_route_total"])
}

func TestNewChat_NilRegistryIsIsolated(t *testing.T) {
	// two instances must not collide on the default registry
	a := NewChat(nil)
	b := NewChat(nil)
	a.CacheHits.Inc()
	assert.Equal(t, 0.0, testutil.ToFloat64(b.CacheHits))
}
