package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_CountsSubmissions(t *testing.T) {
	reg := prometheus.NewRegistry()
	active := 3
	m := New(reg, func() int { return active })

	m.IncrementSessionsOpened()
	m.ObserveSubmission(true)
	m.ObserveSubmission(false)
	m.ObserveSubmission(false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsOpened))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SubmissionsAccepted))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SubmissionsRejected))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ActiveSessions))
	active = 1
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActiveSessions))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 4)
}

func TestMetrics_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry(), nil)
		New(prometheus.NewRegistry(), nil)
	})
}

func TestMetrics_NilActiveSessionsReportsZero(t *testing.T) {
	m := New(prometheus.NewRegistry(), nil)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ActiveSessions))
}
