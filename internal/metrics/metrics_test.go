package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipeline(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.ObservePublish("story_cover", "upload", "ok")
	m.ObservePublish("story_cover", "upload", "ok")
	m.ObserveNotification("skipped")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.publishTotal.WithLabelValues("story_cover", "upload", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notificationTotal.WithLabelValues("skipped")))
}

func TestNew_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)

	_, err = New(reg)
	assert.Error(t, err)
}

func TestPipeline_NilIsNoop(t *testing.T) {
	var m *Pipeline
	assert.NotPanics(t, func() {
		m.ObservePublish("a", "b", "c")
		m.ObserveNotification("success")
	})
}
