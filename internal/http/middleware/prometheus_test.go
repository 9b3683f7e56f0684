package middleware

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInstrumentedApp(t *testing.T, skip ...string) (*fiber.App, *PrometheusMiddleware, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	m, err := NewPrometheusMiddleware(reg, skip...)
	require.NoError(t, err)

	app := fiber.New()
	app.Use(m.Handler())
	app.Get("/stories/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Put("/stories/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Post("/stories", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusBadRequest, "bad") })
	app.Post("/users", func(c *fiber.Ctx) error { return errors.New("boom") })
	app.Get("/health", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/metrics", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	return app, m, reg
}

func TestPrometheusMiddleware_Labels(t *testing.T) {
	app, m, reg := newInstrumentedApp(t)

	tests := []struct {
		method  string
		target  string
		pattern string
		status  string
	}{
		{"GET", "/stories/123", "/stories/:id", "200"},
		{"PUT", "/stories/123", "/stories/:id", "200"},
		{"POST", "/stories", "/stories", "400"},
		{"POST", "/users", "/users", "500"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			_, err := app.Test(httptest.NewRequest(tt.method, tt.target, nil))
			require.NoError(t, err)
			assert.Equal(t, float64(1), testutil.ToFloat64(m.requests.WithLabelValues(tt.method, tt.pattern, tt.status)))
		})
	}

	assert.Equal(t, 4, testutil.CollectAndCount(m.latency))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.inFlight))

	// Labels recorded by earlier requests stay intact after later ones reuse the buffers.
	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		for _, metric := range mf.GetMetric() {
			for _, lp := range metric.GetLabel() {
				if lp.GetName() == "method" {
					assert.Contains(t, []string{"GET", "PUT", "POST"}, lp.GetValue(), mf.GetName())
				}
			}
		}
	}
}

func TestPrometheusMiddleware_SkipsScrapeAndHealthPaths(t *testing.T) {
	app, _, reg := newInstrumentedApp(t)

	for _, p := range []string{"/metrics", "/health"} {
		_, err := app.Test(httptest.NewRequest("GET", p, nil))
		require.NoError(t, err)
	}

	n, err := testutil.GatherAndCount(reg, "http_requests_total")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPrometheusMiddleware_CustomSkipList(t *testing.T) {
	app, m, _ := newInstrumentedApp(t, "/stories")

	_, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	_, err = app.Test(httptest.NewRequest("POST", "/stories", nil))
	require.NoError(t, err)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.requests.WithLabelValues("GET", "/health", "200")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.requests))
}

func TestNewPrometheusMiddleware_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheusMiddleware(reg)
	require.NoError(t, err)
	_, err = NewPrometheusMiddleware(reg)
	assert.Error(t, err)
}
