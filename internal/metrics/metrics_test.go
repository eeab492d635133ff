package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorders(t *testing.T) {
	m := New("test")
	m.OTPIssued("password reset")
	m.OTPIssued("password reset")
	m.Login("success")
	m.ObserveRequest("GET", "/api/ping", "200", 5*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.OTPIssuedTotal.WithLabelValues("password reset")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoginsTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/ping", "200")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Login("failure")
		m.RequestStarted()
		m.RequestFinished()
		m.Booking("created")
	})
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New("roadsphere")
	m.Login("success")

	app := fiber.New()
	app.Get("/metrics", m.Handler())

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `roadsphere_logins_total{outcome="success"} 1`))
}
