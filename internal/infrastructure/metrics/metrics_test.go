package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoque-vet/internal/domain/entity"
)

func TestRecorders(t *testing.T) {
	m := New()

	m.TransferFinished("ok")
	m.TransferFinished("ok")
	m.TransferFinished("insufficient_quantity")
	m.ImportRows(7, 2)
	m.ActivityAppended(entity.OpTransferencia, true)
	m.ActivityAppended(entity.OpTransferencia, false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.transfers.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transfers.WithLabelValues("insufficient_quantity")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.importRows.WithLabelValues("imported")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.importRows.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.activity.WithLabelValues("transferencia", "error")))

	m.JobFinished("report:refresh", nil, time.Second)
	m.JobFinished("report:refresh", errors.New("redis"), time.Second)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.jobRuns.WithLabelValues("report:refresh", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.jobRuns.WithLabelValues("report:refresh", "success")))
}

func TestMiddlewareYHandler(t *testing.T) {
	m := New()
	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/metrics", m.Handler())
	app.Get("/api/locations/:location/products", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	for _, loc := range []string{"vet", "principal"} {
		resp, err := app.Test(httptest.NewRequest("GET", "/api/locations/"+loc+"/products", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(
		m.requestsTotal.WithLabelValues("/api/locations/:location/products", "GET", "200")))

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "estoque_http_requests_total"))
}
