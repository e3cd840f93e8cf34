package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Observe(t *testing.T) {
	m := NewMetrics()

	m.ObserveTransaction("create", "accepted")
	m.ObserveTransaction("create", "accepted")
	m.ObserveTransaction("confirm", "provider_error")
	m.ObserveLedgerOperation("debit", "insufficient")
	m.ObserveGatewayCall("timeout", 2*time.Second)
	m.ObserveSettlementPublish("published")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.TransactionsTotal.WithLabelValues("create", "accepted")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.TransactionsTotal.WithLabelValues("confirm", "provider_error")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.LedgerOperationsTotal.WithLabelValues("debit", "insufficient")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.GatewayCallsTotal.WithLabelValues("timeout")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.SettlementPublished.WithLabelValues("published")))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.RecordHTTPRequest("GET", "/v1/balance", "200", 15*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `topup_ledger_http_requests_total{method="GET",path="/v1/balance",status_code="200"} 1`)
}

func TestNewMetrics_IndependentRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewMetrics()
		NewMetrics()
	})
}

func TestMetrics_InFlight(t *testing.T) {
	m := NewMetrics()

	m.HTTPRequestStarted()
	m.HTTPRequestStarted()
	m.HTTPRequestFinished()

	assert.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequestsInFlight))
}
