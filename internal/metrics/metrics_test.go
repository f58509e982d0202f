package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sand/bot-marketplace/backend/internal/entities"
)

type chanSource chan entities.SystemLog

func (c chanSource) Subscribe() (<-chan entities.SystemLog, func()) {
	return c, func() {}
}

func TestCounters(t *testing.T) {
	m := New()

	m.ObserveRequest(http.MethodGet, "/bots", http.StatusOK, 10*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "/bots", http.StatusOK, 20*time.Millisecond)
	m.PurchaseCompleted(entities.PaymentStars)
	m.WalletOperation("save", nil)
	m.WalletOperation("save", errors.New("boom"))
	m.LogStreamOpened()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestCounter.WithLabelValues("GET", "/bots", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.purchases.WithLabelValues("stars")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.walletOps.WithLabelValues("save", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.logStreams))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "marketplace_api_requests_total")
}

func TestWatchLogs(t *testing.T) {
	m := New()
	source := make(chanSource, 2)
	source <- entities.SystemLog{Type: entities.LogError}
	source <- entities.SystemLog{Type: entities.LogError}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.WatchLogs(ctx, source)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return testutil.ToFloat64(m.systemLogs.WithLabelValues("ERROR")) == 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}
