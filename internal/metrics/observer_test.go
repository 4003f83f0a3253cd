package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/lexai/internal/domain"
)

func TestQueryObserver(t *testing.T) {
	var obs QueryObserver

	before := testutil.ToFloat64(QueryOutcomesTotal.WithLabelValues("Testland", "failed", "provider_auth"))
	obs.ObserveQuery("Testland", domain.Failed(domain.KindProviderAuth, "bad key"), 20*time.Millisecond)
	obs.ObserveQuery("Testland", domain.Succeeded("ok", nil), time.Second)

	if got := testutil.ToFloat64(QueryOutcomesTotal.WithLabelValues("Testland", "failed", "provider_auth")); got != before+1 {
		t.Errorf("failed counter = %f, want %f", got, before+1)
	}
	if got := testutil.ToFloat64(QueryOutcomesTotal.WithLabelValues("Testland", "ok", "")); got < 1 {
		t.Errorf("ok counter = %f, want >= 1", got)
	}
	if n := testutil.CollectAndCount(QueryDuration); n == 0 {
		t.Error("expected query duration observations")
	}
}
