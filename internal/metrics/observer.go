package metrics

import (
	"time"

	"github.com/kailas-cloud/lexai/internal/domain"
)

// QueryObserver records query outcomes. The zero value is ready to use.
type QueryObserver struct{}

// ObserveQuery counts one finished run and its duration.
func (QueryObserver) ObserveQuery(jurisdiction string, out domain.Outcome, elapsed time.Duration) {
	status := string(out.Status)
	QueryOutcomesTotal.WithLabelValues(jurisdiction, status, string(out.Kind())).Inc()
	QueryDuration.WithLabelValues(jurisdiction, status).Observe(elapsed.Seconds())
}
