package lexai

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/lexai/internal/domain"
)

// sdkMetrics holds prometheus metrics registered for the SDK.
type sdkMetrics struct {
	questions *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	m := &sdkMetrics{
		questions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lexai",
			Subsystem: "sdk",
			Name:      "questions_total",
			Help:      "Total questions by jurisdiction, status and failure kind.",
		}, []string{"jurisdiction", "status", "kind"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lexai",
			Subsystem: "sdk",
			Name:      "question_duration_seconds",
			Help:      "Question answering duration in seconds.",
			Buckets:   []float64{.25, .5, 1, 2.5, 5, 10, 20, 30, 60},
		}, []string{"jurisdiction"}),
	}
	if err := registerOrReuse(reg, &m.questions); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers a collector or reuses an existing one.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(T)
			if !ok {
				return fmt.Errorf("lexai: metric already registered with incompatible type: %T", are.ExistingCollector)
			}
			*c = existing
			return nil
		}
		return fmt.Errorf("lexai: register metric: %w", err)
	}
	return nil
}

// observer provides logging and metrics for answered questions.
type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	var m *sdkMetrics
	if reg != nil {
		var err error
		m, err = newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
	}
	return &observer{logger: logger, metrics: m}, nil
}

// ObserveQuery is called once per finished question.
func (o *observer) ObserveQuery(jurisdiction string, out domain.Outcome, dur time.Duration) {
	if o == nil {
		return
	}

	if o.metrics != nil {
		o.metrics.questions.WithLabelValues(jurisdiction, string(out.Status), string(out.Kind())).Inc()
		o.metrics.duration.WithLabelValues(jurisdiction).Observe(dur.Seconds())
	}

	if o.logger != nil {
		if out.OK() {
			o.logger.Debug("question answered",
				"jurisdiction", jurisdiction,
				"matches", len(out.Matches),
				"duration", dur,
			)
		} else {
			o.logger.Warn("question failed",
				"jurisdiction", jurisdiction,
				"kind", out.Kind(),
				"duration", dur,
			)
		}
	}
}
