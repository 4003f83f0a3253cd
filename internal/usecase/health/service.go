package health

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// DefaultCheckTimeout bounds a single check.
const DefaultCheckTimeout = 5 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	checks  map[string]Checker
	timeout time.Duration
	logger  *zap.Logger
}

// New creates a Service over named checkers. Nil checkers are skipped.
func New(checks map[string]Checker, logger *zap.Logger) *Service {
	s := &Service{
		checks:  make(map[string]Checker, len(checks)),
		timeout: DefaultCheckTimeout,
		logger:  logger,
	}
	for name, c := range checks {
		if c != nil {
			s.checks[name] = c
		}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// WithTimeout sets the per-check bound.
func (s *Service) WithTimeout(d time.Duration) *Service {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// Check runs all checks concurrently. With no checks the service is healthy.
func (s *Service) Check(ctx context.Context) Report {
	var (
		mu     sync.Mutex
		checks = make(map[string]CheckResult, len(s.checks))
	)

	g, gctx := errgroup.WithContext(ctx)
	for name, c := range s.checks {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(gctx, s.timeout)
			defer cancel()

			res := CheckOK
			if err := c.HealthCheck(cctx); err != nil {
				s.logger.Warn("Health check failed", zap.String("check", name), zap.Error(err))
				res = CheckError
			}
			mu.Lock()
			checks[name] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, v := range checks {
		if v == CheckError {
			failed++
		}
	}

	status := Healthy
	switch {
	case failed > 0 && failed == len(checks):
		status = Unhealthy
	case failed > 0:
		status = Degraded
	}
	return Report{Status: status, Checks: checks}
}
