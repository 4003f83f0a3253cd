package health

import "context"

// Checker reports whether one dependency is reachable.
type Checker interface {
	HealthCheck(ctx context.Context) error
}

// CheckFunc adapts a function to Checker.
type CheckFunc func(ctx context.Context) error

// HealthCheck calls f.
func (f CheckFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

// Pinger is satisfied by database stores.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingCheck adapts a Pinger to Checker.
func PingCheck(p Pinger) Checker {
	return CheckFunc(p.Ping)
}
