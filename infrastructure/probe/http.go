// Package probe provides the HTTP health prober.
package probe

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/praxisops/praxis/domain/ops"
)

// HTTP probes service health URLs with a bounded timeout. A circuit
// breaker per prober short-circuits repeatedly failing targets to
// degraded without issuing more requests.
type HTTP struct {
	client  *http.Client
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker
}

// NewHTTP creates a prober with the given per-call timeout.
func NewHTTP(timeout time.Duration) *HTTP {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &HTTP{
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name: "health-probe",
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			Timeout: 30 * time.Second,
		}),
	}
}

// Probe checks the URL and maps the response: status < 300 is healthy,
// any other HTTP status is degraded with the code, transport failures
// are degraded with the error detail, and an empty URL is unknown.
func (p *HTTP) Probe(ctx context.Context, url string) (ops.HealthState, string) {
	if url == "" {
		return ops.HealthUnknown, "no health_url configured"
	}

	status, err := p.breaker.Execute(func() (any, error) {
		callCtx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(callCtx, http.MethodGet, url, nil)
		if err != nil {
			return 0, err
		}
		resp, err := p.client.Do(req)
		if err != nil {
			return 0, err
		}
		defer func() { _ = resp.Body.Close() }()
		return resp.StatusCode, nil
	})
	if err != nil {
		return ops.HealthDegraded, err.Error()
	}

	code, _ := status.(int)
	if code < 300 {
		return ops.HealthHealthy, ""
	}
	return ops.HealthDegraded, fmt.Sprintf("http status %d", code)
}
