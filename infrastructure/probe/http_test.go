package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/praxisops/praxis/domain/ops"
)

func TestProbeHealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	state, detail := NewHTTP(time.Second).Probe(context.Background(), srv.URL)
	assert.Equal(t, ops.HealthHealthy, state)
	assert.Empty(t, detail)
}

func TestProbeDegradedOnHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	state, detail := NewHTTP(time.Second).Probe(context.Background(), srv.URL)
	assert.Equal(t, ops.HealthDegraded, state)
	assert.Equal(t, "http status 503", detail)
}

func TestProbeDegradedOnTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	state, detail := NewHTTP(time.Second).Probe(context.Background(), srv.URL)
	assert.Equal(t, ops.HealthDegraded, state)
	assert.NotEmpty(t, detail)
}

func TestProbeUnknownWithoutURL(t *testing.T) {
	state, _ := NewHTTP(time.Second).Probe(context.Background(), "")
	assert.Equal(t, ops.HealthUnknown, state)
}

func TestProbeBreakerShortCircuits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	p := NewHTTP(200 * time.Millisecond)
	for i := 0; i < 6; i++ {
		state, _ := p.Probe(context.Background(), srv.URL)
		assert.Equal(t, ops.HealthDegraded, state)
	}

	// Breaker is open now; the detail is the breaker error, still degraded.
	state, detail := p.Probe(context.Background(), srv.URL)
	assert.Equal(t, ops.HealthDegraded, state)
	assert.NotEmpty(t, detail)
}
