package lifecycle

import (
	"errors"
	"net/http"
	"sync/atomic"
)

var ErrDraining = errors.New("shutting down")

// Probes backs the liveness and readiness endpoints. Readiness fails once
// shutdown has begun.
type Probes struct {
	draining atomic.Bool
}

func NewProbes() *Probes {
	return &Probes{}
}

// MarkDraining flips readiness to failing.
func (p *Probes) MarkDraining() {
	p.draining.Store(true)
}

// Readiness reports ErrDraining after MarkDraining.
func (p *Probes) Readiness() error {
	if p.draining.Load() {
		return ErrDraining
	}
	return nil
}

// LivenessHandler always answers 200.
func (p *Probes) LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

// ReadinessHandler answers 503 while draining.
func (p *Probes) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if err := p.Readiness(); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
}
