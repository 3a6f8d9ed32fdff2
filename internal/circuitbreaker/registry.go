package circuitbreaker

import (
	"sync"
	"time"
)

// Registry hands out one breaker per host.
type Registry struct {
	mutex     sync.RWMutex
	breakers  map[string]*CircuitBreaker
	threshold int
	timeout   time.Duration
}

func NewRegistry(threshold int, timeout time.Duration) *Registry {
	return &Registry{
		breakers:  make(map[string]*CircuitBreaker),
		threshold: threshold,
		timeout:   timeout,
	}
}

func (r *Registry) GetBreaker(host string) *CircuitBreaker {
	r.mutex.RLock()
	cb, exists := r.breakers[host]
	r.mutex.RUnlock()

	if exists {
		return cb
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if cb, exists = r.breakers[host]; exists {
		return cb
	}

	cb = NewCircuitBreaker(r.threshold, r.timeout)
	r.breakers[host] = cb
	return cb
}

// Open lists the hosts whose breaker is currently open.
func (r *Registry) Open() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var hosts []string
	for host, cb := range r.breakers {
		if cb.State() == StateOpen {
			hosts = append(hosts, host)
		}
	}
	return hosts
}
