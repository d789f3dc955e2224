package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// swapHandler serves the most recently installed handler, or next until one is installed
type swapHandler struct {
	next    http.Handler
	mu      sync.RWMutex
	current http.Handler
}

func (s *swapHandler) install(h http.Handler) {
	s.mu.Lock()
	s.current = h
	s.mu.Unlock()
}

func (s *swapHandler) installed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil
}

func (s *swapHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	s.mu.RLock()
	h := s.current
	s.mu.RUnlock()
	switch {
	case h != nil:
		h.ServeHTTP(w, req)
	case s.next != nil:
		s.next.ServeHTTP(w, req)
	}
}

// reloadEvery calls load on every tick until ctx is cancelled. A non-positive interval disables reloading.
func reloadEvery(ctx context.Context, interval time.Duration, load func(context.Context)) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			load(ctx)
		}
	}
}
