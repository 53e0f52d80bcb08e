package backend

import (
	"net/http"
	"sync"
	"time"
)

// RequestCounter counts API requests over the trailing minute.
type RequestCounter struct {
	mu     sync.Mutex
	stamps []time.Time
	now    func() time.Time
}

func NewRequestCounter() *RequestCounter {
	return &RequestCounter{now: time.Now}
}

func (c *RequestCounter) Add() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	c.prune(now)
	c.stamps = append(c.stamps, now)
}

// PerMinute returns the number of requests seen in the last minute.
func (c *RequestCounter) PerMinute() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prune(c.now())
	return len(c.stamps)
}

func (c *RequestCounter) prune(now time.Time) {
	cutoff := now.Add(-time.Minute)
	i := 0
	for i < len(c.stamps) && !c.stamps[i].After(cutoff) {
		i++
	}
	if i > 0 {
		c.stamps = append(c.stamps[:0], c.stamps[i:]...)
	}
}

// Middleware counts every request passing through.
func (c *RequestCounter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.Add()
		next.ServeHTTP(w, r)
	})
}
