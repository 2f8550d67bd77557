/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type visitor struct {
	limiter *rate.Limiter
	seen    time.Time
}

// limiter hands each user id its own token bucket.
type limiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	visitors map[string]*visitor
	now      func() time.Time
}

func newLimiter(perSecond float64, burst int) *limiter {
	return &limiter{
		limit:    rate.Limit(perSecond),
		burst:    burst,
		visitors: make(map[string]*visitor),
		now:      time.Now,
	}
}

func (l *limiter) allow(id string) bool {
	if l == nil || l.limit == 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	v, ok := l.visitors[id]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, max(l.burst, 1))}
		l.visitors[id] = v
	}
	v.seen = now

	return v.limiter.AllowN(now, 1)
}

// sweep forgets users not seen since before.
func (l *limiter) sweep(before time.Time) int {
	if l == nil {
		return 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for id, v := range l.visitors {
		if v.seen.Before(before) {
			delete(l.visitors, id)
			n++
		}
	}
	return n
}
