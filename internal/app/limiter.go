package app

import (
	"context"
	"sync"
)

// DynamicLimiter borne le nombre de recherches exécutées en parallèle.
// Le plafond se règle à chaud via SetLimit (PUT /api/v1/settings).
// Acquire respecte le contexte de la requête.
type DynamicLimiter struct {
	mu       sync.Mutex
	limit    int
	inFlight int
	waiting  int
	notify   chan struct{}
}

func NewDynamicLimiter(limit int) *DynamicLimiter {
	return &DynamicLimiter{limit: normalizeLimit(limit), notify: make(chan struct{})}
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 1
	}
	return limit
}

func (l *DynamicLimiter) Limit() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.limit
}

func (l *DynamicLimiter) InFlight() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inFlight
}

// Waiting renvoie le nombre de requêtes en attente d'un créneau.
func (l *DynamicLimiter) Waiting() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.waiting
}

func (l *DynamicLimiter) SetLimit(limit int) {
	limit = normalizeLimit(limit)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.limit == limit {
		return
	}
	l.limit = limit
	l.broadcastLocked()
}

func (l *DynamicLimiter) Acquire(ctx context.Context) error {
	l.mu.Lock()
	for l.inFlight >= l.limit {
		ch := l.notify
		l.waiting++
		l.mu.Unlock()

		select {
		case <-ctx.Done():
			l.mu.Lock()
			l.waiting--
			l.mu.Unlock()
			return ctx.Err()
		case <-ch:
		}

		l.mu.Lock()
		l.waiting--
	}
	l.inFlight++
	l.mu.Unlock()
	return nil
}

func (l *DynamicLimiter) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.inFlight > 0 {
		l.inFlight--
	}
	l.broadcastLocked()
}

// Do exécute fn dans un créneau.
func (l *DynamicLimiter) Do(ctx context.Context, fn func(context.Context) error) error {
	if err := l.Acquire(ctx); err != nil {
		return err
	}
	defer l.Release()
	return fn(ctx)
}

// broadcastLocked réveille tous les waiters: on ferme le channel et on le recrée.
func (l *DynamicLimiter) broadcastLocked() {
	close(l.notify)
	l.notify = make(chan struct{})
}
