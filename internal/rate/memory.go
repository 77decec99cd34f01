package rate

import (
	"context"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryLimiter es el mismo fixed window sobre go-cache. Válido para un solo nodo.
type MemoryLimiter struct {
	c      *gocache.Cache
	Max    int64
	Window time.Duration
	now    func() time.Time
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		c:      gocache.New(window, 2*window),
		Max:    int64(max),
		Window: window,
		now:    time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	winStart := l.now().UTC().Truncate(l.Window)
	k := strings.ReplaceAll(key, " ", "_") + ":" + winStart.Format(time.RFC3339)
	ttl := winStart.Add(l.Window).Sub(l.now())

	var hits int64 = 1
	if err := l.c.Add(k, int64(1), l.Window); err != nil {
		// ya existe: incrementar. Si expiró entre Add e Increment, reiniciar la ventana.
		n, incErr := l.c.IncrementInt64(k, 1)
		if incErr != nil {
			l.c.Set(k, int64(1), l.Window)
			n = 1
		}
		hits = n
	}
	return evaluate(hits, l.Max, ttl, l.Window), nil
}
