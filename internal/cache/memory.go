package cache

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// memoryClient implementa Client sobre patrickmn/go-cache.
type memoryClient struct {
	prefix string
	c      *gocache.Cache
	// takeMu serializa Take: go-cache no tiene get-and-delete atómico.
	takeMu sync.Mutex
}

// NewMemory crea un cliente de cache en memoria. El janitor corre cada minuto.
func NewMemory(prefix string, defaultTTL time.Duration) *memoryClient {
	if defaultTTL <= 0 {
		defaultTTL = gocache.NoExpiration
	}
	return &memoryClient{
		prefix: prefix,
		c:      gocache.New(defaultTTL, time.Minute),
	}
}

func (m *memoryClient) Get(_ context.Context, key string) (string, error) {
	v, ok := m.c.Get(prefixed(m.prefix, key))
	if !ok {
		return "", ErrNotFound
	}
	s, _ := v.(string)
	return s, nil
}

func (m *memoryClient) Set(_ context.Context, key, value string, ttl time.Duration) error {
	switch {
	case ttl == 0:
		ttl = gocache.NoExpiration
	case ttl < 0:
		ttl = gocache.DefaultExpiration
	}
	m.c.Set(prefixed(m.prefix, key), value, ttl)
	return nil
}

func (m *memoryClient) Take(_ context.Context, key string) (string, error) {
	k := prefixed(m.prefix, key)
	m.takeMu.Lock()
	defer m.takeMu.Unlock()
	v, ok := m.c.Get(k)
	if !ok {
		return "", ErrNotFound
	}
	m.c.Delete(k)
	s, _ := v.(string)
	return s, nil
}

func (m *memoryClient) Delete(_ context.Context, key string) error {
	m.c.Delete(prefixed(m.prefix, key))
	return nil
}

func (m *memoryClient) Ping(context.Context) error { return nil }

func (m *memoryClient) Close() error {
	m.c.Flush()
	return nil
}
