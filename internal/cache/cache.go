// Package cache provee un key/value con TTL con dos backends:
//   - Memory (go-cache, in-process, para desarrollo/testing o un solo nodo)
//   - Redis (distribuido, para producción con varias réplicas)
//
// Se usa para el state de OAuth, los tokens de reset de password y como
// read-through de perfiles (store/cached).
package cache

import (
	"context"
	"errors"
	"time"
)

// Client define las operaciones de cache.
type Client interface {
	// Get obtiene un valor. Retorna ErrNotFound si no existe o expiró.
	Get(ctx context.Context, key string) (string, error)

	// Set guarda un valor con TTL. Si ttl es 0, no expira.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Take obtiene y elimina atómicamente (valores de un solo uso).
	// Retorna ErrNotFound si no existe.
	Take(ctx context.Context, key string) (string, error)

	// Delete elimina una key. No falla si no existe.
	Delete(ctx context.Context, key string) error

	// Ping verifica la conexión.
	Ping(ctx context.Context) error

	// Close libera recursos.
	Close() error
}

// Config configuración para crear un cliente de cache.
type Config struct {
	Driver   string // "memory" | "redis"
	Addr     string
	Password string
	DB       int
	Prefix   string // Prefijo para todas las keys
	// DefaultTTL aplica sólo al backend memory cuando Set recibe ttl < 0.
	DefaultTTL time.Duration
}

// ErrNotFound indica que la key no existe.
var ErrNotFound = errors.New("cache: key not found")

// IsNotFound verifica si el error es porque la key no existe.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// New crea un cliente de cache según la configuración.
func New(ctx context.Context, cfg Config) (Client, error) {
	switch cfg.Driver {
	case "redis":
		return NewRedis(ctx, cfg)
	default:
		return NewMemory(cfg.Prefix, cfg.DefaultTTL), nil
	}
}

func prefixed(prefix, k string) string {
	if prefix == "" {
		return k
	}
	return prefix + ":" + k
}
