package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	mu       sync.RWMutex
	once     sync.Once
	instance *zap.Logger
)

// Init inicializa el logger global. Sólo la primera llamada tiene efecto.
// Debe llamarse al inicio de la aplicación (cmd).
func Init(cfg Config) {
	once.Do(func() {
		mu.Lock()
		instance = build(cfg)
		mu.Unlock()
	})
}

// Replace instala un logger arbitrario (tests con zaptest/observer).
// Devuelve una función que restaura el anterior.
func Replace(l *zap.Logger) (restore func()) {
	mu.Lock()
	prev := instance
	instance = l
	mu.Unlock()
	return func() {
		mu.Lock()
		instance = prev
		mu.Unlock()
	}
}

// L retorna el logger global.
// Si Init() no fue llamado, crea uno por defecto (dev, info).
func L() *zap.Logger {
	mu.RLock()
	l := instance
	mu.RUnlock()
	if l != nil {
		return l
	}
	Init(Config{Env: "dev", Level: "info"})
	mu.RLock()
	l = instance
	mu.RUnlock()
	if l == nil {
		return zap.NewNop()
	}
	return l
}

// Named retorna un logger con nombre de componente.
func Named(name string) *zap.Logger {
	return L().Named(name)
}

// Sync flushea cualquier buffer pendiente. Usar con defer en main.
func Sync() error {
	mu.RLock()
	l := instance
	mu.RUnlock()
	if l != nil {
		return l.Sync()
	}
	return nil
}
