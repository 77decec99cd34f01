package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config configura el logger.
type Config struct {
	// Env: "dev" (consola con colores) o "prod" (JSON). Default: "dev".
	Env string

	// Level: "debug", "info", "warn", "error". Default: "info".
	Level string

	// Encoding fuerza "json" o "console" sin importar Env (ej: dev dentro de docker).
	Encoding string

	// ServiceName y Version se agregan como campos base si no están vacíos.
	ServiceName string
	Version     string
}

func (c Config) isProd() bool {
	return strings.EqualFold(strings.TrimSpace(c.Env), "prod")
}

// build construye el logger según la configuración.
func build(cfg Config) *zap.Logger {
	var zcfg zap.Config
	if cfg.isProd() {
		zcfg = zap.NewProductionConfig()
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zcfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		zcfg.DisableStacktrace = true
	}
	zcfg.Level = zap.NewAtomicLevelAt(parseLevel(cfg.Level))
	zcfg.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	switch strings.ToLower(cfg.Encoding) {
	case "json":
		zcfg.Encoding = "json"
		zcfg.EncoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
	case "console":
		zcfg.Encoding = "console"
	}

	opts := []zap.Option{zap.AddCaller()}
	if cfg.isProd() {
		opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))
	}

	l, err := zcfg.Build(opts...)
	if err != nil {
		// Fallback a un logger básico si falla
		l, _ = zap.NewProduction()
	}

	if cfg.ServiceName != "" {
		l = l.With(zap.String("service", cfg.ServiceName))
	}
	if cfg.Version != "" {
		l = l.With(zap.String("version", cfg.Version))
	}
	return l
}

// parseLevel convierte un string a zapcore.Level.
func parseLevel(lvl string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
