// Package logger provee un logger Zap global con scoping por contexto.
//
// Inicialización (una vez en cmd):
//
//	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
//	defer logger.Sync()
//
// En handlers/services:
//
//	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("Login"))
//	log.Info("login ok", logger.UserID(id), logger.Provider("google"))
//
// Los emails se loguean siempre enmascarados (logger.Email). Hashes, secretos
// y tokens no se loguean.
package logger
