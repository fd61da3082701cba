// Package logger provides a singleton Zap logger with context-based scoping.
//
// Inicialización (una vez en main.go):
//
//	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})
//	defer logger.Sync()
//
// En controllers/services (con contexto):
//
//	log := logger.From(ctx)
//	log.Info("checkin recorded", logger.UserID(userID), logger.ChurchID(churchID))
//
// Sin contexto (fallback a singleton):
//
//	logger.L().Info("server started")
package logger
