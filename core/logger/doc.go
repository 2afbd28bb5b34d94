// Package logger builds slog loggers for the back-office client and provides
// attribute helpers so every component logs with the same keys.
//
// # Construction
//
//	log := logger.New(
//		logger.WithDevelopment("backoffice"),
//		logger.WithLevel(slog.LevelDebug),
//	)
//
//	log := logger.New(
//		logger.WithProduction("backoffice"),
//		logger.WithOutput(os.Stderr),
//	)
//
// Development uses the text handler at debug level; production uses the
// JSON handler at info level. Both add a "service" attribute.
//
// # Attribute Helpers
//
// Helpers return an empty slog.Attr for nil or empty input, so they can be
// passed unconditionally:
//
//	log.Warn("refresh failed",
//		logger.Component("session"),
//		logger.Action("refresh"),
//		logger.Error(err),
//		logger.Duration(time.Since(start)),
//	)
//
// Session helpers (Subject, Reason, StoreKey) keep keys consistent
// between the session manager, the guard, and the notification stream.
// Tokens are never logged and have no helper.
package logger
