// Package logging provides the logging facade used by the cspice binding.
//
// The Logger interface wraps the context-aware methods of log/slog:
//
//	type Logger interface {
//	    Debug(ctx context.Context, msg string, args ...any)
//	    Info(ctx context.Context, msg string, args ...any)
//	    Warn(ctx context.Context, msg string, args ...any)
//	    Error(ctx context.Context, msg string, args ...any)
//	    With(args ...any) Logger
//	}
//
// New binds to a *slog.Logger, or to slog.Default() when given nil:
//
//	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})
//	lib, err := cspice.Open(cspice.Config{
//	    Logger: logging.New(slog.New(handler)),
//	})
//
// The binding logs error subsystem setup and kernel loads at Debug level,
// configured kernel loading at Info level and unload failures during Close at
// Warn level. Toolkit errors themselves are returned, never logged.
package logging
