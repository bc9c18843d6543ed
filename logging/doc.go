// Package logging provides a minimal logging interface and adapters for Orchestra.
//
// The Logger interface defines the standard logging methods (Debug, Info,
// Warn, Error) that the engine, conductor and registry use for observability.
// This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - NoOpLogger for silent operation (testing, minimal setups)
//   - OrchestraLogger with workflow/component context helpers
//
// Components log key-value pairs, so they are wired with the slog adapter:
//
//	logger := logging.NewSlogAdapter(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
//	eng := engine.New(reg, func(o *engine.Options) { o.Logger = logger })
//
// OrchestraLogger formats its arguments printf-style and suits application
// code that logs messages rather than attribute pairs.
//
// The design intentionally keeps the interface minimal to avoid vendor
// lock-in while supporting structured logging where available.
package logging
