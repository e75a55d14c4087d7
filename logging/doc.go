// Package logging provides a tiny abstraction over structured loggers so the
// rest of the module can depend on a minimal interface while users plug in
// their own backend. This package includes:
//
//   - Logger interface (Debug, Info, Warn, Error with slog-style key/value
//     pairs) for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - ZapAdapter wrapping a zap sugared logger
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// The interface is intentionally minimal to avoid vendor lock-in while
// supporting structured logging where available.
package logging
