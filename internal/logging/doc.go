// Package logging provides structured logging for the notesync core.
//
// It wraps Go's log/slog to emit JSON lines, with child loggers that carry
// persistent attributes identifying the component, task, or subscription a
// message belongs to. Every core component accepts a *Logger and falls back
// to [NopLogger] when given nil.
//
// # Thread Safety
//
// All types in this package are safe for concurrent use. Background workers
// and the UI loop log through the same [Logger]; [RotatingWriter] serializes
// writes and rotation with a mutex.
//
// # Basic Usage
//
//	logger, err := logging.NewLogger("/path/to/state", "INFO")
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	busLogger := logger.WithComponent("event-bus")
//	busLogger.Warn("handler panicked", "event_type", "message.added")
//
// # Log Rotation
//
//	logger, err := logging.NewLoggerWithRotation(dir, "INFO", logging.RotationConfig{
//	    MaxSizeMB:  10,
//	    MaxBackups: 3,
//	    Compress:   true,
//	})
//
// Rotated files are named notesync.log.1 (newest) through notesync.log.N,
// with a .gz suffix when compression is enabled.
//
// # Testing
//
// Use [NopLogger] to discard output, or [NewWriterLogger] to capture it.
package logging
