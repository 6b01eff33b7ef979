// Package log provides the logging abstraction used by warden components.
//
// This package defines a Logger interface that can be implemented by
// any logging library. A zerolog adapter is provided as the default
// implementation, plus a no-op logger for tests and embedders that
// bring their own logging.
//
// # Usage
//
// Use the provided zerolog adapter:
//
//	logger := log.NewZerologAdapter()
//
// Or configure output once at startup:
//
//	logger, err := log.Configure(log.Config{
//	    Level:  "info",
//	    Format: log.FormatConsole,
//	})
//
// # Custom Loggers
//
// Implement the Logger interface to integrate with your existing
// logging infrastructure:
//
//	type MyLogger struct { ... }
//
//	func (l *MyLogger) Debug(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) Info(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) Warn(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) Error(msg string, fields ...log.Field) { ... }
package log
