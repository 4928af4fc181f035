package interfaces

// Logger defines the interface for logging throughout the application.
// This abstraction allows different logging implementations (logrus, zap,
// test doubles) while keeping components free of ambient singletons.
//
// Example usage:
//
//	logger.Info("Extracted content", map[string]interface{}{
//		"url":    "https://example.com/post",
//		"method": "static",
//	})
type Logger interface {
	// Debug logs a debug level message with optional structured fields.
	Debug(msg string, fields map[string]interface{})

	// Info logs an info level message with optional structured fields.
	Info(msg string, fields map[string]interface{})

	// Warn logs a warning level message with optional structured fields.
	Warn(msg string, fields map[string]interface{})

	// Error logs an error level message with optional structured fields.
	Error(msg string, fields map[string]interface{})
}
