package main

import (
	"github.com/sirupsen/logrus"
)

var logger = logrus.New()

// SetupLogger configures the process logger.  Verbose enables debug output.
func SetupLogger(verbose bool) {
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}
}

// Debug logs a debug message.
func Debug(format string, a ...interface{}) {
	logger.Debugf(format, a...)
}

// Info logs an informational message.
func Info(format string, a ...interface{}) {
	logger.Infof(format, a...)
}

// Warn logs a warning.
func Warn(format string, a ...interface{}) {
	logger.Warnf(format, a...)
}

// Error logs an error.
func Error(format string, a ...interface{}) {
	logger.Errorf(format, a...)
}

// Fatal logs an error and exits the process.
func Fatal(format string, a ...interface{}) {
	logger.Fatalf(format, a...)
}
