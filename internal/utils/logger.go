package utils

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

var logger *logrus.Logger

// GetLogger returns the shared process logger. The import pipeline logs JSON
// to stdout so run-scoped fields (run_id, counters) stay machine-readable;
// set LOG_FORMAT=text for local runs of cmd/import. LOG_LEVEL accepts the
// usual logrus levels and defaults to info.
func GetLogger() *logrus.Logger {
	if logger == nil {
		logger = logrus.New()

		level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
		if err != nil {
			level = logrus.InfoLevel
		}
		logger.SetLevel(level)

		if os.Getenv("LOG_FORMAT") == "text" {
			logger.SetFormatter(&logrus.TextFormatter{
				FullTimestamp:   true,
				TimestampFormat: time.RFC3339,
			})
		} else {
			logger.SetFormatter(&logrus.JSONFormatter{
				TimestampFormat: time.RFC3339,
			})
		}

		logger.SetOutput(os.Stdout)
	}

	return logger
}
