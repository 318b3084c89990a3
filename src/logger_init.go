package main

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// InitializeGlobalLogger configures logrus for the entire application. Logs
// go to out so they do not interleave with the recipe screen on stdout.
func InitializeGlobalLogger(logLevel string, out io.Writer) logrus.Level {
	level, err := logrus.ParseLevel(strings.ToLower(logLevel))
	if err != nil {
		level = logrus.InfoLevel
		logrus.WithError(err).Warn("Failed to parse log level, defaulting to info")
	}

	logrus.SetLevel(level)
	logrus.SetOutput(out)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	logrus.WithField("log_level", level.String()).Info("Global logger initialized")
	return level
}
