// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"diary-backend/internal/config"
)

// Setup applies level and formatter from cfg to the standard logrus logger and
// returns it.
func Setup(cfg config.LogConfig) *logrus.Logger {
	return configure(logrus.StandardLogger(), cfg, os.Stdout)
}

func configure(l *logrus.Logger, cfg config.LogConfig, out io.Writer) *logrus.Logger {
	l.SetOutput(out)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if strings.EqualFold(cfg.Format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return l
}

// Component returns an entry tagged with the component name.
func Component(l *logrus.Logger, name string) *logrus.Entry {
	return l.WithField("component", name)
}
