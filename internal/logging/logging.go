// Package logging configures the logrus logger shared by every command.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/sokolawesome/mediasession/internal/config"
)

// Setup builds a logger from settings. Output goes to settings.File when it
// is set and to out otherwise. The returned close function releases the log
// file, if any.
func Setup(fs afero.Fs, settings config.LogSettings, out io.Writer) (*logrus.Logger, func() error, error) {
	log := logrus.New()

	level, err := logrus.ParseLevel(settings.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if settings.JSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if settings.File == "" {
		log.SetOutput(out)
		return log, func() error { return nil }, nil
	}

	if err := fs.MkdirAll(filepath.Dir(settings.File), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := fs.OpenFile(settings.File, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	log.SetOutput(f)
	return log, f.Close, nil
}
