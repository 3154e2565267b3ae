// Package logging wraps the shared logger used across the collector.
package logging

import (
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	log.SetOutput(os.Stdout)
	log.SetLevel(logrus.InfoLevel)
}

// SetDebug enables debug-level output.
func SetDebug(enabled bool) {
	if enabled {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}
}

// SetOutput redirects all log output, used by tests to capture messages.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

// Info logs an informational message.
func Info(format string, args ...interface{}) {
	log.Infof(format, args...)
}

// Warn logs a warning message.
func Warn(format string, args ...interface{}) {
	log.Warnf(format, args...)
}

// Error logs an error message.
func Error(format string, args ...interface{}) {
	log.Errorf(format, args...)
}

// Debug logs a debug message.
func Debug(format string, args ...interface{}) {
	log.Debugf(format, args...)
}

// Skip logs that an item was intentionally skipped. Skips are informational,
// not warnings.
func Skip(format string, args ...interface{}) {
	log.Infof("skip: "+format, args...)
}

// Progress is a progress bar for long-running collection loops.
type Progress struct {
	bar *progressbar.ProgressBar
}

// NewProgress creates a progress bar over total items.
func NewProgress(total int, description string) *Progress {
	bar := progressbar.NewOptions(total,
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(description),
	)
	return &Progress{bar: bar}
}

// Add advances the bar by n items.
func (p *Progress) Add(n int) {
	p.bar.Add(n)
}

// Complete finishes the bar.
func (p *Progress) Complete() {
	p.bar.Finish()
}
