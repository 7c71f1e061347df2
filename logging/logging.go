// Package logging configures the process-wide logrus logger.
package logging

import (
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
)

// Setup sets the log level by name and sends text output with full
// timestamps to w. A nil w means stderr.
func Setup(level string, w io.Writer) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}
	if w == nil {
		w = os.Stderr
	}

	log.SetLevel(lvl)
	log.SetOutput(w)
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		DisableColors:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return nil
}
