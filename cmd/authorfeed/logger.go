package main

import (
	"io"
	"log/slog"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Log file rotation limits.
const (
	logMaxSizeMB  = 10
	logMaxBackups = 3
	logMaxAgeDays = 28
)

// newLogger returns a text logger writing to stderr and, when logFile is
// set, to a size-rotated log file. The returned func closes the file.
func newLogger(stderr io.Writer, debug bool, logFile string) (*slog.Logger, func() error) {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}

	w := stderr
	closeFn := func() error { return nil }
	if logFile != "" {
		rotator := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    logMaxSizeMB,
			MaxBackups: logMaxBackups,
			MaxAge:     logMaxAgeDays,
		}
		w = io.MultiWriter(stderr, rotator)
		closeFn = rotator.Close
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), closeFn
}
