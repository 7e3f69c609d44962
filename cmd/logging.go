package main

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/enblacar/file-manager/internal/config"
)

// terminalWriter carries the stderr descriptor through the io.MultiWriter
// used when log_file is set, so the console half of the tee keeps its colors.
type terminalWriter struct {
	w  io.Writer
	fd uintptr
}

func (tw *terminalWriter) Write(p []byte) (int, error) { return tw.w.Write(p) }

// Fd reports stderr's descriptor, not the log file's.
func (tw *terminalWriter) Fd() uintptr { return tw.fd }

// parseLevel maps a log_level value to a level. Unknown values report false
// and fall back to info.
func parseLevel(s string) (log.Level, bool) {
	switch strings.ToLower(s) {
	case "info", "":
		return log.InfoLevel, true
	case "warning":
		return log.WarnLevel, true
	}
	lvl, err := log.ParseLevel(strings.ToLower(s))
	if err != nil {
		return log.InfoLevel, false
	}
	return lvl, true
}

// newLogger builds the process logger. The returned func closes the log file,
// if one was opened.
func newLogger(stderr io.Writer, cfg *config.Config, verbose bool) (*log.Logger, func()) {
	out := stderr
	closeLog := func() {}
	var fileErr error
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err == nil {
			out = io.MultiWriter(stderr, f)
			closeLog = func() { _ = f.Close() }
		}
		fileErr = err
	}
	if fd, ok := stderr.(interface{ Fd() uintptr }); ok {
		out = &terminalWriter{w: out, fd: fd.Fd()}
	}

	logger := log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	})

	lvl, known := parseLevel(cfg.LogLevel)
	if verbose {
		lvl = log.DebugLevel
	}
	logger.SetLevel(lvl)
	if !known {
		logger.Warn("unknown log_level in config, defaulting to info", "provided", cfg.LogLevel)
	}
	if fileErr != nil {
		logger.Warn("log_file could not be opened; logging to stderr only", "path", cfg.LogFile, "err", fileErr)
	}
	return logger, closeLog
}
