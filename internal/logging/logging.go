// Package logging builds the process-wide slog logger for the saband
// service.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/hsaban/saband/internal/config"
)

// serviceName tags every record so aggregated logs from the chat pipeline
// and the admin API can be filtered to this service.
const serviceName = "saband"

// New builds the service logger from the LOG_LEVEL and LOG_FILE settings:
// JSON to stderr, tee'd into the log file when one is configured. Every
// record carries the service name and the active data version, since cached
// answers are only comparable within one data version. The logger is also
// installed as the slog default; the returned cleanup func closes the log
// file and must be deferred by the caller.
func New(cfg *config.Config) (*slog.Logger, func(), error) {
	var w io.Writer = os.Stderr
	cleanup := func() {}

	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w = io.MultiWriter(os.Stderr, f)
		cleanup = func() { _ = f.Close() }
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level(cfg.LogLevel)})
	logger := slog.New(handler).With(
		"service", serviceName,
		"data_version", cfg.DataVersion,
	)
	slog.SetDefault(logger)
	return logger, cleanup, nil
}

// level parses LOG_LEVEL, defaulting to info on anything unrecognized.
func level(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
