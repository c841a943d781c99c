package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/lexicc/lexicc/internal/config"
	"golang.org/x/term"
)

// setupLog configures the default logger from LEXICC_DEBUG and
// LEXICC_LOG_FILE. The returned closer flushes the log file, if any.
func setupLog() (func() error, error) {
	cfg, err := env.ParseAs[config.LogConfig]()
	if err != nil {
		return nil, fmt.Errorf("error parsing log config: %w", err)
	}

	log.SetOutput(os.Stderr)
	log.SetReportTimestamp(true)
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		log.SetFormatter(log.LogfmtFormatter)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	if cfg.File == "" {
		return func() error { return nil }, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil { //nolint:gosec
		return nil, fmt.Errorf("unable to create log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("unable to open log file: %w", err)
	}
	log.SetOutput(io.MultiWriter(os.Stderr, f))
	return f.Close, nil
}
