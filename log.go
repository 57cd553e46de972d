package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// logEnv holds the environment knobs of the diagnostics stream.
type logEnv struct {
	LogFile bool `env:"JOINLINES_LOG_FILE"`
	NoColor bool `env:"JOINLINES_NO_COLOR"`
}

func getLogFilePath() (string, error) {
	dir, err := gap.NewScope(gap.User, "joinlines").CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "joinlines.log"), nil
}

// openLogFile opens the diagnostics mirror, or returns nil when it cannot be
// created.
func openLogFile() *os.File {
	logFile, err := getLogFilePath()
	if err != nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		// log disabled
		return nil
	}
	f, err := os.OpenFile(logFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		// log disabled
		return nil
	}
	return f
}

// setupLog creates the diagnostics logger writing to stderr. The returned
// closer releases the mirror file, if any.
func setupLog(stderr *os.File) (*log.Logger, func() error, error) {
	cfg, err := env.ParseAs[logEnv]()
	if err != nil {
		return nil, nil, fmt.Errorf("error parsing environment: %v", err)
	}

	var w io.Writer = stderr
	closer := func() error { return nil }
	if cfg.LogFile {
		if f := openLogFile(); f != nil {
			w = io.MultiWriter(stderr, f)
			closer = f.Close
		}
	}

	logger := log.NewWithOptions(w, log.Options{
		Prefix: progName(),
		Level:  log.WarnLevel,
	})
	if cfg.NoColor || !term.IsTerminal(int(stderr.Fd())) {
		logger.SetColorProfile(termenv.Ascii)
	}
	return logger, closer, nil
}
