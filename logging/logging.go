// Package logging builds the process logger shared by every editor component.
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/writer"
)

var (
	ErrLevelLocked  = errors.New("log level can only be changed in debug mode")
	ErrInvalidLevel = errors.New("log level must be between 0 and 4")
)

// Levels maps the numeric verbosity accepted by SetVerbosity to logrus levels.
var Levels = []logrus.Level{
	logrus.ErrorLevel,
	logrus.WarnLevel,
	logrus.InfoLevel,
	logrus.DebugLevel,
	logrus.TraceLevel,
}

// Config represents the logger's configuration.
type Config struct {
	// Debug enables output and runtime level changes. Without it nothing is logged.
	Debug bool

	// JSON selects the JSON formatter over the text formatter.
	JSON bool

	// Verbosity is the initial level, an index into Levels.
	Verbosity int

	// Output defaults to stderr.
	Output io.Writer
}

// Logger is the process logger.
type Logger struct {
	*logrus.Logger
	debug bool
}

// New builds a logger. It is meant to be called once, explicitly, at startup.
func New(cfg Config) (*Logger, error) {
	l := &Logger{Logger: logrus.New(), debug: cfg.Debug}

	if cfg.JSON {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}

	if !cfg.Debug {
		l.SetOutput(io.Discard)
		l.Logger.SetLevel(logrus.ErrorLevel)
		return l, nil
	}

	if cfg.Output != nil {
		l.SetOutput(cfg.Output)
	}
	if err := l.SetVerbosity(cfg.Verbosity); err != nil {
		return nil, err
	}

	return l, nil
}

// DebugMode reports whether the logger was built in debug mode.
func (l *Logger) DebugMode() bool {
	return l.debug
}

// SetVerbosity sets the level from 0 (errors only) to 4 (trace).
func (l *Logger) SetVerbosity(level int) error {
	if !l.debug {
		return ErrLevelLocked
	}
	if level < 0 || level >= len(Levels) {
		return fmt.Errorf("%w: got %d", ErrInvalidLevel, level)
	}

	l.Logger.SetLevel(Levels[level])
	return nil
}

// ensureDirExists ensures that a directory exists, and if it isn't present, it tries to create a new one.
func ensureDirExists(path string) (bool, error) {
	// Check if the directory exists
	if _, err := os.Stat(path); err == nil {
		return true, nil
	}

	// Create the directory
	err := os.Mkdir(path, 0700)
	if err != nil {
		return false, err
	}

	return true, nil
}

// SetupFiles sends warnings and errors to duald.log and everything below to
// duald-debug.log, both inside dir. An empty dir means ~/.duald.
func SetupFiles(logger *logrus.Logger, dir string) (*os.File, *os.File, error) {
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, nil, err
		}
		dir = filepath.Join(homeDir, ".duald")
	}

	if _, err := ensureDirExists(dir); err != nil {
		return nil, nil, err
	}

	// Open the log file and create if it does not exist.
	logFile, err := os.OpenFile(filepath.Join(dir, "duald.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644) // skipcq: GSC-G302
	if err != nil {
		return nil, nil, err
	}

	// Create a separate log file for verbose logs.
	debugLogFile, err := os.OpenFile(filepath.Join(dir, "duald-debug.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644) // skipcq: GSC-G302
	if err != nil {
		logFile.Close()
		return nil, nil, err
	}

	logger.SetOutput(io.Discard)
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.AddHook(&writer.Hook{
		Writer: logFile,
		LogLevels: []logrus.Level{
			logrus.WarnLevel,
			logrus.ErrorLevel,
			logrus.FatalLevel,
			logrus.PanicLevel,
		},
	})
	logger.AddHook(&writer.Hook{
		Writer: debugLogFile,
		LogLevels: []logrus.Level{
			logrus.TraceLevel,
			logrus.DebugLevel,
			logrus.InfoLevel,
		},
	})

	return logFile, debugLogFile, nil
}

// CloseFiles closes the files opened by SetupFiles.
// CloseFiles is meant to be used for defer calls.
func CloseFiles(logFile, debugLogFile *os.File) {
	if err := logFile.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close log file: %s\n", err)
		return
	}

	if err := debugLogFile.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close debug log file: %s\n", err)
		return
	}
}
