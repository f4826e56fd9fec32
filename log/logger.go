package log

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/op/go-logging"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Level logging.Level

// The levels that can be passed to the SetLevel function.
const (
	Debug Level = iota
	Info
	Notice
	Warning
	Error
)

// The logger format
var format = logging.MustStringFormatter(
	`%{color}[%{time:15:04:05.000}] [%{module}] [%{level}]%{color:reset} %{message}`,
)

// Log files do not get terminal colors.
var fileFormat = logging.MustStringFormatter(
	`[%{time:2006-01-02 15:04:05.000}] [%{module}] [%{level}] %{message}`,
)

// The internal leveled logger backend
var leveledBackend logging.LeveledBackend

// The currently active sinks
var backends []logging.Backend

// The currently selected level
var curLevel = Notice

// The logger interface
type Logger interface {
	Debug(v ...interface{})
	Debugf(format string, v ...interface{})

	Notice(v ...interface{})
	Noticef(format string, v ...interface{})

	Info(v ...interface{})
	Infof(format string, v ...interface{})

	Warning(v ...interface{})
	Warningf(format string, v ...interface{})

	Error(v ...interface{})
	Errorf(format string, v ...interface{})
}

// Create a new named logger.
func New(name string) Logger {
	return logging.MustGetLogger(name)
}

// Override the backend output sink. Any file sinks are discarded.
func SetSink(sink io.Writer) {
	backend := logging.NewLogBackend(sink, "", 0)
	backends = []logging.Backend{logging.NewBackendFormatter(backend, format)}
	apply()
}

// Add a size-rotated log file as an additional sink.
func AddFileSink(path string) {
	fileWriter := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     7,
	}
	backend := logging.NewLogBackend(fileWriter, "", 0)
	backends = append(backends, logging.NewBackendFormatter(backend, fileFormat))
	apply()
}

// Set logger verbosity.
func SetLevel(level Level) {
	curLevel = level
	leveledBackend.SetLevel(level.toLogging(), "")
}

// Parse a level name (debug, info, notice, warning, error).
func ParseLevel(name string) (Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return Debug, nil
	case "info":
		return Info, nil
	case "notice", "":
		return Notice, nil
	case "warning", "warn":
		return Warning, nil
	case "error":
		return Error, nil
	}

	return Notice, fmt.Errorf("log: unknown level %q", name)
}

func (level Level) toLogging() logging.Level {
	switch level {
	case Debug:
		return logging.DEBUG
	case Info:
		return logging.INFO
	case Warning:
		return logging.WARNING
	case Error:
		return logging.ERROR
	}
	return logging.NOTICE
}

func apply() {
	leveledBackend = logging.MultiLogger(backends...)
	leveledBackend.SetLevel(curLevel.toLogging(), "")
	logging.SetBackend(leveledBackend)
}

func init() {
	SetSink(os.Stdout)
	SetLevel(Notice)
}
