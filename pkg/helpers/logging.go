package helpers

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// LogFile is the rotated log filename inside the data directory.
const LogFile = "core.log"

var baseLogWriter io.Writer

// InitLogging sets up the global logger: a size-capped rotating file in
// logDir plus any extra writers (a console writer in the foreground).
func InitLogging(logDir string, writers []io.Writer) error {
	err := os.MkdirAll(logDir, 0o750)
	if err != nil {
		return err
	}

	logWriters := []io.Writer{&lumberjack.Logger{
		Filename:   filepath.Join(logDir, LogFile),
		MaxSize:    1,
		MaxBackups: 2,
	}}

	if len(writers) > 0 {
		logWriters = append(logWriters, writers...)
	}

	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	baseLogWriter = io.MultiWriter(logWriters...)
	log.Logger = log.Output(baseLogWriter).
		With().Timestamp().Caller().Logger()

	return nil
}

// LogWriter returns the writer installed by InitLogging so extra sinks can be
// layered on top of it without losing the file log.
func LogWriter() io.Writer {
	if baseLogWriter == nil {
		return os.Stderr
	}
	return baseLogWriter
}
