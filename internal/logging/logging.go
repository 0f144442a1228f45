// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Params selects where logs go and how they look.
type Params struct {
	// FileName enables a rotated log file. Empty keeps logs on Stderr.
	FileName string
	// AlsoStderr duplicates file output to Stderr.
	AlsoStderr bool
	Level      string
	JSON       bool
}

// Setup applies params to the standard logrus logger. The returned closer
// releases the log file, if any.
func Setup(params Params) io.Closer {
	if params.JSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	logrus.SetLevel(GetLevel(params.Level))

	if params.FileName == "" {
		// Stdout carries command output.
		logrus.SetOutput(os.Stderr)
		return nopCloser{}
	}

	if !strings.HasSuffix(params.FileName, ".log") {
		params.FileName += ".log"
	}
	lj := &lumberjack.Logger{
		Filename:   params.FileName,
		MaxSize:    10, // megabytes
		MaxBackups: 5,
		Compress:   true,
	}
	if params.AlsoStderr {
		logrus.SetOutput(io.MultiWriter(os.Stderr, lj))
	} else {
		logrus.SetOutput(lj)
	}
	return lj
}

// GetLevel maps a level name to a logrus level. Unknown names mean warn so
// a CLI run stays quiet by default.
func GetLevel(level string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	default:
		return logrus.WarnLevel
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
