// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"io"
	"log"

	"github.com/sirupsen/logrus"
)

type LogLevel int

const (
	// ErrLevel=1 - the minimum level of logging.
	ErrLevel LogLevel = iota + 1

	// WarnLevel=2 - the level for logging warnings, and errors
	WarnLevel

	// InfoLevel=3 - the level for logging high-level information, results
	InfoLevel

	// DebugLevel=4 - the level for debugging information. The solvers will run properly on large problems with
	// that level of debug information.
	DebugLevel

	// TraceLevel=5 - the level for tracing. Every propagation is logged; this is only useful on small problems.
	TraceLevel
)

// logrusLevel maps the levels of the configuration to the levels of the logger
func (l LogLevel) logrusLevel() logrus.Level {
	switch {
	case l <= ErrLevel:
		return logrus.ErrorLevel
	case l == WarnLevel:
		return logrus.WarnLevel
	case l == InfoLevel:
		return logrus.InfoLevel
	case l == DebugLevel:
		return logrus.DebugLevel
	default:
		return logrus.TraceLevel
	}
}

type LogGroup struct {
	level       LogLevel
	silenceWarn bool
	logger      *logrus.Logger
	formatter   *logrus.TextFormatter

	// loggers handed out by GetDebug and GetError
	debug *log.Logger
	err   *log.Logger
}

// NewLogGroup returns a log group that is configured to the logging settings stored inside the config
func NewLogGroup(config *Config) *LogGroup {
	formatter := &logrus.TextFormatter{
		DisableColors:    true,
		FullTimestamp:    true,
		DisableTimestamp: false,
	}
	logger := logrus.New()
	logger.SetFormatter(formatter)
	level := LogLevel(config.LogLevel)
	logger.SetLevel(level.logrusLevel())
	return &LogGroup{
		level:       level,
		silenceWarn: config.SilenceWarn,
		logger:      logger,
		formatter:   formatter,
	}
}

// SetAllOutput sets all the output writers to the writer provided
func (l *LogGroup) SetAllOutput(w io.Writer) {
	l.logger.SetOutput(w)
	l.debug = nil
	l.err = nil
}

// SetAllFlags sets the flag of all loggers in the log group to the argument provided. Only the date and time flags
// of the log package have an effect: without them, timestamps are not printed.
func (l *LogGroup) SetAllFlags(x int) {
	l.formatter.DisableTimestamp = x&(log.Ldate|log.Ltime|log.Lmicroseconds) == 0
}

// LogsTrace returns true if messages at trace level are printed. Callers building expensive messages should check
// it first.
func (l *LogGroup) LogsTrace() bool {
	return l.level >= TraceLevel
}

// Tracef prints to the trace logger. Arguments are handled in the manner of Printf
func (l *LogGroup) Tracef(format string, v ...any) {
	if l.level >= TraceLevel {
		l.logger.Tracef(format, v...)
	}
}

// Debugf prints to the debug logger. Arguments are handled in the manner of Printf
func (l *LogGroup) Debugf(format string, v ...any) {
	if l.level >= DebugLevel {
		l.logger.Debugf(format, v...)
	}
}

// Infof prints to the info logger. Arguments are handled in the manner of Printf
func (l *LogGroup) Infof(format string, v ...any) {
	if l.level >= InfoLevel {
		l.logger.Infof(format, v...)
	}
}

// Warnf prints to the warning logger, unless warnings are silenced. Arguments are handled in the manner of Printf
func (l *LogGroup) Warnf(format string, v ...any) {
	if l.level >= WarnLevel && !l.silenceWarn {
		l.logger.Warnf(format, v...)
	}
}

// Errorf prints to the error logger. Arguments are handled in the manner of Printf
func (l *LogGroup) Errorf(format string, v ...any) {
	if l.level >= ErrLevel {
		l.logger.Errorf(format, v...)
	}
}

// WithField returns an entry of the underlying logger carrying the field key
func (l *LogGroup) WithField(key string, value any) *logrus.Entry {
	return l.logger.WithField(key, value)
}

// GetDebug returns the debug level logger, for applications that need a logger as input
func (l *LogGroup) GetDebug() *log.Logger {
	if l.debug == nil {
		l.debug = log.New(l.logger.WriterLevel(logrus.DebugLevel), "", 0)
	}
	return l.debug
}

// GetError returns the error logger, for applications that need a logger as input
func (l *LogGroup) GetError() *log.Logger {
	if l.err == nil {
		l.err = log.New(l.logger.WriterLevel(logrus.ErrorLevel), "", 0)
	}
	return l.err
}
