// Package logging builds the loggers used by mocksmith runs.
//
// Log routing follows where the generated code goes: when mocks are written
// to files, logs may use stdout; when the generated header itself is printed
// to stdout, logs go to stderr so the header stays pipeable.
package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options select verbosity and destination of run logging.
type Options struct {
	// Verbose enables debug output.
	Verbose bool
	// Silent suppresses everything below error level.
	Silent bool
	// ToStdout routes logs to stdout instead of stderr.
	ToStdout bool
}

// New builds a logger writing to stdout or stderr per Options.
func New(opts Options) *zap.SugaredLogger {
	var w io.Writer = os.Stderr
	if opts.ToStdout {
		w = os.Stdout
	}
	return NewWithWriter(opts, w)
}

// NewWithWriter builds a logger over an arbitrary writer. Tests use this to
// capture and assert on log output.
func NewWithWriter(opts Options, w io.Writer) *zap.SugaredLogger {
	level := zapcore.InfoLevel
	switch {
	case opts.Silent:
		level = zapcore.ErrorLevel
	case opts.Verbose:
		level = zapcore.DebugLevel
	}

	// Console output without timestamps: lines are read by humans and
	// asserted on by tests, not aggregated.
	encCfg := zapcore.EncoderConfig{
		MessageKey:       "msg",
		LevelKey:         "level",
		ConsoleSeparator: " ",
		EncodeLevel: func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(l.String() + ":")
		},
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), level)
	return zap.New(core).Sugar()
}
