// Package logging builds the zap loggers used by compo binaries.
package logging

import (
	"os"

	"github.com/fatih/color"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sghaida/compo/config"
)

// New returns a logger for cfg writing to stderr: JSON in production or when
// the json format is asked for, colored console output otherwise.
func New(cfg config.Config) (*zap.Logger, error) {
	return NewWithSink(cfg, zapcore.Lock(os.Stderr))
}

// NewWithSink is New with an explicit destination.
func NewWithSink(cfg config.Config, out zapcore.WriteSyncer) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	var enc zapcore.Encoder
	if cfg.Production() || cfg.LogFormat == config.FormatJSON {
		ec := zap.NewProductionEncoderConfig()
		ec.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewJSONEncoder(ec)
	} else {
		enc = zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    colorLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		})
	}

	core := zapcore.NewCore(enc, out, zap.NewAtomicLevelAt(level))
	return zap.New(core, zap.AddCaller()).With(zap.String("env", cfg.Env)), nil
}

var levelColors = map[zapcore.Level]*color.Color{
	zapcore.DebugLevel:  color.New(color.FgCyan),
	zapcore.InfoLevel:   color.New(color.FgGreen),
	zapcore.WarnLevel:   color.New(color.FgYellow),
	zapcore.ErrorLevel:  color.New(color.FgRed),
	zapcore.DPanicLevel: color.New(color.FgRed, color.Bold),
	zapcore.PanicLevel:  color.New(color.FgRed, color.Bold),
	zapcore.FatalLevel:  color.New(color.FgRed, color.Bold),
}

func colorLevelEncoder(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	if c, ok := levelColors[level]; ok {
		enc.AppendString(c.Sprint(level.CapitalString()))
		return
	}
	enc.AppendString(level.CapitalString())
}
