// Package logging builds the diagnostic zap logger. Diagnostics go to
// stderr so command output on stdout stays pipeable.
package logging

import (
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Tiliavir/daylog/internal/config"
)

// New creates a logger writing to w in the configured format and level.
func New(cfg config.LogConfig, w io.Writer) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	core := zapcore.NewCore(newEncoder(cfg.Format), zapcore.AddSync(w), level)
	return zap.New(core, zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

// newEncoder creates JSON or console encoder.
func newEncoder(format string) zapcore.Encoder {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	if format == "console" {
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewConsoleEncoder(encoderCfg)
	}
	return zapcore.NewJSONEncoder(encoderCfg)
}

// Field helpers shared by the call sites that log external failures.

func UserID(id string) zap.Field   { return zap.String("user_id", id) }
func Date(date string) zap.Field   { return zap.String("date", date) }
func ShareID(id string) zap.Field  { return zap.String("share_id", id) }
func Month(month string) zap.Field { return zap.String("month", month) }
