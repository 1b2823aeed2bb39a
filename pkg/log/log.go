// Package log builds the zap loggers of the command line tools.
package log

import (
	"errors"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	HelpLevels = "Must be one of: error, warning, info, debug."
)

var levelMapping = map[string]zapcore.Level{
	"error":   zapcore.ErrorLevel,
	"warning": zapcore.WarnLevel,
	"info":    zapcore.InfoLevel,
	"debug":   zapcore.DebugLevel,
}

// ParseLevel maps a level name onto a zap level
func ParseLevel(strLevel string) (zapcore.Level, error) {
	level, ok := levelMapping[strLevel]
	if !ok {
		return zapcore.InfoLevel, errors.New("Wrong log level. " + HelpLevels)
	}
	return level, nil
}

// New returns a console logger writing to out
func New(out io.Writer, strLevel string) (*zap.Logger, error) {
	level, err := ParseLevel(strLevel)
	if err != nil {
		return nil, err
	}
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.Lock(zapcore.AddSync(out)),
		level,
	)
	return zap.New(core), nil
}

// NewJSON returns a logger emitting one JSON object per entry
func NewJSON(out io.Writer, strLevel string) (*zap.Logger, error) {
	level, err := ParseLevel(strLevel)
	if err != nil {
		return nil, err
	}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.Lock(zapcore.AddSync(out)),
		level,
	)
	return zap.New(core), nil
}
