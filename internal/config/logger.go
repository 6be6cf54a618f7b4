package config

import (
	"fmt"

	"go.uber.org/zap"
)

// NewLogger builds a JSON production logger, or a console logger in development mode.
func NewLogger(conf LogConfig) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(conf.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", conf.Level, err)
	}

	zapConf := zap.NewProductionConfig()
	if conf.Development {
		zapConf = zap.NewDevelopmentConfig()
	}
	zapConf.Level = level

	return zapConf.Build()
}
