package utils

import (
	"go.uber.org/zap"
)

var logger *zap.Logger

// GetLogger returns the process logger, building a production logger on
// first use when main has not installed one.
func GetLogger() *zap.Logger {
	if logger == nil {
		built, err := zap.NewProduction()
		if err != nil {
			panic("failed to initialize logger: " + err.Error())
		}
		logger = built
	}
	return logger
}

// SetLogger installs the logger built by the composition root.
func SetLogger(l *zap.Logger) {
	logger = l
}
