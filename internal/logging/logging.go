// Package logging constructs the single structured logger threaded
// through the pipeline and capture packages.
package logging

import "go.uber.org/zap"

// New builds a sugared zap logger. verbose selects the development
// encoder (human-readable console output, caller-annotated); otherwise the production JSON
// encoder is used.
func New(verbose bool) (*zap.SugaredLogger, error) {
	var logger *zap.Logger
	var err error
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

// Noop returns a logger that discards everything, for tests and
// library callers that don't want output.
func Noop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
