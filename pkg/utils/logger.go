// Package utils provides shared helpers for the pagesearch binaries.
package utils

import "go.uber.org/zap"

// NewLogger returns a zap logger writing to stderr, so stdout carries only
// command output. When debug is true, uses development config (human-readable,
// debug level); otherwise uses production config (JSON, info level, no sampling).
func NewLogger(debug bool, opts ...zap.Option) (*zap.Logger, error) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Sampling = nil
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build(opts...)
}
