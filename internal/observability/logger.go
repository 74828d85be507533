// Package observability wires the zap logger and the Prometheus
// metrics collector used across the explorer backend.
package observability

import (
	"go.uber.org/zap"

	"constellation-backend/internal/config"
)

// NewLogger builds the application logger for the environment:
// human-readable in development, JSON in production.
func NewLogger(env config.Environment) (*zap.Logger, error) {
	if env == config.Production {
		return zap.NewProduction()
	}
	cfg := zap.NewDevelopmentConfig()
	return cfg.Build()
}
