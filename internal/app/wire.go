//go:build wireinject
// +build wireinject

package app

import (
	"context"

	"github.com/google/wire"
)

// InitializeApp wires configuration, logging, persistence, services and
// transports into a runnable application.
func InitializeApp(ctx context.Context) (*App, error) {
	wire.Build(
		provideConfig,
		provideLogger,
		provideDB,
		provideRepository,
		provideMeasurementService,
		provideStatsService,
		provideHTTPServer,
		New,
	)
	return nil, nil
}
