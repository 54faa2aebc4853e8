// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "github.com/rocmforge/wheelhouse/internal/adapters/config"
	_ "github.com/rocmforge/wheelhouse/internal/adapters/logger"
	_ "github.com/rocmforge/wheelhouse/internal/adapters/s3"
	_ "github.com/rocmforge/wheelhouse/internal/adapters/telemetry"
	// Register app nodes.
	_ "github.com/rocmforge/wheelhouse/internal/app"
)
