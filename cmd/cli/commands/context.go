package commands

import (
	"context"

	"go.uber.org/zap"

	"github.com/jakechorley/staff-cover/internal/config"
	"github.com/jakechorley/staff-cover/pkg/core/services"
	"github.com/jakechorley/staff-cover/pkg/db"
	"github.com/jakechorley/staff-cover/pkg/filestore"
	"github.com/jakechorley/staff-cover/pkg/metrics"
	"github.com/jakechorley/staff-cover/pkg/postgres"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Cfg      *config.Config
	Database db.Database
	Service  *services.CoverageService
	Metrics  *metrics.Collector
	Logger   *zap.Logger
	Ctx      context.Context

	// Exactly one of these is set, matching Database
	Postgres *postgres.DB
	Files    *filestore.Store
}
