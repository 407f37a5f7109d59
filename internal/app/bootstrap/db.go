// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"github.com/rollcallhq/rollcall/internal/app/system/indexes"
	"go.uber.org/zap"
)

// EnsureSchema reconciles MongoDB indexes on startup. Index drift is
// repaired by dropping and recreating the index with the wanted
// options, so upgrades never require a manual migration step.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := indexes.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		logger.Error("index reconciliation failed", zap.Error(err))
		return err
	}
	return nil
}
