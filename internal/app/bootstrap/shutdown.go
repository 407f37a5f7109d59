// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown cleanly tears down the background workers and back-end
// connections. Workers stop before the queue closes so in-flight
// deliveries get their ack or nak; anything unacked is redelivered on
// the next start, which the processor's idempotency guard absorbs.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if runtime.clock != nil {
		runtime.clock.Stop()
	}
	if runtime.consumers != nil {
		runtime.consumers.Stop()
	}

	if deps.Queue != nil {
		if err := deps.Queue.Close(); err != nil {
			logger.Warn("queue close failed", zap.Error(err))
		}
	}

	if deps.MongoClient != nil {
		logger.Info("disconnecting MongoDB client")
		if err := deps.MongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			return err
		}
	}
	return nil
}
