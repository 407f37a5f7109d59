// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/waffle/config"
	"github.com/rollcallhq/rollcall/internal/app/queue"
	"github.com/rollcallhq/rollcall/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// DBDeps holds database/back-end dependencies for the app.
// Extend this struct as your app evolves.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Queue is the event transport between the webhook dispatcher and
	// the worker pool. It is either NATS JetStream or the in-process
	// buffer, depending on queue_driver.
	Queue queue.Transport
}

// ConnectDB establishes the MongoDB connection and the queue transport.
//
// WAFFLE calls this after config validation and before EnsureSchema.
// Both backends are verified reachable here so a misconfigured
// deployment fails at startup instead of on the first event.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	clientOpts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}

	logger.Info("mongodb connected",
		zap.String("database", appCfg.MongoDatabase),
		zap.Uint64("max_pool", appCfg.MongoMaxPoolSize))

	deps := DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
	}

	switch appCfg.QueueDriver {
	case "nats":
		nq, err := queue.ConnectNATS(ctx, queue.NATSConfig{
			URL:     appCfg.NATSURL,
			Stream:  appCfg.NATSStream,
			Subject: appCfg.NATSSubject,
			Durable: appCfg.NATSDurable,
		}, logger)
		if err != nil {
			_ = client.Disconnect(ctx)
			return DBDeps{}, err
		}
		deps.Queue = nq
	default:
		// In-process queue for development and single-node deployments.
		// Events that cannot be buffered fall back to inline handling
		// in the dispatcher, so a modest buffer is fine.
		deps.Queue = queue.NewMemory(256)
		logger.Info("using in-memory queue")
	}

	return deps, nil
}
