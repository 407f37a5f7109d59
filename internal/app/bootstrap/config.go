// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for RollCall.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, queue_driver, etc.
//   - Environment variables: ROLLCALL_MONGO_URI, ROLLCALL_QUEUE_DRIVER, etc.
//   - Command-line flags: --mongo_uri, --queue_driver, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "rollcall", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Queue transport
	{Name: "queue_driver", Default: "memory", Desc: "Queue backend: 'nats' or 'memory'"},
	{Name: "nats_url", Default: "nats://localhost:4222", Desc: "NATS server URL"},
	{Name: "nats_stream", Default: "ROLLCALL_EVENTS", Desc: "JetStream work-queue stream name"},
	{Name: "nats_subject", Default: "rollcall.events", Desc: "Subject events are published on"},
	{Name: "nats_durable", Default: "rollcall-workers", Desc: "Durable consumer name for the worker pool"},
	{Name: "publish_timeout", Default: "2s", Desc: "Max time the dispatcher blocks on a queue publish"},

	// Chat platform
	{Name: "chat_base_url", Default: "https://slack.com/api", Desc: "Chat platform web API base URL"},
	{Name: "chat_token", Default: "", Desc: "Chat platform bot token"},
	{Name: "signing_secret", Default: "", Desc: "Shared secret for verifying inbound webhook signatures"},
	{Name: "bot_user_id", Default: "", Desc: "The bot's own user ID on the chat platform (its messages are ignored)"},

	// Extraction service
	{Name: "extractor_url", Default: "", Desc: "Attendance extraction service endpoint"},
	{Name: "extractor_key", Default: "", Desc: "API key for the extraction service"},

	// Daily report schedule
	{Name: "report_time", Default: "18:00", Desc: "Local time of day to send the daily report (HH:MM)"},
	{Name: "report_timezone", Default: "UTC", Desc: "IANA timezone for the report schedule"},

	// Backfill
	{Name: "backfill_window_days", Default: 7, Desc: "How many days of channel history to walk on first join"},

	// Workers
	{Name: "worker_count", Default: 4, Desc: "Number of queue consumer goroutines"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
// CoreConfig comes from the shared WAFFLE layer; AppConfig is specific
// to this app and can be extended as the app grows.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, ROLLCALL_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "ROLLCALL", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		// Queue transport
		QueueDriver:    appValues.String("queue_driver"),
		NATSURL:        appValues.String("nats_url"),
		NATSStream:     appValues.String("nats_stream"),
		NATSSubject:    appValues.String("nats_subject"),
		NATSDurable:    appValues.String("nats_durable"),
		PublishTimeout: appValues.Duration("publish_timeout", 2*time.Second),

		// Chat platform
		ChatBaseURL:   appValues.String("chat_base_url"),
		ChatToken:     appValues.String("chat_token"),
		SigningSecret: appValues.String("signing_secret"),
		BotUserID:     appValues.String("bot_user_id"),

		// Extraction service
		ExtractorURL: appValues.String("extractor_url"),
		ExtractorKey: appValues.String("extractor_key"),

		// Daily report
		ReportTime:     appValues.String("report_time"),
		ReportTimezone: appValues.String("report_timezone"),

		// Backfill
		BackfillWindowDays: appValues.Int("backfill_window_days"),

		// Workers
		WorkerCount: appValues.Int("worker_count"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// This is the right place to enforce required fields or invariants that
// involve both the core and app configs.
//
// RollCall validates the MongoDB URI format to catch configuration
// errors early, before attempting to connect, and refuses to start
// without the webhook signing secret since every inbound request is
// rejected without it anyway.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if appCfg.SigningSecret == "" {
		return fmt.Errorf("signing_secret is required (set ROLLCALL_SIGNING_SECRET)")
	}

	switch appCfg.QueueDriver {
	case "nats", "memory":
	default:
		return fmt.Errorf("queue_driver must be 'nats' or 'memory', got %q", appCfg.QueueDriver)
	}

	if _, err := time.LoadLocation(appCfg.ReportTimezone); err != nil {
		return fmt.Errorf("invalid report_timezone %q: %w", appCfg.ReportTimezone, err)
	}

	return nil
}
