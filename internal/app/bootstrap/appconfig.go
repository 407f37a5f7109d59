// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration: WAFFLE's CoreConfig
// handles ports, TLS, log level and the other framework settings.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Queue transport: "nats" for a broker, "memory" for single-process
	// deployments and development.
	QueueDriver string
	NATSURL     string
	NATSStream  string
	NATSSubject string
	NATSDurable string

	// PublishTimeout bounds the dispatcher's only blocking call.
	PublishTimeout time.Duration

	// Chat platform web API access.
	ChatBaseURL   string
	ChatToken     string
	SigningSecret string
	BotUserID     string

	// Extraction service for free-text attendance messages.
	ExtractorURL string
	ExtractorKey string

	// Daily report schedule ("HH:MM" or "HH:MM:SS") and timezone.
	ReportTime     string
	ReportTimezone string

	// Backfill look-back window.
	BackfillWindowDays int

	// Queue consumer pool size.
	WorkerCount int
}
