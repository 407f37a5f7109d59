package bootstrap

import (
	"strings"
	"testing"

	"go.uber.org/zap"
)

func validAppConfig() AppConfig {
	return AppConfig{
		MongoURI:       "mongodb://localhost:27017",
		MongoDatabase:  "rollcall",
		QueueDriver:    "memory",
		SigningSecret:  "secret",
		ReportTimezone: "UTC",
	}
}

func TestValidateConfig_Accepts(t *testing.T) {
	if err := ValidateConfig(nil, validAppConfig(), zap.NewNop()); err != nil {
		t.Fatalf("ValidateConfig failed: %v", err)
	}
}

func TestValidateConfig_RequiresSigningSecret(t *testing.T) {
	cfg := validAppConfig()
	cfg.SigningSecret = ""

	err := ValidateConfig(nil, cfg, zap.NewNop())
	if err == nil {
		t.Fatal("expected error for missing signing secret")
	}
	if !strings.Contains(err.Error(), "signing_secret") {
		t.Errorf("error should name signing_secret, got %v", err)
	}
}

func TestValidateConfig_RejectsBadQueueDriver(t *testing.T) {
	cfg := validAppConfig()
	cfg.QueueDriver = "kafka"

	if err := ValidateConfig(nil, cfg, zap.NewNop()); err == nil {
		t.Fatal("expected error for unknown queue driver")
	}
}

func TestValidateConfig_RejectsBadMongoURI(t *testing.T) {
	cfg := validAppConfig()
	cfg.MongoURI = "not-a-uri"

	if err := ValidateConfig(nil, cfg, zap.NewNop()); err == nil {
		t.Fatal("expected error for invalid mongo URI")
	}
}

func TestValidateConfig_RejectsBadTimezone(t *testing.T) {
	cfg := validAppConfig()
	cfg.ReportTimezone = "Mars/Olympus_Mons"

	if err := ValidateConfig(nil, cfg, zap.NewNop()); err == nil {
		t.Fatal("expected error for unknown timezone")
	}
}
