package timeouts

import (
	"testing"
	"time"
)

func TestConfigure_IgnoresZeroValues(t *testing.T) {
	Reset()
	defer Reset()

	Configure(Config{Short: 9 * time.Second})

	if Short() != 9*time.Second {
		t.Errorf("Short: got %v", Short())
	}
	if Medium() != DefaultMedium {
		t.Errorf("Medium should keep its default, got %v", Medium())
	}
}

func TestConfigureFromEnv(t *testing.T) {
	Reset()
	defer Reset()

	t.Setenv("ROLLCALL_TIMEOUT_PING", "750ms")
	t.Setenv("ROLLCALL_TIMEOUT_LONG", "not-a-duration")

	if n := ConfigureFromEnv(); n != 1 {
		t.Errorf("expected 1 configured, got %d", n)
	}
	if Ping() != 750*time.Millisecond {
		t.Errorf("Ping: got %v", Ping())
	}
	if Long() != DefaultLong {
		t.Errorf("invalid value must keep the default, got %v", Long())
	}
}

func TestCurrent(t *testing.T) {
	Reset()
	cfg := Current()
	if cfg.Ping != DefaultPing || cfg.Long != DefaultLong {
		t.Errorf("Current: got %+v", cfg)
	}
}
