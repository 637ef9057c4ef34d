package logtrace_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/asyncsite/logtrace"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := logtrace.DefaultConfig()

	if !cfg.Enabled || !cfg.HTTPEnabled || !cfg.KafkaEnabled || !cfg.LogRequestResponse {
		t.Errorf("defaults should enable everything: %+v", cfg)
	}
	if len(cfg.Packages) != 0 {
		t.Errorf("defaults should trace every package: %+v", cfg)
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("LOGTRACE_ENABLED", "false")
	t.Setenv("LOGTRACE_LOG_REQUEST_RESPONSE", "false")
	t.Setenv("LOGTRACE_PACKAGES", "github.com/acme/**,github.com/beta/**")

	cfg, err := logtrace.ConfigFromEnv()
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	want := logtrace.Config{
		Enabled:            false,
		HTTPEnabled:        true,
		KafkaEnabled:       true,
		LogRequestResponse: false,
		Packages:           []string{"github.com/acme/**", "github.com/beta/**"},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config (-want +have):\n%s", diff)
	}
}
