package logtrace

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config captures the recognized tracing options. The zero value disables
// everything; use DefaultConfig or ConfigFromEnv for sensible defaults.
type Config struct {
	// Enabled gates whether instrumentation runs at all. When false, the
	// interceptor executes units of work untouched.
	Enabled bool `envconfig:"ENABLED" default:"true"`

	// HTTPEnabled gates outbound HTTP header propagation.
	HTTPEnabled bool `envconfig:"HTTP_ENABLED" default:"true"`

	// KafkaEnabled gates message-header propagation for broker producers.
	KafkaEnabled bool `envconfig:"KAFKA_ENABLED" default:"true"`

	// LogRequestResponse gates whether the interceptor serializes arguments
	// and results of external-facing invocations.
	LogRequestResponse bool `envconfig:"LOG_REQUEST_RESPONSE" default:"true"`

	// Packages holds glob patterns matched against invocation signatures,
	// e.g. "github.com/acme/billing/**". Empty means every invocation is
	// traced.
	Packages []string `envconfig:"PACKAGES"`
}

// DefaultConfig returns the configuration used when nothing is specified:
// everything enabled, every invocation traced.
func DefaultConfig() Config {
	return Config{
		Enabled:            true,
		HTTPEnabled:        true,
		KafkaEnabled:       true,
		LogRequestResponse: true,
	}
}

// ConfigFromEnv loads configuration from LOGTRACE_* environment variables,
// e.g. LOGTRACE_ENABLED=false or LOGTRACE_PACKAGES=github.com/acme/**.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := envconfig.Process("logtrace", &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("process environment: %w", err)
	}
	return cfg, nil
}
