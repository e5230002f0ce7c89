package telemetry

import "os"

// EndpointEnv enables OTLP export when set.
const EndpointEnv = "OTEL_EXPORTER_OTLP_ENDPOINT"

// Config holds configuration for the tracer
type Config struct {
	// ServiceName is the name of the service
	ServiceName string

	// ServiceVersion is the version of the service
	ServiceVersion string

	// Enabled determines whether tracing is enabled
	// When false, a noop tracer is used
	Enabled bool

	// Endpoint is the OTLP/HTTP collector endpoint (host:port).
	// If empty, spans are recorded but not exported
	Endpoint string

	// Insecure disables TLS towards the collector
	Insecure bool

	// SampleRate is the fraction of traces to sample (0.0 to 1.0)
	SampleRate float64
}

// DefaultConfig returns a configuration with tracing disabled
func DefaultConfig() Config {
	return Config{
		ServiceName:    "clientstage",
		ServiceVersion: "dev",
		SampleRate:     1.0,
	}
}

// FromEnv enables tracing when EndpointEnv is set.
func FromEnv(version string) Config {
	cfg := DefaultConfig()
	cfg.ServiceVersion = version
	if endpoint := os.Getenv(EndpointEnv); endpoint != "" {
		cfg.Enabled = true
		cfg.Endpoint = endpoint
	}
	return cfg
}
