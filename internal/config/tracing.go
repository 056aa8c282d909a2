package config

// TracingConfig holds OTLP trace export configuration for serve mode.
//
// Spans are shipped to a local collector over OTLP/HTTP.
// See internal/observability for the exporter setup.
type TracingConfig struct {
	// Enabled turns trace export on (default: false)
	Enabled bool `mapstructure:"enabled" json:"enabled"`
	// Endpoint is the OTLP/HTTP collector endpoint (default: localhost:4318)
	Endpoint string `mapstructure:"endpoint" json:"endpoint"`
	// Environment is the deployment environment tag (default: dev)
	Environment string `mapstructure:"environment" json:"environment"`
	// ServiceName is the reported service name (default: carebot)
	ServiceName string `mapstructure:"service_name" json:"service_name"`
}
