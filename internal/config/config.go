package config

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/kelseyhightower/envconfig"
	"go.opentelemetry.io/otel/attribute"
)

// Credential store backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Config holds all configuration for the service.
type Config struct {
	// Server
	Port      int    `envconfig:"PORT" default:"80"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	// DPD Delicom
	DelicomID          string        `envconfig:"DELICOM_ID"`
	DelicomPassword    string        `envconfig:"DELICOM_PASSWORD"`
	DelicomServer      int           `envconfig:"DELICOM_SERVER" default:"0"`
	DelicomTimeLogging bool          `envconfig:"DELICOM_TIME_LOGGING" default:"false"`
	DelicomLiveURL     string        `envconfig:"DELICOM_LIVE_URL" default:"https://public-ws.dpd.com/services/"`
	DelicomStageURL    string        `envconfig:"DELICOM_STAGE_URL" default:"https://public-ws-stage.dpd.com/services/"`
	DelicomTimeout     time.Duration `envconfig:"DELICOM_TIMEOUT" default:"30s"`
	DelicomUseMock     bool          `envconfig:"DELICOM_USE_MOCK" default:"false"`
	DelicomSessionTTL  time.Duration `envconfig:"DELICOM_SESSION_TTL" default:"0s"`

	// Credential store
	CredentialStore string        `envconfig:"CREDENTIAL_STORE" default:"memory"`
	RedisAddr       string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword   string        `envconfig:"REDIS_PASSWORD"`
	RedisDB         int           `envconfig:"REDIS_DB" default:"0"`
	RedisKeyPrefix  string        `envconfig:"REDIS_KEY_PREFIX" default:"delicom:credstore:"`
	RedisTTL        time.Duration `envconfig:"REDIS_TTL" default:"0s"`

	// Geocoding
	GeocoderURL       string        `envconfig:"GEOCODER_URL" default:"https://nominatim.openstreetmap.org"`
	GeocoderUserAgent string        `envconfig:"GEOCODER_USER_AGENT" default:"delicom-adapter"`
	GeocoderTimeout   time.Duration `envconfig:"GEOCODER_TIMEOUT" default:"10s"`
	GeocoderUseMock   bool          `envconfig:"GEOCODER_USE_MOCK" default:"false"`

	// Telemetry
	OTELEnabled  bool   `envconfig:"OTEL_ENABLED" default:"false"`
	OTELEndpoint string `envconfig:"OTEL_ENDPOINT" default:"http://localhost:4318"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"delicom"`
	Version      string `envconfig:"SERVICE_VERSION" default:"0.0.1"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot check on its own. An empty
// DELICOM_ID is allowed so the service can start with the mock client.
func (c *Config) Validate() error {
	switch c.CredentialStore {
	case StoreMemory, StoreRedis:
	default:
		return fmt.Errorf("CREDENTIAL_STORE must be %q or %q, got %q", StoreMemory, StoreRedis, c.CredentialStore)
	}
	if c.DelicomID != "" && utf8.RuneCountInString(c.DelicomID) != 8 {
		return fmt.Errorf("DELICOM_ID must be 8 characters long")
	}
	if c.DelicomTimeout < 0 || c.DelicomSessionTTL < 0 {
		return fmt.Errorf("DELICOM_TIMEOUT and DELICOM_SESSION_TTL must not be negative")
	}
	return nil
}

// Attributes returns OpenTelemetry attributes for this configuration.
func (c *Config) Attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("service.name", c.ServiceName),
		attribute.String("service.version", c.Version),
		attribute.Int("delicom.server", c.DelicomServer),
		attribute.Bool("delicom.mock", c.DelicomUseMock),
		attribute.String("credential_store", c.CredentialStore),
	}
}
