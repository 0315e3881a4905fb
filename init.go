package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/tournevent/delicom/internal/config"
	"github.com/tournevent/delicom/internal/telemetry"
	"github.com/tournevent/delicom/pkg/credstore"
	"github.com/tournevent/delicom/pkg/geocode"
	"github.com/tournevent/delicom/pkg/plugin"
	"github.com/tournevent/delicom/pkg/plugin/delicom"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

func loadConfig() (*config.Config, error) {
	return config.Load()
}

func initLogger(cfg *config.Config) (*otelzap.Logger, error) {
	return telemetry.NewLogger(cfg.LogLevel, cfg.LogFormat)
}

func initTracer(ctx context.Context, cfg *config.Config) (func(context.Context) error, error) {
	if !cfg.OTELEnabled {
		return func(context.Context) error { return nil }, nil
	}

	_, shutdown, err := telemetry.InitTracer(ctx, cfg.OTELEndpoint, cfg.ServiceName, cfg.Version)
	return shutdown, err
}

// initCredentialStore returns the session store selected by CREDENTIAL_STORE
// and a function releasing its resources.
func initCredentialStore(ctx context.Context, cfg *config.Config, logger *otelzap.Logger) (credstore.Store, func() error, error) {
	if cfg.CredentialStore != config.StoreRedis {
		return credstore.NewMemory(), func() error { return nil }, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("connecting to redis at %s: %w", cfg.RedisAddr, err)
	}

	store, err := credstore.NewRedis(credstore.RedisConfig{
		Client:    client,
		KeyPrefix: cfg.RedisKeyPrefix,
		TTL:       cfg.RedisTTL,
	})
	if err != nil {
		client.Close()
		return nil, nil, err
	}

	logger.Info("Using Redis credential store",
		zap.String("addr", cfg.RedisAddr),
		zap.Int("db", cfg.RedisDB),
	)
	return store, client.Close, nil
}

func initGeocoder(cfg *config.Config) geocode.Geocoder {
	if cfg.GeocoderUseMock {
		return geocode.NewMock()
	}
	return geocode.NewNominatim(geocode.NominatimConfig{
		BaseURL:   cfg.GeocoderURL,
		UserAgent: cfg.GeocoderUserAgent,
		Timeout:   cfg.GeocoderTimeout,
	})
}

func initDelicom(cfg *config.Config, store credstore.Store, geocoder geocode.Geocoder, metrics *telemetry.Metrics, logger *otelzap.Logger) *delicom.Client {
	var observer delicom.Observer
	if metrics != nil {
		observer = metrics
	}

	return delicom.New(delicom.Config{
		Settings: delicom.Settings{
			DelisID:     cfg.DelicomID,
			Password:    cfg.DelicomPassword,
			Server:      cfg.DelicomServer,
			TimeLogging: cfg.DelicomTimeLogging,
		},
		Endpoints: delicom.Endpoints{
			Live:  cfg.DelicomLiveURL,
			Stage: cfg.DelicomStageURL,
		},
		Timeout:    cfg.DelicomTimeout,
		SessionTTL: cfg.DelicomSessionTTL,
		UseMock:    cfg.DelicomUseMock,
		Store:      store,
		Geocoder:   geocoder,
		Observer:   observer,
	}, logger, otel.Tracer(cfg.ServiceName))
}

func initRegistry(libs ...plugin.Library) *plugin.Registry {
	registry := plugin.NewRegistry()
	for _, lib := range libs {
		registry.Register(lib)
	}
	return registry
}

func initMetrics() (*telemetry.Metrics, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return telemetry.NewMetrics(reg), reg
}
