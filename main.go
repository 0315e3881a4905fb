package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tournevent/delicom/internal/server"
	"github.com/tournevent/delicom/pkg/plugin"
	"github.com/tournevent/delicom/pkg/plugin/delicom"
	"go.uber.org/zap"
)

var version = "0.0.1"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "delicom",
	Short:   "DPD Delicom carrier adapter - parcel shop lookup over the plugin contract",
	Version: version,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

var shopsCmd = &cobra.Command{
	Use:   "shops",
	Short: "Look up DPD parcel shops near a location and print them as JSON",
	RunE:  runShops,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the configuration fields and services of the library",
	RunE:  runConfig,
}

var shopsFlags struct {
	lat, lng   float64
	route      string
	number     string
	locality   string
	postalCode string
	country    string
	limit      int
}

func init() {
	f := shopsCmd.Flags()
	f.Float64Var(&shopsFlags.lat, "lat", 0, "latitude")
	f.Float64Var(&shopsFlags.lng, "lng", 0, "longitude")
	f.StringVar(&shopsFlags.route, "route", "", "street name")
	f.StringVar(&shopsFlags.number, "number", "", "house number")
	f.StringVar(&shopsFlags.locality, "locality", "", "city")
	f.StringVar(&shopsFlags.postalCode, "postal-code", "", "postal code")
	f.StringVar(&shopsFlags.country, "country", "", "ISO 3166-1 alpha-2 country code")
	f.IntVar(&shopsFlags.limit, "limit", 10, "maximum number of shops")

	rootCmd.AddCommand(serveCmd, shopsCmd, configCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Initialize telemetry
	logger, err := initLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	tracerShutdown, err := initTracer(ctx, cfg)
	if err != nil {
		logger.Warn("Failed to initialize tracer", zap.Error(err))
	} else {
		defer tracerShutdown(context.Background())
	}

	metrics, reg := initMetrics()

	store, closeStore, err := initCredentialStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	registry := initRegistry(initDelicom(cfg, store, initGeocoder(cfg), metrics, logger))

	logger.Info("Starting DPD Delicom adapter",
		zap.Int("port", cfg.Port),
		zap.String("version", cfg.Version),
		zap.Int("delicom_server", cfg.DelicomServer),
		zap.Bool("delicom_mock", cfg.DelicomUseMock),
		zap.String("credential_store", cfg.CredentialStore),
	)

	// Start HTTP server
	srv := server.New(server.Config{Port: cfg.Port, Metrics: metrics, Gatherer: reg}, registry, logger)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func runShops(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := initLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	store, closeStore, err := initCredentialStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	lib := initDelicom(cfg, store, initGeocoder(cfg), nil, logger)

	loc := &plugin.Location{
		Route:        shopsFlags.route,
		StreetNumber: shopsFlags.number,
		Locality:     shopsFlags.locality,
		PostalCode:   shopsFlags.postalCode,
		CountryCode:  shopsFlags.country,
	}
	if cmd.Flags().Changed("lat") && cmd.Flags().Changed("lng") {
		loc.SetCoordinates(shopsFlags.lng, shopsFlags.lat)
	}

	shops, err := lib.ListShops(ctx, loc, shopsFlags.limit)
	if err != nil {
		return err
	}
	return printJSON(cmd, shops)
}

func runConfig(cmd *cobra.Command, args []string) error {
	// Configuration and services are static; no DPD account is needed.
	lib := delicom.NewWithAPIClient(delicom.Config{}, delicom.NewMockAPIClient(), nil, nil)
	return printJSON(cmd, map[string]interface{}{
		"carrier":       lib.Name(),
		"configuration": lib.Configuration(),
		"services":      lib.Services(),
		"schema":        lib.SettingsSchema(),
	})
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
