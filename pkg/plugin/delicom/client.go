// Package delicom provides integration with the DPD Delicom web services.
package delicom

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/tournevent/delicom/pkg/credstore"
	"github.com/tournevent/delicom/pkg/geocode"
	"github.com/tournevent/delicom/pkg/plugin"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// CarrierName is the name the library registers under.
const CarrierName = "dpd"

// Config holds DPD Delicom configuration.
type Config struct {
	Settings   Settings
	Endpoints  Endpoints
	Timeout    time.Duration
	SessionTTL time.Duration
	UseMock    bool

	Store    credstore.Store  // defaults to an in-memory store
	Geocoder geocode.Geocoder // required to look up shops by address
	Logo     *plugin.ShopLogo // defaults to PickupLogo
	Observer Observer
}

// Client is the DPD Delicom carrier library.
type Client struct {
	settings   Settings
	apiClient  APIClient
	sessions   *SessionManager
	resolver   *LocationResolver
	normalizer *Normalizer
	observer   Observer
	logger     *otelzap.Logger
	tracer     trace.Tracer
}

// New creates a new DPD Delicom client.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	var apiClient APIClient

	if cfg.UseMock {
		apiClient = NewMockAPIClient()
	} else {
		apiClient = NewSOAPAPIClient(SOAPAPIClientConfig{
			Timeout: cfg.Timeout,
			Logger:  logger,
		})
	}

	return NewWithAPIClient(cfg, apiClient, logger, tracer)
}

// NewWithAPIClient creates a new DPD Delicom client with a custom API client.
func NewWithAPIClient(cfg Config, apiClient APIClient, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	if logger == nil {
		logger = otelzap.New(zap.NewNop())
	}
	if tracer == nil {
		tracer = otel.Tracer("delicom")
	}
	observer := cfg.Observer
	if observer == nil {
		observer = nopObserver{}
	}

	return &Client{
		settings:  cfg.Settings,
		apiClient: apiClient,
		sessions: NewSessionManager(SessionManagerConfig{
			Store:     cfg.Store,
			API:       apiClient,
			Endpoints: cfg.Endpoints,
			TTL:       cfg.SessionTTL,
			Observer:  observer,
			Logger:    logger,
		}),
		resolver:   NewLocationResolver(cfg.Geocoder),
		normalizer: NewNormalizer(cfg.Logo),
		observer:   observer,
		logger:     logger,
		tracer:     tracer,
	}
}

// WithSettings returns a client using s that shares this client's session
// cache and collaborators.
func (c *Client) WithSettings(s Settings) *Client {
	cp := *c
	cp.settings = s
	return &cp
}

// Sessions returns the session manager of the client.
func (c *Client) Sessions() *SessionManager {
	return c.sessions
}

// Name returns the carrier name.
func (c *Client) Name() string {
	return CarrierName
}

// Configuration returns the settings form of the library.
func (c *Client) Configuration() []plugin.ConfigField {
	return configurationFields()
}

// Services returns the DPD services offered at checkout.
func (c *Client) Services() []plugin.Service {
	return serviceCatalog()
}

// SettingsSchema returns the JSON Schema of Settings.
func (c *Client) SettingsSchema() *jsonschema.Schema {
	return settingsSchema()
}

// ListShops returns at most limit DPD pickup points near loc, in the order
// DPD ranks them. A location without coordinates is geocoded first.
// A limit of zero or less returns no shops without contacting DPD.
func (c *Client) ListShops(ctx context.Context, loc *plugin.Location, limit int) ([]plugin.Shop, error) {
	ctx, span := c.tracer.Start(ctx, "delicom.ListShops", trace.WithAttributes(
		attribute.Int("limit", limit),
	))
	defer span.End()

	if limit <= 0 {
		return []plugin.Shop{}, nil
	}

	loc, err := c.resolver.EnsureCoordinates(ctx, loc)
	if err != nil {
		c.logger.Ctx(ctx).Warn("Cannot resolve shop search location", zap.Error(err))
		return nil, spanError(span, err)
	}

	c.logger.Ctx(ctx).Info("Searching DPD parcel shops",
		zap.Float64("lng", *loc.Longitude),
		zap.Float64("lat", *loc.Latitude),
		zap.Int("limit", limit),
	)

	sess, err := c.sessions.Session(ctx, c.settings)
	if err != nil {
		c.logger.Ctx(ctx).Error("DPD authentication failed", zap.Error(err))
		return nil, spanError(span, err)
	}

	raw, err := c.apiClient.FindParcelShops(ctx, sess, GeoQuery{
		Longitude: *loc.Longitude,
		Latitude:  *loc.Latitude,
	})
	if err != nil {
		c.logger.Ctx(ctx).Error("DPD API error", zap.Error(err))
		if isSessionFault(err) {
			// The token was rejected; the next call authenticates again.
			if ierr := c.sessions.Invalidate(ctx); ierr != nil {
				c.logger.Ctx(ctx).Warn("Failed to drop cached session", zap.Error(ierr))
			}
		}
		return nil, spanError(span, &plugin.GatewayError{
			Carrier:   CarrierName,
			Operation: "findParcelShopsByGeoData",
			Cause:     err,
		})
	}

	shops, skipped := c.normalizer.NormalizeAll(raw)
	for _, s := range skipped {
		c.logger.Ctx(ctx).Warn("Skipping malformed parcel shop",
			zap.Int("index", s.Index),
			zap.String("parcel_shop_id", s.RecordID),
			zap.String("field", s.Field),
		)
	}
	if len(skipped) > 0 {
		c.observer.RecordsSkipped(len(skipped))
	}

	if len(shops) > limit {
		shops = shops[:limit]
	}

	span.SetAttributes(
		attribute.Int("shops.received", len(raw)),
		attribute.Int("shops.returned", len(shops)),
	)
	return shops, nil
}

// IssueLabel is not supported by this library.
func (c *Client) IssueLabel(ctx context.Context, order *plugin.Order, format plugin.LabelFormat) (*plugin.Label, error) {
	return nil, c.unsupported(ctx, "IssueLabel")
}

// IssueLabels is not supported by this library.
func (c *Client) IssueLabels(ctx context.Context, orders []*plugin.Order, format plugin.LabelFormat) ([]*plugin.Label, error) {
	return nil, c.unsupported(ctx, "IssueLabels")
}

// TrackingInfo is not supported by this library.
func (c *Client) TrackingInfo(ctx context.Context, label *plugin.Label) (*plugin.Tracking, error) {
	return nil, c.unsupported(ctx, "TrackingInfo")
}

func (c *Client) unsupported(ctx context.Context, op string) error {
	c.logger.Ctx(ctx).Info("Unsupported DPD operation requested", zap.String("operation", op))
	return &plugin.UnsupportedOperationError{Carrier: CarrierName, Operation: op}
}

// ============================================================================
// Helper Functions
// ============================================================================

func spanError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// DPD reports rejected or expired tokens with LOGIN_* fault codes.
func isSessionFault(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && strings.HasPrefix(apiErr.Code, "LOGIN_")
}

var (
	_ plugin.Library        = (*Client)(nil)
	_ plugin.SchemaProvider = (*Client)(nil)
)
