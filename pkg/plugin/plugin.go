// Package plugin defines the contract a carrier library exposes to the host
// e-commerce platform.
package plugin

import (
	"context"

	"github.com/invopop/jsonschema"
)

// Library defines the interface that all carrier libraries must implement.
type Library interface {
	// Name returns the carrier identifier (e.g., "delicom").
	Name() string

	// Configuration returns the fields the host shows in its module settings.
	Configuration() []ConfigField

	// Services returns the shipping services the shop owner can offer at checkout.
	Services() []Service

	// ListShops returns at most limit parcel shops close to the given location.
	ListShops(ctx context.Context, loc *Location, limit int) ([]Shop, error)

	// IssueLabel creates the label for a single order.
	IssueLabel(ctx context.Context, order *Order, format LabelFormat) (*Label, error)

	// IssueLabels creates labels for several orders in one call.
	IssueLabels(ctx context.Context, orders []*Order, format LabelFormat) ([]*Label, error)

	// TrackingInfo returns track and trace details for a label.
	TrackingInfo(ctx context.Context, label *Label) (*Tracking, error)
}

// SchemaProvider is implemented by libraries that can describe their
// settings as a JSON Schema.
type SchemaProvider interface {
	SettingsSchema() *jsonschema.Schema
}
