// Package mock provides a mock carrier library for testing.
package mock

import (
	"context"
	"fmt"

	"github.com/tournevent/delicom/pkg/plugin"
)

// Library is a mock carrier library returning a fixed set of shops.
type Library struct {
	name  string
	Shops []plugin.Shop
	Err   error
}

// New creates a new mock library with three shops around Brussels.
func New(name string) *Library {
	shops := make([]plugin.Shop, 0, 3)
	for i := 1; i <= 3; i++ {
		loc := plugin.Location{
			Route:        "Rue de la Loi",
			StreetNumber: fmt.Sprintf("%d", i),
			Locality:     "Brussels",
			PostalCode:   "1000",
			CountryCode:  "BE",
		}
		loc.SetCoordinates(4.3517+float64(i)/1000, 50.8466)
		shop := plugin.Shop{
			ID:           fmt.Sprintf("%s-shop-%d", name, i),
			Active:       true,
			Name:         fmt.Sprintf("%s Shop %d", name, i),
			Location:     loc,
			Capabilities: plugin.Capabilities(0).Add(plugin.CapabilityPickup),
		}
		shop.BusinessHours.AddBlock(plugin.Monday, 900, 1800)
		shops = append(shops, shop)
	}
	return &Library{name: name, Shops: shops}
}

// Name returns the carrier name.
func (l *Library) Name() string {
	return l.name
}

// Configuration returns a single text field.
func (l *Library) Configuration() []plugin.ConfigField {
	return []plugin.ConfigField{
		{Label: "Account", Name: "account", Type: plugin.FieldText, Validator: plugin.NonEmpty()},
	}
}

// Services returns a single classic service.
func (l *Library) Services() []plugin.Service {
	return []plugin.Service{
		{Label: "Standard", Name: "standard", Type: plugin.ServiceClassic},
	}
}

// ListShops returns the first limit mock shops.
func (l *Library) ListShops(ctx context.Context, loc *plugin.Location, limit int) ([]plugin.Shop, error) {
	if l.Err != nil {
		return nil, l.Err
	}
	if limit <= 0 {
		return []plugin.Shop{}, nil
	}
	if limit > len(l.Shops) {
		limit = len(l.Shops)
	}
	return l.Shops[:limit], nil
}

// IssueLabel returns a mock label.
func (l *Library) IssueLabel(ctx context.Context, order *plugin.Order, format plugin.LabelFormat) (*plugin.Label, error) {
	if format == "" {
		format = plugin.LabelPDF
	}
	return &plugin.Label{
		Number: fmt.Sprintf("%s-%s", l.name, order.ID),
		Format: format,
		URL:    fmt.Sprintf("https://labels.%s.mock/%s.%s", l.name, order.ID, format),
	}, nil
}

// IssueLabels returns one mock label per order.
func (l *Library) IssueLabels(ctx context.Context, orders []*plugin.Order, format plugin.LabelFormat) ([]*plugin.Label, error) {
	labels := make([]*plugin.Label, 0, len(orders))
	for _, o := range orders {
		label, err := l.IssueLabel(ctx, o, format)
		if err != nil {
			return nil, err
		}
		labels = append(labels, label)
	}
	return labels, nil
}

// TrackingInfo returns an in-transit status.
func (l *Library) TrackingInfo(ctx context.Context, label *plugin.Label) (*plugin.Tracking, error) {
	return &plugin.Tracking{
		LabelNumber: label.Number,
		Status:      plugin.StatusInTransit,
	}, nil
}

var _ plugin.Library = (*Library)(nil)
