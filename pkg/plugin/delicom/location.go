package delicom

import (
	"context"

	"github.com/tournevent/delicom/pkg/geocode"
	"github.com/tournevent/delicom/pkg/plugin"
)

// LocationResolver fills in missing coordinates of a location.
type LocationResolver struct {
	geocoder geocode.Geocoder
}

// NewLocationResolver creates a resolver backed by g.
func NewLocationResolver(g geocode.Geocoder) *LocationResolver {
	return &LocationResolver{geocoder: g}
}

// EnsureCoordinates geocodes loc in place when it has no coordinates and
// returns it. A location that already has coordinates is returned untouched.
func (r *LocationResolver) EnsureCoordinates(ctx context.Context, loc *plugin.Location) (*plugin.Location, error) {
	if loc == nil {
		return nil, &plugin.UnresolvableLocationError{Cause: geocode.ErrNotFound}
	}
	if loc.HasCoordinates() {
		return loc, nil
	}

	q := geocode.Query{
		Street:      loc.Route,
		HouseNumber: loc.StreetNumber,
		City:        loc.Locality,
		PostalCode:  loc.PostalCode,
		CountryCode: loc.CountryCode,
	}
	if q.IsEmpty() || r.geocoder == nil {
		return nil, &plugin.UnresolvableLocationError{Query: q.String(), Cause: geocode.ErrNotFound}
	}

	p, err := r.geocoder.Geocode(ctx, q)
	if err != nil {
		return nil, &plugin.UnresolvableLocationError{Query: q.String(), Cause: err}
	}

	loc.SetCoordinates(p.Lng, p.Lat)
	return loc, nil
}
